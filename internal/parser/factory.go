package parser

import (
	"fmt"

	"github.com/rafaelvasco/dindinho/internal/cardparser"
	"github.com/rafaelvasco/dindinho/internal/extractparser"
	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
)

// ForDialect returns the parser for a detected dialect. The dialect tag is
// closed, so an unknown value here is a programming error, not bad input.
func ForDialect(d models.Dialect, logger logging.Logger) (StatementParser, error) {
	switch d {
	case models.DialectCreditCard:
		return cardparser.New(logger), nil
	case models.DialectAccountExtract:
		return extractparser.New(logger), nil
	default:
		return nil, fmt.Errorf("no parser for dialect %q", d)
	}
}
