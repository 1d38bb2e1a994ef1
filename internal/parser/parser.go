// Package parser defines the statement parser contract and the format
// detector that decides which dialect a raw statement file uses.
package parser

import (
	"io"

	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/parsererror"
)

// StatementParser extracts transactions from a decoded statement.
//
// Rows that fail to parse are not dropped silently: they come back as
// RowError entries alongside the successfully parsed transactions, and the
// caller decides whether to abort or proceed with partial data. The returned
// slice is fully materialized; statement files are bounded.
type StatementParser interface {
	Parse(r io.Reader) ([]models.ParsedTransaction, []parsererror.RowError, error)
}
