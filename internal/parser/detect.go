package parser

import (
	"strings"

	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/parsererror"
	"github.com/rafaelvasco/dindinho/internal/textutils"
)

// detectWindow is how many leading lines are inspected for a dialect
// signature. Account extracts carry a free-text preamble (account number,
// period, balance) before their header, so a single-line check is not enough.
const detectWindow = 10

// extractHeader is the literal header line that terminates an account
// extract preamble.
const extractHeader = "Data Lançamento;Descrição;Valor;Saldo"

// DetectDialect identifies which statement dialect raw holds by scanning
// the first few lines for a header signature. Credit-card statements open
// with a quoted, comma-delimited header starting with "Data"; account
// extracts carry the semicolon header somewhere in the preamble window.
func DetectDialect(raw []byte) (models.Dialect, error) {
	text, err := textutils.DecodeStatement(raw)
	if err != nil {
		return "", &parsererror.UnrecognizedFormatError{Msg: "undecodable content"}
	}

	lines := strings.Split(text, "\n")
	limit := detectWindow
	if len(lines) < limit {
		limit = len(lines)
	}

	for _, line := range lines[:limit] {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, `"Data"`) && strings.Contains(line, ",") {
			return models.DialectCreditCard, nil
		}
		if strings.HasPrefix(line, extractHeader) {
			return models.DialectAccountExtract, nil
		}
	}

	snippet := ""
	if len(lines) > 0 {
		snippet = strings.TrimRight(lines[0], "\r")
	}
	return "", &parsererror.UnrecognizedFormatError{
		Snippet: snippet,
		Msg:     "no known header signature in the first lines",
	}
}
