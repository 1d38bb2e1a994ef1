// Package cardparser parses Brazilian credit-card statement exports:
// comma-delimited, fully quoted rows with columns
// Data, Lançamento, Categoria, Tipo, Valor.
package cardparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/rafaelvasco/dindinho/internal/currencyutils"
	"github.com/rafaelvasco/dindinho/internal/dateutils"
	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/parsererror"
	"github.com/rafaelvasco/dindinho/internal/textutils"
)

// cardCSVRow maps one statement row for gocsv unmarshaling. Categoria and
// Tipo are present in the export but informational only: categorization is
// decided by the pipeline, not by the statement.
type cardCSVRow struct {
	Data       string `csv:"Data"`
	Lancamento string `csv:"Lançamento"`
	Categoria  string `csv:"Categoria"`
	Tipo       string `csv:"Tipo"`
	Valor      string `csv:"Valor"`
}

// Parser parses the credit_card dialect.
type Parser struct {
	logger logging.Logger
}

// New creates a credit-card statement parser.
func New(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Parser{logger: logger}
}

// Parse reads the whole statement and returns parsed transactions plus one
// RowError per row that failed locale parsing.
func (p *Parser) Parse(r io.Reader) ([]models.ParsedTransaction, []parsererror.RowError, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []*cardCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, nil, fmt.Errorf("reading credit-card CSV: %w", err)
	}

	var (
		transactions []models.ParsedTransaction
		rowErrors    []parsererror.RowError
	)
	for i, row := range rows {
		if row.Data == "" && row.Lancamento == "" && row.Valor == "" {
			continue
		}

		tx, err := p.convertRow(row)
		if err != nil {
			p.logger.WithError(err).Warn("Skipping unparseable credit-card row",
				logging.Field{Key: "row", Value: i})
			rowErrors = append(rowErrors, parsererror.RowError{
				Row: i,
				Raw: rawLine(row),
				Err: err,
			})
			continue
		}
		transactions = append(transactions, tx)
	}

	p.logger.Info("Parsed credit-card statement",
		logging.Field{Key: "transactions", Value: len(transactions)},
		logging.Field{Key: "row_errors", Value: len(rowErrors)})
	return transactions, rowErrors, nil
}

func (p *Parser) convertRow(row *cardCSVRow) (models.ParsedTransaction, error) {
	date, err := dateutils.ParseBrazilianDate(strings.TrimSpace(row.Data))
	if err != nil {
		return models.ParsedTransaction{}, err
	}

	cents, err := currencyutils.ParseBRL(row.Valor)
	if err != nil {
		return models.ParsedTransaction{}, err
	}

	description := strings.TrimSpace(row.Lancamento)
	if description == "" {
		return models.ParsedTransaction{}, fmt.Errorf("empty description")
	}

	return models.ParsedTransaction{
		Date:                  date,
		Description:           description,
		NormalizedDescription: textutils.NormalizeDescription(description),
		AmountCents:           cents,
		SourceDialect:         models.DialectCreditCard,
	}, nil
}

func rawLine(row *cardCSVRow) string {
	return strings.Join([]string{row.Data, row.Lancamento, row.Categoria, row.Tipo, row.Valor}, ",")
}
