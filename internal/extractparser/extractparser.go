// Package extractparser parses Brazilian checking-account extract exports:
// a variable-length free-text preamble (account number, period, balance)
// terminated by the literal header
// "Data Lançamento;Descrição;Valor;Saldo", then semicolon-delimited rows.
package extractparser

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

const headerLine = "Data Lançamento;Descrição;Valor;Saldo"

// extractCSVRow maps one extract row for gocsv unmarshaling. Saldo is the
// running balance; it is read but never persisted.
type extractCSVRow struct {
	DataLancamento string `csv:"Data Lançamento"`
	Descricao      string `csv:"Descrição"`
	Valor          string `csv:"Valor"`
	Saldo          string `csv:"Saldo"`
}

// Parser parses the account_extract dialect.
type Parser struct {
	logger logging.Logger
}

// New creates an account-extract parser.
func New(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Parser{logger: logger}
}

// Parse skips the preamble, then reads semicolon-delimited rows. Rows that
// fail locale parsing come back as RowError entries; the rest of the file
// continues.
func (p *Parser) Parse(r io.Reader) ([]models.ParsedTransaction, []parsererror.RowError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading account extract: %w", err)
	}

	body, skipped, err := stripPreamble(string(data))
	if err != nil {
		return nil, nil, err
	}
	p.logger.Debug("Skipped account-extract preamble",
		logging.Field{Key: "lines", Value: skipped})

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []*extractCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, nil, fmt.Errorf("reading account-extract CSV: %w", err)
	}

	var (
		transactions []models.ParsedTransaction
		rowErrors    []parsererror.RowError
	)
	for i, row := range rows {
		if row.DataLancamento == "" && row.Descricao == "" && row.Valor == "" {
			continue
		}

		tx, err := p.convertRow(row)
		if err != nil {
			p.logger.WithError(err).Warn("Skipping unparseable extract row",
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

	p.logger.Info("Parsed account extract",
		logging.Field{Key: "transactions", Value: len(transactions)},
		logging.Field{Key: "row_errors", Value: len(rowErrors)})
	return transactions, rowErrors, nil
}

// stripPreamble drops everything up to (but not including) the header line.
// The header position varies between exports, so it is located by content,
// not by a fixed line count.
func stripPreamble(text string) (body string, skipped int, err error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimRight(line, "\r"), headerLine) {
			return strings.Join(lines[i:], "\n"), i, nil
		}
	}
	return "", 0, &parsererror.UnrecognizedFormatError{
		Msg: "account-extract header line not found",
	}
}

func (p *Parser) convertRow(row *extractCSVRow) (models.ParsedTransaction, error) {
	date, err := dateutils.ParseBrazilianDate(strings.TrimSpace(row.DataLancamento))
	if err != nil {
		return models.ParsedTransaction{}, err
	}

	cents, err := currencyutils.ParseBRL(row.Valor)
	if err != nil {
		return models.ParsedTransaction{}, err
	}

	description := strings.TrimSpace(row.Descricao)
	if description == "" {
		return models.ParsedTransaction{}, fmt.Errorf("empty description")
	}

	return models.ParsedTransaction{
		Date:                  date,
		Description:           description,
		NormalizedDescription: textutils.NormalizeDescription(description),
		AmountCents:           cents,
		SourceDialect:         models.DialectAccountExtract,
	}, nil
}

func rawLine(row *extractCSVRow) string {
	return strings.Join([]string{row.DataLancamento, row.Descricao, row.Valor, row.Saldo}, ";")
}
