// Package parsererror defines the error taxonomy for the import pipeline.
// Only UnrecognizedFormatError is fatal for a file; everything else is
// either reported per row or recovered locally.
package parsererror

import (
	"encoding/json"
	"fmt"
)

// UnrecognizedFormatError indicates the file matches no known statement
// dialect. No partial parse is attempted for such a file.
type UnrecognizedFormatError struct {
	Snippet string // first line of the file, for diagnostics
	Msg     string
}

func (e *UnrecognizedFormatError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("unrecognized statement format: %s. First line: %q", e.Msg, e.Snippet)
	}
	return fmt.Sprintf("unrecognized statement format: %s", e.Msg)
}

// ValueFormatError indicates a currency token that does not follow the
// Brazilian BRL pattern.
type ValueFormatError struct {
	Token  string
	Reason string
}

func (e *ValueFormatError) Error() string {
	return fmt.Sprintf("invalid currency value %q: %s", e.Token, e.Reason)
}

// DateFormatError indicates a date token that is not a valid DD/MM/YYYY date.
type DateFormatError struct {
	Token  string
	Reason string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Token, e.Reason)
}

// RowError reports a single row that failed to parse. The row is excluded
// from the decision list but the rest of the file continues.
type RowError struct {
	Row int    // zero-based data row index within the file
	Raw string // original row text
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%q): %v", e.Row, e.Raw, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the wrapped error as its message; error values have no
// exported fields and would otherwise serialize as an empty object.
func (e RowError) MarshalJSON() ([]byte, error) {
	reason := ""
	if e.Err != nil {
		reason = e.Err.Error()
	}
	return json.Marshal(struct {
		Row    int    `json:"row"`
		Raw    string `json:"raw"`
		Reason string `json:"reason"`
	}{Row: e.Row, Raw: e.Raw, Reason: reason})
}

// ClassificationServiceError wraps a failure of the external categorization
// service after all retries were exhausted. It is recorded for auditing but
// never aborts an import; affected rows fall back to the default category.
type ClassificationServiceError struct {
	Attempts int
	Err      error
}

func (e *ClassificationServiceError) Error() string {
	return fmt.Sprintf("classification service failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ClassificationServiceError) Unwrap() error {
	return e.Err
}

// CommitConflictError indicates a row that became a duplicate between
// preview and commit. The row is skipped; the rest of the batch commits.
type CommitConflictError struct {
	Description string
	Date        string
}

func (e *CommitConflictError) Error() string {
	return fmt.Sprintf("transaction %q on %s already exists, skipped", e.Description, e.Date)
}
