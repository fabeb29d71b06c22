// Package parsererror defines the typed errors reported by the ledger parsers.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError represents a single field that could not be decoded.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowError ties a ParseError to the 1-based data row it occurred on. Rows
// carrying a RowError are skipped; the rest of the file is still analyzed.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// InvalidFormatError represents an input that does not conform to the format
// a parser expects, such as a CSV without a date column.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// RowErrors aggregates the row-level failures of one file.
type RowErrors []*RowError

func (r RowErrors) Error() string {
	if len(r) == 0 {
		return "no row errors"
	}
	parts := make([]string, 0, len(r))
	for _, e := range r {
		parts = append(parts, e.Error())
	}
	return fmt.Sprintf("%d row(s) rejected: %s", len(r), strings.Join(parts, "; "))
}

// AsRowErrors extracts the row errors wrapped in err, if any.
func AsRowErrors(err error) (RowErrors, bool) {
	var rows RowErrors
	if errors.As(err, &rows) {
		return rows, true
	}
	return nil, false
}
