// Package ledgerparser turns ledger exports (CSV, CAMT.053) into entries the
// analyzer can consume. Rows that cannot be decoded are reported back as
// row errors instead of failing the whole file.
package ledgerparser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/parsererror"
)

// Format identifies a supported input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatCAMT Format = "camt053"
)

// Result is the outcome of parsing one input.
type Result struct {
	Entries   []models.LedgerEntry
	RowErrors parsererror.RowErrors
}

// Parser decodes ledger entries from a reader. source names the input in
// error messages and in LedgerEntry.Source.
type Parser interface {
	Parse(r io.Reader, source string) (*Result, error)
	Format() Format
}

// Registry picks a parser for a file.
type Registry struct {
	parsers map[Format]Parser
	logger  logging.Logger
}

// NewRegistry registers the given parsers by their format.
func NewRegistry(logger logging.Logger, parsers ...Parser) *Registry {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	r := &Registry{parsers: make(map[Format]Parser), logger: logger}
	for _, p := range parsers {
		r.parsers[p.Format()] = p
	}
	return r
}

// Get returns the parser registered for a format.
func (r *Registry) Get(format Format) (Parser, error) {
	p, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("no parser registered for format %q", format)
	}
	return p, nil
}

// ParseFile opens path, detects its format and parses it.
func (r *Registry) ParseFile(path string) (*Result, error) {
	file, err := os.Open(path) // #nosec G304 -- user supplied input file
	if err != nil {
		return nil, fmt.Errorf("error opening ledger file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			r.logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	reader := bufio.NewReader(file)
	head, _ := reader.Peek(512)
	format := Detect(path, head)

	r.logger.Info("Parsing ledger file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldParser, string(format)))

	parser, err := r.Get(format)
	if err != nil {
		return nil, err
	}
	return parser.Parse(reader, path)
}

// Detect guesses the format from the file extension, falling back to
// sniffing the first bytes of content.
func Detect(path string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".camt", ".053":
		return FormatCAMT
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")), " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatCAMT
	}
	return FormatCSV
}
