package ledgerparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fjacquet/ledger-gaps/internal/dateutils"
	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/parsererror"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"
)

const (
	csvParserName = "csv"

	// lineColumn carries each record's physical line number through gocsv.
	lineColumn = "_line"
)

// ledgerRow is one CSV data row after its header has been mapped onto the
// canonical column names.
type ledgerRow struct {
	Counterparty string `csv:"counterparty"`
	Description  string `csv:"description"`
	Date         string `csv:"date"`
	Amount       string `csv:"amount"`
	Direction    string `csv:"direction"`
	Currency     string `csv:"currency"`
	Line         int    `csv:"_line"`
}

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	// Delimiter separates fields. Zero means sniff it from the header line.
	Delimiter rune
	// Encoding is the character set of the input (e.g. "windows-1252").
	// Empty or "utf-8" reads the input as is.
	Encoding string
	// Currency is assigned to entries when the file has no currency column.
	Currency string
}

// CSVParser reads spreadsheet exports whose columns are recognised by
// keyword (Datum, Bedrag, Omschrijving, Amount, ...).
type CSVParser struct {
	opts   CSVOptions
	logger logging.Logger
}

// NewCSVParser creates a CSV parser.
func NewCSVParser(opts CSVOptions, logger logging.Logger) *CSVParser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CSVParser{opts: opts, logger: logger}
}

// Format implements Parser.
func (p *CSVParser) Format() Format {
	return FormatCSV
}

// Parse implements Parser. Row numbers in row errors and entry sources are
// the physical line a record starts on, so blank lines and quoted fields
// spanning several lines are counted the way an editor shows them.
func (p *CSVParser) Parse(r io.Reader, source string) (*Result, error) {
	decoded, err := p.decode(r)
	if err != nil {
		return nil, err
	}

	records, lines, err := p.readRecords(decoded)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV %s: %w", source, err)
	}
	if len(records) == 0 {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       source,
			ExpectedFormat: "CSV with a header row",
			Msg:            "file is empty",
		}
	}

	mapping := mapColumns(records[0])
	if missing := missingColumns(mapping); len(missing) > 0 {
		return nil, &parsererror.InvalidFormatError{
			FilePath:             source,
			ExpectedFormat:       "CSV with date, amount and counterparty or description columns",
			ActualContentSnippet: strings.Join(records[0], string(p.delimiterOrDefault())),
			Msg:                  "missing required column(s): " + strings.Join(missing, ", "),
		}
	}

	p.logger.Debug("Mapped CSV header",
		logging.F(logging.FieldFile, source),
		logging.F("columns", mapping))

	var rows []ledgerRow
	if err := gocsv.UnmarshalCSV(newRecordReader(canonicalRecords(records, lines, mapping)), &rows); err != nil {
		return nil, fmt.Errorf("error decoding CSV rows: %w", err)
	}

	result := &Result{}
	for _, row := range rows {
		rowNumber := row.Line
		if row.isBlank() {
			continue
		}
		entry, err := p.toEntry(row)
		if err != nil {
			result.RowErrors = append(result.RowErrors, &parsererror.RowError{Row: rowNumber, Err: err})
			p.logger.WithError(err).Warn("Skipping unparseable row",
				logging.F(logging.FieldFile, source),
				logging.F(logging.FieldRow, rowNumber))
			continue
		}
		entry.Source = fmt.Sprintf("%s:%d", source, rowNumber)
		result.Entries = append(result.Entries, entry)
	}

	p.logger.Info("Parsed CSV ledger",
		logging.F(logging.FieldFile, source),
		logging.F(logging.FieldCount, len(result.Entries)),
		logging.F("rejected", len(result.RowErrors)))
	return result, nil
}

func (p *CSVParser) decode(r io.Reader) (io.Reader, error) {
	label := strings.ToLower(strings.TrimSpace(p.opts.Encoding))
	if label == "" || label == "utf-8" || label == "utf8" {
		return r, nil
	}
	decoded, err := charset.NewReaderLabel(label, r)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", p.opts.Encoding, err)
	}
	return decoded, nil
}

func (p *CSVParser) delimiterOrDefault() rune {
	if p.opts.Delimiter == 0 {
		return ','
	}
	return p.opts.Delimiter
}

// readRecords returns every record together with the line it starts on.
func (p *CSVParser) readRecords(r io.Reader) ([][]string, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	delimiter := p.opts.Delimiter
	if delimiter == 0 {
		delimiter = sniffDelimiter(string(data))
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, nil
}

// sniffDelimiter picks the most frequent candidate separator on the first line.
func sniffDelimiter(data string) rune {
	firstLine := data
	if idx := strings.IndexAny(data, "\r\n"); idx >= 0 {
		firstLine = data[:idx]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{';', ',', '\t', '|'} {
		if n := strings.Count(firstLine, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func (p *CSVParser) toEntry(row ledgerRow) (models.LedgerEntry, error) {
	date, err := dateutils.ParseDate(row.Date)
	if err != nil {
		return models.LedgerEntry{}, &parsererror.ParseError{Parser: csvParserName, Field: columnDate, Value: row.Date, Err: err}
	}

	amount, err := models.ParseAmount(row.Amount)
	if err != nil {
		return models.LedgerEntry{}, &parsererror.ParseError{Parser: csvParserName, Field: columnAmount, Value: row.Amount, Err: err}
	}

	if strings.TrimSpace(row.Direction) != "" {
		debit, err := parseDirection(row.Direction)
		if err != nil {
			return models.LedgerEntry{}, &parsererror.ParseError{Parser: csvParserName, Field: columnDirection, Value: row.Direction, Err: err}
		}
		amount = applyDirection(amount, debit)
	}

	currency := strings.TrimSpace(row.Currency)
	if currency == "" {
		currency = p.opts.Currency
	}

	return models.LedgerEntry{
		Counterparty: strings.TrimSpace(row.Counterparty),
		Description:  strings.TrimSpace(row.Description),
		Date:         date,
		Amount:       amount,
		Currency:     currency,
	}, nil
}

func (r ledgerRow) isBlank() bool {
	return strings.TrimSpace(r.Counterparty+r.Description+r.Date+r.Amount) == ""
}

// parseDirection reports whether a debit/credit indicator denotes a debit.
func parseDirection(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "af", "d", "db", "dbit", "debit", "debet", "soll", "s", "-":
		return true, nil
	case "bij", "c", "cr", "crdt", "credit", "haben", "h", "+":
		return false, nil
	}
	return false, fmt.Errorf("unknown debit/credit indicator")
}

func applyDirection(amount decimal.Decimal, debit bool) decimal.Decimal {
	if debit {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// canonicalRecords rewrites the header to canonical names and reorders every
// data row accordingly. Unmapped columns get empty values; the record's line
// number is appended as a last column.
func canonicalRecords(records [][]string, lines []int, mapping map[string]int) [][]string {
	out := make([][]string, 0, len(records))
	header := append(append([]string(nil), canonicalColumns...), lineColumn)
	out = append(out, header)
	for n, record := range records[1:] {
		row := make([]string, len(header))
		for i, column := range canonicalColumns {
			if idx, ok := mapping[column]; ok && idx < len(record) {
				row[i] = record[idx]
			}
		}
		row[len(canonicalColumns)] = strconv.Itoa(lines[n+1])
		out = append(out, row)
	}
	return out
}

// recordReader feeds pre-read records to gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func newRecordReader(records [][]string) *recordReader {
	return &recordReader{records: records}
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	record := r.records[r.pos]
	r.pos++
	return record, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}
