package ledgerparser

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/ledger-gaps/internal/dateutils"
	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/parsererror"

	"gopkg.in/xmlpath.v2"
)

const camtParserName = "camt053"

// camtPaths holds the XPath expressions evaluated per <Ntry>. Candidates are
// tried in order; the first non-empty value wins.
var camtPaths = struct {
	statement   *xmlpath.Path
	entry       *xmlpath.Path
	amount      *xmlpath.Path
	currency    *xmlpath.Path
	creditDebit *xmlpath.Path
	date        []*xmlpath.Path
	remittance  *xmlpath.Path
	description []*xmlpath.Path
	creditor    []*xmlpath.Path
	debtor      []*xmlpath.Path
}{
	statement:   xmlpath.MustCompile("//BkToCstmrStmt/Stmt"),
	entry:       xmlpath.MustCompile("//Ntry"),
	amount:      xmlpath.MustCompile("Amt"),
	currency:    xmlpath.MustCompile("Amt/@Ccy"),
	creditDebit: xmlpath.MustCompile("CdtDbtInd"),
	date: compileAll(
		"BookgDt/Dt",
		"BookgDt/DtTm",
		"ValDt/Dt",
	),
	remittance: xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd"),
	description: compileAll(
		"AddtlNtryInf",
		"NtryDtls/TxDtls/AddtlTxInf",
	),
	creditor: compileAll(
		"NtryDtls/TxDtls/RltdPties/Cdtr/Nm",
		"NtryDtls/TxDtls/RltdPties/Cdtr/Pty/Nm",
		"NtryDtls/TxDtls/RltdPties/UltmtCdtr/Nm",
		"NtryDtls/TxDtls/RltdPties/CdtrAcct/Id/IBAN",
		"NtryDtls/TxDtls/RltdPties/CdtrAcct/Id/Othr/Id",
	),
	debtor: compileAll(
		"NtryDtls/TxDtls/RltdPties/Dbtr/Nm",
		"NtryDtls/TxDtls/RltdPties/Dbtr/Pty/Nm",
		"NtryDtls/TxDtls/RltdPties/UltmtDbtr/Nm",
		"NtryDtls/TxDtls/RltdPties/DbtrAcct/Id/IBAN",
		"NtryDtls/TxDtls/RltdPties/DbtrAcct/Id/Othr/Id",
	),
}

func compileAll(exprs ...string) []*xmlpath.Path {
	paths := make([]*xmlpath.Path, len(exprs))
	for i, expr := range exprs {
		paths[i] = xmlpath.MustCompile(expr)
	}
	return paths
}

// CAMTParser reads ISO 20022 CAMT.053 bank statements.
type CAMTParser struct {
	logger logging.Logger
}

// NewCAMTParser creates a CAMT.053 parser.
func NewCAMTParser(logger logging.Logger) *CAMTParser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CAMTParser{logger: logger}
}

// Format implements Parser.
func (p *CAMTParser) Format() Format {
	return FormatCAMT
}

// Parse implements Parser. Row numbers in row errors are 1-based <Ntry>
// positions in document order.
func (p *CAMTParser) Parse(r io.Reader, source string) (*Result, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       source,
			ExpectedFormat: "CAMT.053 XML",
			Msg:            fmt.Sprintf("not well-formed XML: %v", err),
		}
	}
	if !camtPaths.statement.Exists(root) {
		return nil, &parsererror.ValidationError{
			FilePath: source,
			Reason:   "no BkToCstmrStmt/Stmt element; not a CAMT.053 statement",
		}
	}

	result := &Result{}
	iter := camtPaths.entry.Iter(root)
	for index := 1; iter.Next(); index++ {
		entry, err := p.toEntry(iter.Node())
		if err != nil {
			result.RowErrors = append(result.RowErrors, &parsererror.RowError{Row: index, Err: err})
			p.logger.WithError(err).Warn("Skipping unparseable entry",
				logging.F(logging.FieldFile, source),
				logging.F(logging.FieldRow, index))
			continue
		}
		entry.Source = fmt.Sprintf("%s:%d", source, index)
		result.Entries = append(result.Entries, entry)
	}

	p.logger.Info("Parsed CAMT.053 statement",
		logging.F(logging.FieldFile, source),
		logging.F(logging.FieldCount, len(result.Entries)),
		logging.F("rejected", len(result.RowErrors)))
	return result, nil
}

func (p *CAMTParser) toEntry(node *xmlpath.Node) (models.LedgerEntry, error) {
	rawAmount := text(camtPaths.amount, node)
	amount, err := models.ParseAmount(rawAmount)
	if err != nil {
		return models.LedgerEntry{}, &parsererror.ParseError{Parser: camtParserName, Field: "Amt", Value: rawAmount, Err: err}
	}

	indicator := text(camtPaths.creditDebit, node)
	// Counterparty is the other party's name, else its account. Entries with
	// neither (bank fees, interest) keep an empty counterparty.
	var counterparty string
	switch strings.ToUpper(indicator) {
	case "DBIT":
		amount = applyDirection(amount, true)
		counterparty = firstText(camtPaths.creditor, node)
	case "CRDT":
		amount = applyDirection(amount, false)
		counterparty = firstText(camtPaths.debtor, node)
	default:
		return models.LedgerEntry{}, &parsererror.ParseError{
			Parser: camtParserName, Field: "CdtDbtInd", Value: indicator,
			Err: fmt.Errorf("expected DBIT or CRDT"),
		}
	}

	rawDate := firstText(camtPaths.date, node)
	if len(rawDate) > len(dateutils.DateLayoutISO) && strings.Contains(rawDate, "T") {
		rawDate = rawDate[:len(dateutils.DateLayoutISO)]
	}
	date, err := dateutils.ParseDate(rawDate)
	if err != nil {
		return models.LedgerEntry{}, &parsererror.ParseError{Parser: camtParserName, Field: "BookgDt", Value: rawDate, Err: err}
	}

	description := joinAll(camtPaths.remittance, node)
	if description == "" {
		description = firstText(camtPaths.description, node)
	}

	return models.LedgerEntry{
		Counterparty: counterparty,
		Description:  description,
		Date:         date,
		Amount:       amount,
		Currency:     text(camtPaths.currency, node),
	}, nil
}

func text(path *xmlpath.Path, node *xmlpath.Node) string {
	value, ok := path.String(node)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(value), " ")
}

func firstText(paths []*xmlpath.Path, node *xmlpath.Node) string {
	for _, path := range paths {
		if value := text(path, node); value != "" {
			return value
		}
	}
	return ""
}

// joinAll concatenates every match of path, e.g. multi-line Ustrd remittance.
func joinAll(path *xmlpath.Path, node *xmlpath.Node) string {
	var parts []string
	iter := path.Iter(node)
	for iter.Next() {
		if value := strings.Join(strings.Fields(iter.Node().String()), " "); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}
