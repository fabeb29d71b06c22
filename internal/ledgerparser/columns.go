package ledgerparser

import (
	"strings"
)

// Canonical column names used once the header has been mapped.
const (
	columnCounterparty = "counterparty"
	columnDescription  = "description"
	columnDate         = "date"
	columnAmount       = "amount"
	columnDirection    = "direction"
	columnCurrency     = "currency"
)

// canonicalColumns is the order of the rewritten header.
var canonicalColumns = []string{
	columnCounterparty,
	columnDescription,
	columnDate,
	columnAmount,
	columnDirection,
	columnCurrency,
}

// columnKeywords lists, per canonical column, header names seen in Dutch,
// English, German and French exports. Earlier keywords win.
var columnKeywords = map[string][]string{
	columnCounterparty: {
		"counterparty", "tegenpartij", "relatie", "naam / omschrijving", "naam tegenpartij",
		"crediteur", "debiteur", "leverancier", "klant", "naam", "name", "payee", "payer",
		"supplier", "vendor", "customer", "partner", "empfänger", "beneficiary", "bénéficiaire",
	},
	columnDescription: {
		"description", "omschrijving", "mededelingen", "memo", "details", "remittance",
		"verwendungszweck", "libellé", "libelle", "text", "narrative", "reference",
	},
	columnDate: {
		"date", "datum", "boekdatum", "transactiedatum", "booking date", "posting date",
		"buchungsdatum", "date comptable", "valuedate", "value date",
	},
	columnAmount: {
		"amount", "bedrag", "bedrag (eur)", "betrag", "montant", "transactiebedrag",
	},
	columnDirection: {
		"af bij", "af/bij", "debet/credit", "debit/credit", "credit/debit", "d/c", "cdtdbtind", "soll/haben",
	},
	columnCurrency: {
		"currency", "valuta", "munt", "währung", "devise",
	},
}

// requiredColumns must be found for a header to be usable.
var requiredColumns = []string{columnDate, columnAmount}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// mapColumns assigns header positions to canonical columns. Exact keyword
// matches are resolved before substring matches and a header position is
// never used twice.
func mapColumns(header []string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	mapping := make(map[string]int)
	used := make(map[int]bool)

	assign := func(match func(header, keyword string) bool) {
		for _, column := range canonicalColumns {
			if _, done := mapping[column]; done {
				continue
			}
		keywords:
			for _, keyword := range columnKeywords[column] {
				for i, h := range normalized {
					if used[i] || h == "" {
						continue
					}
					if match(h, keyword) {
						mapping[column] = i
						used[i] = true
						break keywords
					}
				}
			}
		}
	}

	assign(func(h, k string) bool { return h == k })
	assign(func(h, k string) bool { return strings.Contains(h, k) })
	return mapping
}

// missingColumns reports required columns absent from a mapping, and whether
// neither a counterparty nor a description column was found.
func missingColumns(mapping map[string]int) []string {
	var missing []string
	for _, column := range requiredColumns {
		if _, ok := mapping[column]; !ok {
			missing = append(missing, column)
		}
	}
	_, hasCounterparty := mapping[columnCounterparty]
	_, hasDescription := mapping[columnDescription]
	if !hasCounterparty && !hasDescription {
		missing = append(missing, columnCounterparty+" or "+columnDescription)
	}
	return missing
}
