package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyTokens = []string{"EUR", "USD", "CHF", "GBP", "€", "$", "£", "'", " ", " "}

// ParseAmount parses an amount as it appears in European and US ledger exports.
//
// Accepted forms include "1.234,56", "1,234.56", "-12,50", "12,50-", "(12.50)"
// and values carrying a currency code or symbol. The last of '.' or ',' is
// taken as the decimal separator when both are present.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	for _, token := range currencyTokens {
		amount = strings.ReplaceAll(amount, token, "")
	}
	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(amount, "(") && strings.HasSuffix(amount, ")") {
		negative = true
		amount = amount[1 : len(amount)-1]
	}
	if strings.HasSuffix(amount, "-") {
		negative = !negative
		amount = strings.TrimSuffix(amount, "-")
	}

	lastDot := strings.LastIndex(amount, ".")
	lastComma := strings.LastIndex(amount, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			amount = strings.ReplaceAll(amount, ".", "")
			amount = strings.Replace(amount, ",", ".", 1)
		} else {
			amount = strings.ReplaceAll(amount, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(amount, ",") > 1 {
			amount = strings.ReplaceAll(amount, ",", "")
		} else {
			amount = strings.Replace(amount, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(amount, ".") > 1 {
			amount = strings.ReplaceAll(amount, ".", "")
		}
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount '%s': %w", amountStr, err)
	}
	if negative {
		dec = dec.Neg()
	}
	return dec, nil
}
