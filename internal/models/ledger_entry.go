package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthsPerYear is the number of calendar slots a group is folded into.
const MonthsPerYear = 12

// LedgerEntry is a single posting as delivered by one of the ledger parsers.
// Amount is signed: expenses are negative, revenue positive.
type LedgerEntry struct {
	Counterparty string          `json:"counterparty" yaml:"counterparty"`
	Description  string          `json:"description" yaml:"description"`
	Date         time.Time       `json:"date" yaml:"date"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	Currency     string          `json:"currency,omitempty" yaml:"currency,omitempty"`
	Source       string          `json:"source,omitempty" yaml:"source,omitempty"` // file:row the entry came from
}

// MonthIndex returns the calendar month of the entry as 0 (January) .. 11 (December).
func (e LedgerEntry) MonthIndex() int {
	return int(e.Date.Month()) - 1
}

// String returns a compact human readable representation of the entry.
func (e LedgerEntry) String() string {
	return fmt.Sprintf("%s %s %q %s", e.Date.Format("2006-01-02"), e.Counterparty, e.Description, e.Amount.StringFixed(2))
}
