package models

import (
	"github.com/shopspring/decimal"
)

// GroupReport is the classified view of one recurring payment series.
//
// Gaps and Shifts hold month indices (0 = January). Together they cover every
// empty month between FirstActive and LastActive exactly once.
type GroupReport struct {
	Key            string                         `json:"key" yaml:"key"`
	Counterparty   string                         `json:"counterparty" yaml:"counterparty"`
	Description    string                         `json:"description" yaml:"description"`
	MonthlyAmounts [MonthsPerYear]decimal.Decimal `json:"monthly_amounts" yaml:"monthly_amounts"`
	MonthlyCounts  [MonthsPerYear]int             `json:"monthly_counts" yaml:"monthly_counts"`
	Total          decimal.Decimal                `json:"total" yaml:"total"`
	AverageAmount  decimal.Decimal                `json:"average_amount" yaml:"average_amount"`
	ActiveMonths   int                            `json:"active_months" yaml:"active_months"`
	FirstActive    int                            `json:"first_active" yaml:"first_active"` // -1 when the group has no postings
	LastActive     int                            `json:"last_active" yaml:"last_active"`
	Analyzed       bool                           `json:"analyzed" yaml:"analyzed"`
	Gaps           []int                          `json:"gaps" yaml:"gaps"`
	Shifts         []int                          `json:"shifts" yaml:"shifts"`
}

// GapCount returns the number of months classified as gaps.
func (r GroupReport) GapCount() int {
	return len(r.Gaps)
}

// HasGaps reports whether at least one month is classified as a gap.
func (r GroupReport) HasGaps() bool {
	return len(r.Gaps) > 0
}

// AnalysisResult is the outcome of one analyzer run.
type AnalysisResult struct {
	Reports       []GroupReport `json:"groups" yaml:"groups"`
	EntryCount    int           `json:"entry_count" yaml:"entry_count"`
	ExcludedCount int           `json:"excluded_count" yaml:"excluded_count"` // entries outside the fiscal year
	GroupCount    int           `json:"group_count" yaml:"group_count"`
	GapGroupCount int           `json:"gap_group_count" yaml:"gap_group_count"`
	Years         []int         `json:"years" yaml:"years"`
	FiscalYear    int           `json:"fiscal_year,omitempty" yaml:"fiscal_year,omitempty"`
	Summary       string        `json:"summary,omitempty" yaml:"summary,omitempty"`
}
