package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerEntry_MonthIndex(t *testing.T) {
	entry := LedgerEntry{Date: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 0, entry.MonthIndex())

	entry.Date = time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 11, entry.MonthIndex())
}

func TestLedgerEntry_String(t *testing.T) {
	entry := LedgerEntry{
		Counterparty: "Vastgoed BV",
		Description:  "Huur maart",
		Date:         time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("-1500"),
	}
	assert.Equal(t, `2024-03-01 Vastgoed BV "Huur maart" -1500.00`, entry.String())
}

func TestGroupReport_Gaps(t *testing.T) {
	report := GroupReport{Gaps: []int{}, Shifts: []int{4}}
	assert.Equal(t, 0, report.GapCount())
	assert.False(t, report.HasGaps())

	report.Gaps = []int{2, 6}
	assert.Equal(t, 2, report.GapCount())
	assert.True(t, report.HasGaps())
}
