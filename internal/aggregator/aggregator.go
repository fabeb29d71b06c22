// Package aggregator folds ledger entries into per-series calendar buckets.
//
// The fold is year-blind: a posting in March 2023 and one in March 2024 land
// in the same slot. Callers that need a single fiscal year must filter first
// (see the analyzer package).
package aggregator

import (
	"sort"

	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/normalizer"

	"github.com/shopspring/decimal"
)

// Keyer produces the cleaned description used to group entries.
type Keyer interface {
	CleanDescription(description string) string
}

// Group accumulates every posting of one recurring series.
// It is a value type; Add and Merge return new values.
type Group struct {
	Key            string
	Counterparty   string
	Description    string
	MonthlyAmounts [models.MonthsPerYear]decimal.Decimal
	MonthlyCounts  [models.MonthsPerYear]int
	Total          decimal.Decimal
	AverageAmount  decimal.Decimal
	EntryCount     int
}

// Add returns g with the entry folded into its calendar slot.
// AverageAmount is refreshed.
func (g Group) Add(entry models.LedgerEntry) Group {
	month := entry.MonthIndex()
	g.MonthlyAmounts[month] = g.MonthlyAmounts[month].Add(entry.Amount)
	g.MonthlyCounts[month]++
	g.Total = g.Total.Add(entry.Amount)
	g.EntryCount++
	g.AverageAmount = g.average()
	return g
}

// ActiveMonths counts the slots holding at least one posting.
func (g Group) ActiveMonths() int {
	active := 0
	for _, c := range g.MonthlyCounts {
		if c > 0 {
			active++
		}
	}
	return active
}

// ActiveRange returns the lowest and highest month index with a posting,
// or (-1, -1) for an empty group.
func (g Group) ActiveRange() (first, last int) {
	first, last = -1, -1
	for i, c := range g.MonthlyCounts {
		if c == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last
}

func (g Group) average() decimal.Decimal {
	active := g.ActiveMonths()
	if active == 0 {
		return decimal.Zero
	}
	return g.Total.Div(decimal.NewFromInt(int64(active)))
}

// Aggregate folds entries into groups keyed by counterparty and cleaned
// description. The result is sorted by key and independent of entry order.
func Aggregate(entries []models.LedgerEntry, keyer Keyer) []Group {
	groups := make(map[string]Group)
	for _, entry := range entries {
		description := keyer.CleanDescription(entry.Description)
		key := entry.Counterparty + normalizer.KeySeparator + description

		group, ok := groups[key]
		if !ok {
			group = Group{
				Key:          key,
				Counterparty: entry.Counterparty,
				Description:  description,
			}
		}
		groups[key] = group.Add(entry)
	}

	out := make([]Group, 0, len(groups))
	for _, group := range groups {
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
