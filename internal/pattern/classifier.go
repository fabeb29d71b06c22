// Package pattern classifies the empty months of a recurring series as gaps
// (a posting is probably missing) or shifts (the amount landed in a
// neighbouring month).
package pattern

import (
	"fmt"
	"sort"

	"fjacquet/ledger-gaps/internal/aggregator"
	"fjacquet/ledger-gaps/internal/models"

	"github.com/shopspring/decimal"
)

// Defaults used when no configuration overrides them.
const (
	DefaultShiftMultiplier = "1.8"
	DefaultMinActiveMonths = 3
)

// Options tunes the classifier.
//
// ShiftMultiplier is the sensitivity knob: a neighbour whose magnitude exceeds
// average*ShiftMultiplier is taken as having absorbed the empty month.
// MinActiveMonths is the number of distinct active months a series needs
// before it is considered recurring at all.
type Options struct {
	ShiftMultiplier decimal.Decimal
	MinActiveMonths int
}

// DefaultOptions returns the stock classifier settings.
func DefaultOptions() Options {
	return Options{
		ShiftMultiplier: decimal.RequireFromString(DefaultShiftMultiplier),
		MinActiveMonths: DefaultMinActiveMonths,
	}
}

// Validate checks the options for values the classifier cannot work with.
func (o Options) Validate() error {
	if !o.ShiftMultiplier.IsPositive() {
		return fmt.Errorf("shift multiplier must be positive, got: %s", o.ShiftMultiplier)
	}
	if o.MinActiveMonths < 1 || o.MinActiveMonths > models.MonthsPerYear {
		return fmt.Errorf("minimum active months must be between 1 and %d, got: %d", models.MonthsPerYear, o.MinActiveMonths)
	}
	return nil
}

// Classifier decides gap versus shift for the empty months of a group.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	opts Options
}

// NewClassifier creates a Classifier with validated options.
func NewClassifier(opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{opts: opts}, nil
}

// Options returns the settings the classifier was built with.
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify turns an aggregated group into a report. Groups below the
// active-month threshold are returned unanalyzed with no gaps or shifts.
// Months outside the active range are never flagged.
func (c *Classifier) Classify(g aggregator.Group) models.GroupReport {
	first, last := g.ActiveRange()
	report := models.GroupReport{
		Key:            g.Key,
		Counterparty:   g.Counterparty,
		Description:    g.Description,
		MonthlyAmounts: g.MonthlyAmounts,
		MonthlyCounts:  g.MonthlyCounts,
		Total:          g.Total,
		AverageAmount:  g.AverageAmount,
		ActiveMonths:   g.ActiveMonths(),
		FirstActive:    first,
		LastActive:     last,
		Gaps:           []int{},
		Shifts:         []int{},
	}

	if report.ActiveMonths < c.opts.MinActiveMonths || first < 0 {
		return report
	}
	report.Analyzed = true

	threshold := g.AverageAmount.Mul(c.opts.ShiftMultiplier).Abs()
	for i := first; i <= last; i++ {
		if g.MonthlyCounts[i] != 0 {
			continue
		}
		if c.absorbedByNeighbour(g, i, threshold) {
			report.Shifts = append(report.Shifts, i)
		} else {
			report.Gaps = append(report.Gaps, i)
		}
	}
	return report
}

func (c *Classifier) absorbedByNeighbour(g aggregator.Group, month int, threshold decimal.Decimal) bool {
	prev, next := decimal.Zero, decimal.Zero
	if month > 0 {
		prev = g.MonthlyAmounts[month-1]
	}
	if month < models.MonthsPerYear-1 {
		next = g.MonthlyAmounts[month+1]
	}
	return prev.Abs().GreaterThan(threshold) || next.Abs().GreaterThan(threshold)
}

// ClassifyAll classifies every group in order.
func (c *Classifier) ClassifyAll(groups []aggregator.Group) []models.GroupReport {
	reports := make([]models.GroupReport, len(groups))
	for i, g := range groups {
		reports[i] = c.Classify(g)
	}
	return reports
}

// Sort orders reports by gap count, most first, then by key.
func Sort(reports []models.GroupReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].GapCount() != reports[j].GapCount() {
			return reports[i].GapCount() > reports[j].GapCount()
		}
		return reports[i].Key < reports[j].Key
	})
}

// WithGaps returns the reports that have at least one gap, preserving order.
func WithGaps(reports []models.GroupReport) []models.GroupReport {
	var out []models.GroupReport
	for _, r := range reports {
		if r.HasGaps() {
			out = append(out, r)
		}
	}
	return out
}

// Top returns at most n reports. A non-positive n returns all of them.
func Top(reports []models.GroupReport, n int) []models.GroupReport {
	if n <= 0 || n >= len(reports) {
		return reports
	}
	return reports[:n]
}
