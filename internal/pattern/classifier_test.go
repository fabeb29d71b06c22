package pattern

import (
	"math/rand"
	"testing"
	"time"

	"fjacquet/ledger-gaps/internal/aggregator"
	"fjacquet/ledger-gaps/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGroup folds one posting per listed month into a group.
func buildGroup(key string, amounts map[int]string) aggregator.Group {
	g := aggregator.Group{Key: key}
	for month, amount := range amounts {
		g = g.Add(models.LedgerEntry{
			Date:   time.Date(2024, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString(amount),
		})
	}
	return g
}

func monthsExcept(amount string, skip ...int) map[int]string {
	out := make(map[int]string)
	for m := 0; m < 12; m++ {
		out[m] = amount
	}
	for _, s := range skip {
		delete(out, s)
	}
	return out
}

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultOptions())
	require.NoError(t, err)
	return c
}

func TestClassify_GapWhenNeighboursAreNormal(t *testing.T) {
	g := buildGroup("Vastgoed BV | huur kantoor", monthsExcept("-1500", 3))

	report := defaultClassifier(t).Classify(g)

	assert.True(t, report.Analyzed)
	assert.Equal(t, []int{3}, report.Gaps)
	assert.Empty(t, report.Shifts)
	assert.Equal(t, 0, report.FirstActive)
	assert.Equal(t, 11, report.LastActive)
	assert.Equal(t, 11, report.ActiveMonths)
}

func TestClassify_ShiftWhenNextNeighbourIsLarge(t *testing.T) {
	amounts := monthsExcept("-1000", 3)
	amounts[4] = "-3000"
	g := buildGroup("Vastgoed BV | huur kantoor", amounts)

	report := defaultClassifier(t).Classify(g)

	assert.Equal(t, []int{3}, report.Shifts)
	assert.Empty(t, report.Gaps)
}

func TestClassify_ShiftWhenPreviousNeighbourIsLarge(t *testing.T) {
	amounts := monthsExcept("250", 6)
	amounts[5] = "700"
	report := defaultClassifier(t).Classify(buildGroup("Client | retainer", amounts))

	assert.Equal(t, []int{6}, report.Shifts)
	assert.Empty(t, report.Gaps)
}

func TestClassify_NeighbourAtThresholdIsNotAShift(t *testing.T) {
	tests := []struct {
		name      string
		neighbour string
		other     string
		gaps      []int
		shifts    []int
	}{
		// average (60+180+60)/3 = 100, threshold 180
		{name: "exactly at threshold", neighbour: "180", other: "60", gaps: []int{1}, shifts: []int{}},
		{name: "just above threshold", neighbour: "180.03", other: "59.99", gaps: []int{}, shifts: []int{1}},
		{name: "negative amounts at threshold", neighbour: "-180", other: "-60", gaps: []int{1}, shifts: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGroup("Client | retainer", map[int]string{0: tt.other, 2: tt.neighbour, 3: tt.other})

			report := defaultClassifier(t).Classify(g)

			assert.True(t, report.Analyzed)
			assert.Equal(t, tt.gaps, report.Gaps)
			assert.Equal(t, tt.shifts, report.Shifts)
		})
	}
}

func TestClassify_InsufficientEvidence(t *testing.T) {
	g := buildGroup("Acme | support", map[int]string{0: "100", 5: "100"})

	report := defaultClassifier(t).Classify(g)

	assert.False(t, report.Analyzed)
	assert.Empty(t, report.Gaps)
	assert.Empty(t, report.Shifts)
	assert.Equal(t, 2, report.ActiveMonths)
}

func TestClassify_OnlyInsideActiveRange(t *testing.T) {
	g := buildGroup("SaaS | licentie", map[int]string{
		2: "-49", 3: "-49", 4: "-49", 6: "-49", 7: "-49", 8: "-49", 9: "-49",
	})

	report := defaultClassifier(t).Classify(g)

	assert.Equal(t, 2, report.FirstActive)
	assert.Equal(t, 9, report.LastActive)
	assert.Equal(t, []int{5}, report.Gaps)
	assert.Empty(t, report.Shifts)
}

func TestClassify_BoundaryNeighbours(t *testing.T) {
	// The empty month 1 has month 0 as previous neighbour; month 2 is large.
	g := buildGroup("X | y", map[int]string{0: "100", 2: "500", 3: "100"})
	report := defaultClassifier(t).Classify(g)
	assert.Equal(t, []int{1}, report.Shifts)

	// Empty month 10 next to December.
	g = buildGroup("X | z", map[int]string{8: "100", 9: "100", 11: "100"})
	report = defaultClassifier(t).Classify(g)
	assert.Equal(t, []int{10}, report.Gaps)
}

func TestClassify_MultiplierIsTunable(t *testing.T) {
	amounts := monthsExcept("-1000", 3)
	amounts[4] = "-1500"
	g := buildGroup("K | v", amounts)

	assert.Equal(t, []int{3}, defaultClassifier(t).Classify(g).Gaps)

	sensitive, err := NewClassifier(Options{ShiftMultiplier: decimal.RequireFromString("1.2"), MinActiveMonths: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, sensitive.Classify(g).Shifts)
}

func TestClassify_MinActiveMonthsIsTunable(t *testing.T) {
	g := buildGroup("Acme | support", map[int]string{0: "100", 2: "100"})

	strict := defaultClassifier(t).Classify(g)
	assert.False(t, strict.Analyzed)

	loose, err := NewClassifier(Options{ShiftMultiplier: decimal.RequireFromString("1.8"), MinActiveMonths: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, loose.Classify(g).Gaps)
}

func TestNewClassifier_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "zero multiplier", opts: Options{ShiftMultiplier: decimal.Zero, MinActiveMonths: 3}},
		{name: "negative multiplier", opts: Options{ShiftMultiplier: decimal.NewFromInt(-1), MinActiveMonths: 3}},
		{name: "zero months", opts: Options{ShiftMultiplier: decimal.NewFromInt(2), MinActiveMonths: 0}},
		{name: "too many months", opts: Options{ShiftMultiplier: decimal.NewFromInt(2), MinActiveMonths: 13}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestClassify_GapsAndShiftsPartitionEmptyMonths(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	c := defaultClassifier(t)

	for i := 0; i < 300; i++ {
		amounts := make(map[int]string)
		for m := 0; m < 12; m++ {
			if rng.Intn(3) > 0 {
				amounts[m] = decimal.NewFromInt(int64(rng.Intn(5000) - 2500)).String()
			}
		}
		report := c.Classify(buildGroup("g", amounts))

		if report.ActiveMonths < 3 {
			assert.Empty(t, report.Gaps)
			assert.Empty(t, report.Shifts)
			continue
		}

		seen := make(map[int]bool)
		for _, m := range append(append([]int{}, report.Gaps...), report.Shifts...) {
			assert.False(t, seen[m], "month %d classified twice", m)
			seen[m] = true
			assert.GreaterOrEqual(t, m, report.FirstActive)
			assert.LessOrEqual(t, m, report.LastActive)
			assert.Zero(t, report.MonthlyCounts[m])
		}
		for m := report.FirstActive; m <= report.LastActive; m++ {
			if report.MonthlyCounts[m] == 0 {
				assert.True(t, seen[m], "empty month %d not classified", m)
			}
		}
	}
}

func TestSort_DeterministicOrder(t *testing.T) {
	reports := []models.GroupReport{
		{Key: "b", Gaps: []int{1}},
		{Key: "a", Gaps: []int{}},
		{Key: "c", Gaps: []int{1, 2}},
		{Key: "a2", Gaps: []int{1}},
	}
	Sort(reports)

	var keys []string
	for _, r := range reports {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"c", "a2", "b", "a"}, keys)
}

func TestWithGapsAndTop(t *testing.T) {
	reports := []models.GroupReport{
		{Key: "c", Gaps: []int{1, 2}},
		{Key: "b", Gaps: []int{1}},
		{Key: "a", Gaps: []int{}},
	}

	withGaps := WithGaps(reports)
	require.Len(t, withGaps, 2)
	assert.Len(t, Top(withGaps, 1), 1)
	assert.Len(t, Top(withGaps, 0), 2)
	assert.Len(t, Top(withGaps, 10), 2)
}
