package aggregator

import (
	"math/rand"
	"testing"
	"time"

	"fjacquet/ledger-gaps/internal/locale"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/normalizer"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(counterparty, description string, year int, month time.Month, amount string) models.LedgerEntry {
	return models.LedgerEntry{
		Counterparty: counterparty,
		Description:  description,
		Date:         time.Date(year, month, 15, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString(amount),
	}
}

func dutchNormalizer(t *testing.T) *normalizer.Normalizer {
	t.Helper()
	nl, err := locale.NewRegistry().Get("nl")
	require.NoError(t, err)
	return normalizer.New(nl)
}

func sampleEntries() []models.LedgerEntry {
	return []models.LedgerEntry{
		entry("Vastgoed BV", "Huur kantoor januari 2024", 2024, time.January, "-1500.00"),
		entry("Vastgoed BV", "Huur kantoor februari 2024", 2024, time.February, "-1500.00"),
		entry("Vastgoed BV", "Huur kantoor maart 2024", 2024, time.March, "-1500.00"),
		entry("Vastgoed BV", "Huur kantoor maart correctie", 2024, time.March, "200.00"),
		entry("Energie NV", "Voorschot stroom jan", 2024, time.January, "-210.40"),
		entry("Energie NV", "Voorschot stroom dec", 2024, time.December, "-189.60"),
	}
}

func TestAggregate_GroupsAndBuckets(t *testing.T) {
	groups := Aggregate(sampleEntries(), dutchNormalizer(t))
	require.Len(t, groups, 3)

	assert.Equal(t, "Energie NV | voorschot stroom", groups[0].Key)
	assert.Equal(t, "Vastgoed BV | huur kantoor", groups[1].Key)
	assert.Equal(t, "Vastgoed BV | huur kantoor correctie", groups[2].Key)

	rent := groups[1]
	assert.Equal(t, "Vastgoed BV", rent.Counterparty)
	assert.Equal(t, "huur kantoor", rent.Description)
	assert.Equal(t, [12]int{1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}, rent.MonthlyCounts)
	assert.True(t, decimal.RequireFromString("-4500").Equal(rent.Total))
	assert.True(t, decimal.RequireFromString("-1500").Equal(rent.AverageAmount))
	assert.Equal(t, 3, rent.ActiveMonths())

	first, last := rent.ActiveRange()
	assert.Equal(t, 0, first)
	assert.Equal(t, 2, last)
}

func TestAggregate_YearBlind(t *testing.T) {
	entries := []models.LedgerEntry{
		entry("Acme", "Support", 2023, time.May, "100"),
		entry("Acme", "Support", 2024, time.May, "100"),
	}
	groups := Aggregate(entries, dutchNormalizer(t))
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].MonthlyCounts[4])
	assert.True(t, decimal.NewFromInt(200).Equal(groups[0].MonthlyAmounts[4]))
	assert.Equal(t, 1, groups[0].ActiveMonths())
}

func TestAggregate_SumOfMonthsEqualsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var entries []models.LedgerEntry
	for i := 0; i < 500; i++ {
		entries = append(entries, entry(
			[]string{"A", "B", "C"}[rng.Intn(3)],
			[]string{"rent", "lease", "licence"}[rng.Intn(3)],
			2024,
			time.Month(rng.Intn(12)+1),
			decimal.NewFromInt(int64(rng.Intn(20000)-10000)).Shift(-2).String(),
		))
	}

	for _, g := range Aggregate(entries, dutchNormalizer(t)) {
		sum := decimal.Zero
		count := 0
		for i := range g.MonthlyAmounts {
			sum = sum.Add(g.MonthlyAmounts[i])
			count += g.MonthlyCounts[i]
		}
		assert.True(t, sum.Equal(g.Total), "group %s", g.Key)
		assert.Equal(t, g.EntryCount, count)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	entries := sampleEntries()
	expected := Aggregate(entries, dutchNormalizer(t))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		shuffled := append([]models.LedgerEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Aggregate(shuffled, dutchNormalizer(t))
		require.Len(t, got, len(expected))
		for j := range got {
			assert.Equal(t, expected[j].Key, got[j].Key)
			assert.Equal(t, expected[j].MonthlyCounts, got[j].MonthlyCounts)
			assert.True(t, expected[j].Total.Equal(got[j].Total))
		}
	}
}

func TestGroup_Empty(t *testing.T) {
	var g Group
	first, last := g.ActiveRange()
	assert.Equal(t, -1, first)
	assert.Equal(t, -1, last)
	assert.True(t, g.average().IsZero())
	assert.Empty(t, Aggregate(nil, dutchNormalizer(t)))
}
