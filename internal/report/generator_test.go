package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *models.AnalysisResult {
	rent := models.GroupReport{
		Key:           "Vastgoed BV | huur kantoor",
		Counterparty:  "Vastgoed BV",
		Description:   "huur kantoor",
		Total:         decimal.RequireFromString("-16500"),
		AverageAmount: decimal.RequireFromString("-1500"),
		ActiveMonths:  11,
		FirstActive:   0,
		LastActive:    11,
		Analyzed:      true,
		Gaps:          []int{3},
		Shifts:        []int{},
	}
	for m := 0; m < models.MonthsPerYear; m++ {
		if m != 3 {
			rent.MonthlyAmounts[m] = decimal.RequireFromString("-1500")
			rent.MonthlyCounts[m] = 1
		}
	}

	phone := models.GroupReport{
		Key:           "KPN | abonnement",
		Counterparty:  "KPN",
		Description:   "abonnement",
		Total:         decimal.RequireFromString("-120"),
		AverageAmount: decimal.RequireFromString("-40"),
		ActiveMonths:  3,
		FirstActive:   0,
		LastActive:    3,
		Analyzed:      true,
		Gaps:          []int{},
		Shifts:        []int{2},
	}
	phone.MonthlyAmounts[0] = decimal.RequireFromString("-40")
	phone.MonthlyAmounts[1] = decimal.RequireFromString("-40")
	phone.MonthlyAmounts[3] = decimal.RequireFromString("-40")
	phone.MonthlyCounts[0], phone.MonthlyCounts[1], phone.MonthlyCounts[3] = 1, 1, 1

	return &models.AnalysisResult{
		Reports:       []models.GroupReport{rent, phone},
		EntryCount:    14,
		GroupCount:    2,
		GapGroupCount: 1,
		Years:         []int{2024},
		FiscalYear:    2024,
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "CSV", " json ", "yaml"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	gen := NewReportGenerator(Options{Top: 5}, logging.NewMockLogger())

	require.NoError(t, gen.Write(&buf, sampleResult(), FormatText))
	out := buf.String()

	assert.Contains(t, out, "2 groups, 1 with gaps")
	assert.Contains(t, out, "fiscal year 2024")
	assert.Contains(t, out, "Vastgoed BV | huur kantoor")
	assert.Contains(t, out, gapMarker)
	assert.Contains(t, out, shiftMarker)
	assert.Contains(t, out, "Missing items")
	assert.Contains(t, out, "Apr")
	assert.Contains(t, out, "expected ~-1500.00 per month")
	assert.NotContains(t, out, "Summary")
}

func TestWrite_TextSummaryAndEmpty(t *testing.T) {
	gen := NewReportGenerator(Options{}, nil)

	result := sampleResult()
	result.Summary = "Rent for April is missing."
	var buf bytes.Buffer
	require.NoError(t, gen.Write(&buf, result, FormatText))
	assert.Contains(t, buf.String(), "Rent for April is missing.")

	buf.Reset()
	require.NoError(t, gen.Write(&buf, &models.AnalysisResult{}, FormatText))
	assert.Contains(t, buf.String(), "No recurring entries found.")
}

func TestWrite_TextTopLimitsMissingItems(t *testing.T) {
	result := sampleResult()
	second := result.Reports[0]
	second.Key = "Zakelijk | lease"
	result.Reports = append(result.Reports, second)

	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator(Options{Top: 1}, nil).Write(&buf, result, FormatText))

	missing := buf.String()[strings.Index(buf.String(), "Missing items"):]
	assert.Contains(t, missing, "Vastgoed BV | huur kantoor")
	assert.NotContains(t, missing, "Zakelijk | lease")
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator(Options{Delimiter: ';'}, nil).Write(&buf, sampleResult(), FormatCSV))

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "Key", header[0])
	assert.Equal(t, "Jan", header[3])
	assert.Equal(t, "Shifts", header[len(header)-1])

	rent := records[1]
	assert.Equal(t, "-1500.00", rent[3])
	assert.Equal(t, "", rent[6], "April is empty")
	assert.Equal(t, "Apr", rent[len(rent)-2])
	assert.Equal(t, "Mar", records[2][len(rent)-1])
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator(Options{}, nil).Write(&buf, sampleResult(), FormatJSON))

	var decoded models.AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	want := sampleResult()
	opt := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, &decoded, opt); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator(Options{}, nil).Write(&buf, sampleResult(), FormatYAML))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded["group_count"])
	groups, ok := decoded["groups"].([]interface{})
	require.True(t, ok)
	first := groups[0].(map[string]interface{})
	assert.Equal(t, "Vastgoed BV | huur kantoor", first["key"])
	assert.Equal(t, "-16500", first["total"])
}

func TestWrite_Errors(t *testing.T) {
	gen := NewReportGenerator(Options{}, nil)
	var buf bytes.Buffer

	assert.Error(t, gen.Write(&buf, nil, FormatJSON))
	assert.ErrorContains(t, gen.Write(&buf, sampleResult(), Format("pdf")), "unsupported report format")
}
