package report

import (
	"encoding/csv"
	"io"

	"fjacquet/ledger-gaps/internal/models"

	"github.com/gocarina/gocsv"
)

// csvRow is one group in the CSV report.
type csvRow struct {
	Key          string `csv:"Key"`
	Counterparty string `csv:"Counterparty"`
	Description  string `csv:"Description"`
	Jan          string `csv:"Jan"`
	Feb          string `csv:"Feb"`
	Mar          string `csv:"Mar"`
	Apr          string `csv:"Apr"`
	May          string `csv:"May"`
	Jun          string `csv:"Jun"`
	Jul          string `csv:"Jul"`
	Aug          string `csv:"Aug"`
	Sep          string `csv:"Sep"`
	Oct          string `csv:"Oct"`
	Nov          string `csv:"Nov"`
	Dec          string `csv:"Dec"`
	Total        string `csv:"Total"`
	Average      string `csv:"Average"`
	ActiveMonths int    `csv:"ActiveMonths"`
	Analyzed     bool   `csv:"Analyzed"`
	Gaps         string `csv:"Gaps"`
	Shifts       string `csv:"Shifts"`
}

func newCSVRow(r models.GroupReport) csvRow {
	var m [models.MonthsPerYear]string
	for i, amount := range r.MonthlyAmounts {
		if r.MonthlyCounts[i] > 0 {
			m[i] = amount.StringFixed(2)
		}
	}
	return csvRow{
		Key:          r.Key,
		Counterparty: r.Counterparty,
		Description:  r.Description,
		Jan:          m[0],
		Feb:          m[1],
		Mar:          m[2],
		Apr:          m[3],
		May:          m[4],
		Jun:          m[5],
		Jul:          m[6],
		Aug:          m[7],
		Sep:          m[8],
		Oct:          m[9],
		Nov:          m[10],
		Dec:          m[11],
		Total:        r.Total.StringFixed(2),
		Average:      r.AverageAmount.StringFixed(2),
		ActiveMonths: r.ActiveMonths,
		Analyzed:     r.Analyzed,
		Gaps:         monthList(r.Gaps, " "),
		Shifts:       monthList(r.Shifts, " "),
	}
}

func (g *ReportGenerator) writeCSV(w io.Writer, result *models.AnalysisResult) error {
	rows := make([]csvRow, len(result.Reports))
	for i, r := range result.Reports {
		rows[i] = newCSVRow(r)
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = g.opts.Delimiter
	return gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter))
}
