// Package report renders analysis results as a terminal matrix, CSV, JSON or
// YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported report format: %s", name)
}

// MonthLabels are the column headers for month indices 0..11.
var MonthLabels = [models.MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Options tunes report output.
type Options struct {
	// Top limits the missing-items list. Zero lists every group with gaps.
	Top int
	// Delimiter separates CSV fields.
	Delimiter rune
}

// ReportGenerator writes analysis results in the requested format.
type ReportGenerator struct {
	opts   Options
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(opts Options, logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &ReportGenerator{opts: opts, logger: logger}
}

// Write renders result to w.
func (g *ReportGenerator) Write(w io.Writer, result *models.AnalysisResult, format Format) error {
	if result == nil {
		return fmt.Errorf("cannot write a nil analysis result")
	}

	var err error
	switch format {
	case FormatText:
		_, err = io.WriteString(w, g.renderText(result))
	case FormatCSV:
		err = g.writeCSV(w, result)
	case FormatJSON:
		err = g.writeJSON(w, result)
	case FormatYAML:
		err = g.writeYAML(w, result)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		g.logger.WithError(err).Error("Failed to write report", logging.F(logging.FieldFormat, string(format)))
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	return nil
}

func (g *ReportGenerator) writeJSON(w io.Writer, result *models.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (g *ReportGenerator) writeYAML(w io.Writer, result *models.AnalysisResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(result); err != nil {
		return err
	}
	return encoder.Close()
}

// monthList renders month indices as labels, e.g. "Apr;Jun".
func monthList(months []int, sep string) string {
	labels := make([]string, 0, len(months))
	for _, m := range months {
		if m >= 0 && m < models.MonthsPerYear {
			labels = append(labels, MonthLabels[m])
		}
	}
	return strings.Join(labels, sep)
}
