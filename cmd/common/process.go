// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/ledger-gaps/internal/analyzer"
	"fjacquet/ledger-gaps/internal/container"
	"fjacquet/ledger-gaps/internal/ledgerparser"
	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/report"
	"fjacquet/ledger-gaps/internal/summarizer"
	"fjacquet/ledger-gaps/internal/validation"
)

// Request describes one analyze run.
type Request struct {
	Input     string
	Output    string // empty writes to Stdout
	Format    report.Format
	Summarize bool
	Stdout    io.Writer
}

// Pipeline wires parsing, analysis, summarizing and reporting.
type Pipeline struct {
	Parsers    *ledgerparser.Registry
	Analyzer   *analyzer.Analyzer
	Reports    *report.ReportGenerator
	Summarizer summarizer.Summarizer
	Logger     logging.Logger
}

// NewPipeline takes its components from the container.
func NewPipeline(c *container.Container) *Pipeline {
	return &Pipeline{
		Parsers:    c.GetParsers(),
		Analyzer:   c.GetAnalyzer(),
		Reports:    c.GetReportGenerator(),
		Summarizer: c.GetSummarizer(),
		Logger:     c.GetLogger(),
	}
}

// ProcessFile parses req.Input, analyzes the entries and writes the report.
// Rows that could not be parsed are logged and skipped.
func (p *Pipeline) ProcessFile(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	if err := validation.InputFile(req.Input); err != nil {
		return nil, err
	}
	if err := validation.OutputFile(req.Output); err != nil {
		return nil, err
	}

	parsed, err := p.Parsers.ParseFile(req.Input)
	if err != nil {
		return nil, err
	}
	for _, rowErr := range parsed.RowErrors {
		p.Logger.WithError(rowErr.Err).Warn("Row skipped",
			logging.F(logging.FieldFile, req.Input),
			logging.F(logging.FieldRow, rowErr.Row))
	}
	if len(parsed.Entries) == 0 && len(parsed.RowErrors) > 0 {
		return nil, fmt.Errorf("no usable entries in %s: %w", req.Input, parsed.RowErrors)
	}

	result, err := p.Analyzer.Analyze(ctx, parsed.Entries)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if req.Summarize {
		summary, err := p.Summarizer.Summarize(ctx, result.Reports)
		if err != nil {
			p.Logger.WithError(err).Warn("Continuing without summary")
		}
		result.Summary = summary
	}

	out, err := openOutput(req)
	if err != nil {
		return nil, err
	}
	if err := p.Reports.Write(out, result, req.Format); err != nil {
		_ = out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("error closing output file: %w", err)
	}
	if req.Output != "" {
		p.Logger.Info("Report written",
			logging.F(logging.FieldOutputFile, req.Output),
			logging.F(logging.FieldFormat, string(req.Format)))
	}
	return result, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(req Request) (io.WriteCloser, error) {
	if req.Output == "" {
		if req.Stdout != nil {
			return nopCloser{req.Stdout}, nil
		}
		return nopCloser{os.Stdout}, nil
	}
	file, err := os.Create(req.Output) // #nosec G304 -- user supplied output path
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return file, nil
}
