// Package container provides dependency injection for the ledger-gaps
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/ledger-gaps/internal/analyzer"
	"fjacquet/ledger-gaps/internal/config"
	"fjacquet/ledger-gaps/internal/ledgerparser"
	"fjacquet/ledger-gaps/internal/locale"
	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/normalizer"
	"fjacquet/ledger-gaps/internal/pattern"
	"fjacquet/ledger-gaps/internal/report"
	"fjacquet/ledger-gaps/internal/store"
	"fjacquet/ledger-gaps/internal/summarizer"

	"github.com/shopspring/decimal"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	locales    *locale.Registry
	normalizer *normalizer.Normalizer
	aliases    *store.AliasStore
	analyzer   *analyzer.Analyzer
	parsers    *ledgerparser.Registry
	reports    *report.ReportGenerator
	summarizer summarizer.Summarizer
	gemini     *summarizer.GeminiClient
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	locales := locale.NewRegistry()
	if cfg.Analysis.LocaleFile != "" {
		if err := locales.LoadFile(cfg.Analysis.LocaleFile); err != nil {
			return nil, fmt.Errorf("failed to load locale file: %w", err)
		}
	}

	tables := make([]locale.MonthTable, 0, len(cfg.Analysis.Locales))
	for _, tag := range cfg.Analysis.Locales {
		table, err := locales.Get(tag)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	norm := normalizer.New(tables...)

	classifier, err := pattern.NewClassifier(pattern.Options{
		ShiftMultiplier: decimal.NewFromFloat(cfg.Analysis.ShiftMultiplier),
		MinActiveMonths: cfg.Analysis.MinActiveMonths,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	aliasStore := store.NewAliasStore(cfg.Aliases.File, logger)

	an, err := analyzer.New(norm, classifier, aliasStore, analyzer.Options{
		FiscalYear: cfg.Analysis.FiscalYear,
		Workers:    cfg.Analysis.Workers,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	parsers := ledgerparser.NewRegistry(logger,
		ledgerparser.NewCSVParser(ledgerparser.CSVOptions{
			Delimiter: config.Rune(cfg.CSV.Delimiter),
			Encoding:  cfg.CSV.Encoding,
			Currency:  cfg.CSV.Currency,
		}, logger),
		ledgerparser.NewCAMTParser(logger),
	)

	reports := report.NewReportGenerator(report.Options{
		Top:       cfg.Report.Top,
		Delimiter: config.Rune(cfg.Report.Delimiter),
	}, logger)

	var (
		sum    summarizer.Summarizer = summarizer.NoopSummarizer{}
		gemini *summarizer.GeminiClient
	)
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err = summarizer.NewGeminiClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		sum = summarizer.NewAISummarizer(gemini, summarizer.Options{
			Top:               cfg.Report.Top,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			Timeout:           time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		}, logger)
		logger.Info("AI summaries enabled", logging.F(logging.FieldModel, cfg.AI.Model))
	} else {
		logger.Debug("AI summaries disabled")
	}

	logger.Debug("Container initialized",
		logging.F(logging.FieldLocale, norm.Locales()),
		logging.F(logging.FieldFiscalYear, cfg.Analysis.FiscalYear))

	return &Container{
		logger:     logger,
		config:     cfg,
		locales:    locales,
		normalizer: norm,
		aliases:    aliasStore,
		analyzer:   an,
		parsers:    parsers,
		reports:    reports,
		summarizer: sum,
		gemini:     gemini,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLocales returns the month-name registry, including any loaded locale file.
func (c *Container) GetLocales() *locale.Registry {
	return c.locales
}

// GetNormalizer returns the key normalizer for the configured locales.
func (c *Container) GetNormalizer() *normalizer.Normalizer {
	return c.normalizer
}

// GetAliasStore returns the counterparty alias store.
func (c *Container) GetAliasStore() *store.AliasStore {
	return c.aliases
}

// GetAnalyzer returns the analyzer.
func (c *Container) GetAnalyzer() *analyzer.Analyzer {
	return c.analyzer
}

// GetParsers returns the input parser registry.
func (c *Container) GetParsers() *ledgerparser.Registry {
	return c.parsers
}

// GetReportGenerator returns the report writer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// GetSummarizer returns the summarizer; a no-op one when AI is disabled.
func (c *Container) GetSummarizer() summarizer.Summarizer {
	return c.summarizer
}

// Close releases the Gemini client if one was created.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			return fmt.Errorf("failed to close Gemini client: %w", err)
		}
	}
	return nil
}
