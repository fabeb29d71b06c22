// Package analyzer runs the recurring-entry pipeline: fiscal-year scoping,
// counterparty aliasing, keying, monthly aggregation and gap classification.
package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"fjacquet/ledger-gaps/internal/aggregator"
	"fjacquet/ledger-gaps/internal/dateutils"
	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/normalizer"
	"fjacquet/ledger-gaps/internal/pattern"
	"fjacquet/ledger-gaps/internal/store"

	"golang.org/x/sync/errgroup"
)

// Options controls an analyzer run.
type Options struct {
	// FiscalYear restricts the analysis to entries dated in that year.
	// Zero analyzes every entry, folding all years into the same months.
	FiscalYear int
	// Workers bounds the number of groups classified concurrently.
	Workers int
}

// DefaultOptions returns options using one worker per CPU and no year filter.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}

// Analyzer is safe for concurrent use; every run builds fresh groups.
type Analyzer struct {
	normalizer *normalizer.Normalizer
	classifier *pattern.Classifier
	aliases    store.AliasLoader
	opts       Options
	logger     logging.Logger
}

// New creates an Analyzer. aliases may be nil.
func New(n *normalizer.Normalizer, c *pattern.Classifier, aliases store.AliasLoader, opts Options, logger logging.Logger) (*Analyzer, error) {
	if n == nil || c == nil {
		return nil, fmt.Errorf("analyzer requires a normalizer and a classifier")
	}
	if opts.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", opts.Workers)
	}
	if opts.FiscalYear < 0 {
		return nil, fmt.Errorf("fiscal year must not be negative, got %d", opts.FiscalYear)
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Analyzer{normalizer: n, classifier: c, aliases: aliases, opts: opts, logger: logger}, nil
}

// Options returns the run options.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze groups entries and classifies every group. The returned reports are
// sorted by gap count (descending) then key; the order does not depend on
// the number of workers.
func (a *Analyzer) Analyze(ctx context.Context, entries []models.LedgerEntry) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	aliases, err := a.loadAliases()
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{FiscalYear: a.opts.FiscalYear}
	result.Years = yearsOf(entries)

	scoped := make([]models.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if a.opts.FiscalYear > 0 && entry.Date.Year() != a.opts.FiscalYear {
			result.ExcludedCount++
			continue
		}
		entry.Counterparty = aliases.Resolve(entry.Counterparty)
		scoped = append(scoped, entry)
	}
	result.EntryCount = len(scoped)

	if a.opts.FiscalYear == 0 && len(result.Years) > 1 {
		a.logger.Warn("Entries span several years; months of different years are merged",
			logging.F("years", result.Years))
	}
	if a.opts.FiscalYear > 0 && result.ExcludedCount > 0 {
		a.logger.Info("Excluded entries outside fiscal year",
			logging.F(logging.FieldFiscalYear, a.opts.FiscalYear),
			logging.F(logging.FieldCount, result.ExcludedCount))
	}

	groups := aggregator.Aggregate(scoped, a.normalizer)
	reports, err := a.classify(ctx, groups)
	if err != nil {
		return nil, err
	}
	pattern.Sort(reports)

	result.Reports = reports
	result.GroupCount = len(reports)
	result.GapGroupCount = len(pattern.WithGaps(reports))

	a.logger.Info("Analysis complete",
		logging.F(logging.FieldCount, result.EntryCount),
		logging.F("groups", result.GroupCount),
		logging.F(logging.FieldGaps, result.GapGroupCount),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result, nil
}

func (a *Analyzer) loadAliases() (*store.Aliases, error) {
	if a.aliases == nil {
		return nil, nil
	}
	aliases, err := a.aliases.LoadAliases()
	if err != nil {
		return nil, fmt.Errorf("error loading counterparty aliases: %w", err)
	}
	if aliases.Len() > 0 {
		a.logger.Debug("Counterparty aliases loaded", logging.F(logging.FieldCount, aliases.Len()))
	}
	return aliases, nil
}

// classify runs the classifier over groups with at most opts.Workers
// goroutines. Each result is written to its own index.
func (a *Analyzer) classify(ctx context.Context, groups []aggregator.Group) ([]models.GroupReport, error) {
	if a.opts.Workers == 1 {
		return a.classifier.ClassifyAll(groups), nil
	}
	reports := make([]models.GroupReport, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = a.classifier.Classify(groups[i])
			if reports[i].HasGaps() {
				a.logger.Debug("Gaps detected",
					logging.F(logging.FieldGroupKey, reports[i].Key),
					logging.F(logging.FieldGaps, reports[i].Gaps),
					logging.F(logging.FieldShifts, reports[i].Shifts))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func yearsOf(entries []models.LedgerEntry) []int {
	dates := make([]time.Time, len(entries))
	for i, entry := range entries {
		dates[i] = entry.Date
	}
	return dateutils.YearsOf(dates)
}
