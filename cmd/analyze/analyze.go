// Package analyze implements the analyze command.
package analyze

import (
	"fmt"

	"fjacquet/ledger-gaps/cmd/common"
	"fjacquet/ledger-gaps/cmd/root"
	"fjacquet/ledger-gaps/internal/config"
	"fjacquet/ledger-gaps/internal/container"
	"fjacquet/ledger-gaps/internal/report"

	"github.com/spf13/cobra"
)

// Flags holds the analyze command's overrides. Zero values leave the
// configured setting untouched.
type Flags struct {
	Format     string
	Locales    []string
	FiscalYear int
	Multiplier float64
	MinMonths  int
	Workers    int
	Top        int
	Delimiter  string
	Encoding   string
	Aliases    string
	Summarize  bool
}

var flags Flags

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report gaps and shifts in recurring ledger entries",
	Long: `Analyze reads a ledger export, groups recurring postings by counterparty and
normalized description and reports, per group, the months inside its active
range where no posting was found.

An empty month is reported as a shift when a neighbouring month holds more
than the shift multiplier times the group's average amount, otherwise as a
gap. Groups with fewer than --min-months active months are not classified.`,
	Example: `  ledger-gaps analyze -i grootboek.csv
  ledger-gaps analyze -i statement.xml --fiscal-year 2024 --format csv -o gaps.csv
  ledger-gaps analyze -i export.csv --locale nl --locale en --multiplier 2.0`,
	RunE: run,
}

func init() {
	f := Cmd.Flags()
	f.StringVarP(&flags.Format, "format", "f", "", "Report format: text, csv, json or yaml")
	f.StringSliceVarP(&flags.Locales, "locale", "l", nil, "Month-name locale(s) to strip from descriptions (nl, en, de, fr)")
	f.IntVarP(&flags.FiscalYear, "fiscal-year", "y", 0, "Only analyze entries dated in this year")
	f.Float64Var(&flags.Multiplier, "multiplier", 0, "Shift threshold as a multiple of the group average")
	f.IntVar(&flags.MinMonths, "min-months", 0, "Minimum active months before a group is classified")
	f.IntVar(&flags.Workers, "workers", 0, "Number of groups classified in parallel")
	f.IntVar(&flags.Top, "top", -1, "Number of groups in the missing-items list (0 = all)")
	f.StringVar(&flags.Delimiter, "delimiter", "", "CSV input delimiter (default: detect)")
	f.StringVar(&flags.Encoding, "encoding", "", "CSV input encoding, e.g. windows-1252")
	f.StringVar(&flags.Aliases, "aliases", "", "Counterparty alias file")
	f.BoolVar(&flags.Summarize, "summarize", false, "Add an AI-written summary (requires GEMINI_API_KEY)")
}

// Apply copies the set flags onto cfg.
func (f Flags) Apply(cfg *config.Config) {
	if f.Format != "" {
		cfg.Report.Format = f.Format
	}
	if len(f.Locales) > 0 {
		cfg.Analysis.Locales = f.Locales
	}
	if f.FiscalYear != 0 {
		cfg.Analysis.FiscalYear = f.FiscalYear
	}
	if f.Multiplier != 0 {
		cfg.Analysis.ShiftMultiplier = f.Multiplier
	}
	if f.MinMonths != 0 {
		cfg.Analysis.MinActiveMonths = f.MinMonths
	}
	if f.Workers != 0 {
		cfg.Analysis.Workers = f.Workers
	}
	if f.Top >= 0 {
		cfg.Report.Top = f.Top
	}
	if f.Delimiter != "" {
		cfg.CSV.Delimiter = f.Delimiter
	}
	if f.Encoding != "" {
		cfg.CSV.Encoding = f.Encoding
	}
	if f.Aliases != "" {
		cfg.Aliases.File = f.Aliases
	}
	if f.Summarize {
		cfg.AI.Enabled = true
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			c.GetLogger().WithError(err).Warn("Failed to release resources")
		}
	}()

	_, err = common.NewPipeline(c).ProcessFile(cmd.Context(), common.Request{
		Input:     root.SharedFlags.Input,
		Output:    root.SharedFlags.Output,
		Format:    format,
		Summarize: cfg.AI.Enabled,
		Stdout:    cmd.OutOrStdout(),
	})
	return err
}
