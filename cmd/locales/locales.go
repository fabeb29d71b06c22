// Package locales implements the locales command.
package locales

import (
	"fmt"
	"strings"

	"fjacquet/ledger-gaps/cmd/root"
	"fjacquet/ledger-gaps/internal/container"
	"fjacquet/ledger-gaps/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the locales command
var Cmd = &cobra.Command{
	Use:   "locales",
	Short: "List the month-name vocabularies used to normalize descriptions",
	Long: `Locales lists every known locale with the words that are stripped from
descriptions for each month. Locales loaded from analysis.locale_file are
included; the ones marked with * are active.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	active := make(map[string]bool)
	for _, tag := range c.GetNormalizer().Locales() {
		active[tag] = true
	}

	out := cmd.OutOrStdout()
	registry := c.GetLocales()
	for _, tag := range registry.Tags() {
		table, err := registry.Get(tag)
		if err != nil {
			return err
		}
		marker := " "
		if active[tag] {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, tag)
		for i, variants := range table.Months {
			fmt.Fprintf(out, "    %s  %s\n", report.MonthLabels[i], strings.Join(variants, ", "))
		}
	}
	return nil
}
