// Package normalize implements the normalize command.
package normalize

import (
	"fmt"
	"strings"

	"fjacquet/ledger-gaps/cmd/root"
	"fjacquet/ledger-gaps/internal/container"
	"fjacquet/ledger-gaps/internal/logging"

	"github.com/spf13/cobra"
)

var (
	counterparty string
	locales      []string
)

// Cmd represents the normalize command
var Cmd = &cobra.Command{
	Use:   "normalize [flags] DESCRIPTION...",
	Short: "Print the grouping key of one or more descriptions",
	Long: `Normalize prints the key each description would be grouped under, one per
line. Use it to check why two postings do or do not end up in the same series.`,
	Example: `  ledger-gaps normalize --counterparty "Vastgoed BV" "Huur januari 2024" "Huur feb. 2024"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    run,
}

func init() {
	Cmd.Flags().StringVarP(&counterparty, "counterparty", "c", "", "Counterparty to prefix the keys with")
	Cmd.Flags().StringSliceVarP(&locales, "locale", "l", nil, "Month-name locale(s) to strip (default: configured locales)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if len(locales) > 0 {
		cfg.Analysis.Locales = locales
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	norm := c.GetNormalizer()
	c.GetLogger().Debug("Normalizing descriptions",
		logging.F(logging.FieldLocale, strings.Join(norm.Locales(), ",")))
	for _, description := range args {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), norm.Key(counterparty, description)); err != nil {
			return err
		}
	}
	return nil
}
