// Package alias implements the alias command and its subcommands.
package alias

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/ledger-gaps/cmd/root"
	"fjacquet/ledger-gaps/internal/config"
	"fjacquet/ledger-gaps/internal/store"

	"github.com/spf13/cobra"
)

var aliasFile string

// Cmd represents the alias command
var Cmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage counterparty aliases",
	Long: `Aliases map the different spellings a bank uses for one counterparty
("KPN B.V.", "KPN BV") onto a single canonical name before entries are grouped.`,
}

var addCmd = &cobra.Command{
	Use:     "add CANONICAL VARIANT...",
	Short:   "Record one or more variants of a counterparty name",
	Example: `  ledger-gaps alias add KPN "KPN B.V." "KPN BV"`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		aliases, err := openStore()
		if err != nil {
			return err
		}
		for _, variant := range args[1:] {
			if err := aliases.AddAlias(args[0], variant); err != nil {
				return fmt.Errorf("failed to add alias: %w", err)
			}
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		aliases, err := openStore()
		if err != nil {
			return err
		}
		mappings, err := aliases.LoadMappings()
		if err != nil {
			return err
		}

		canonicals := make([]string, 0, len(mappings))
		for canonical := range mappings {
			canonicals = append(canonicals, canonical)
		}
		sort.Strings(canonicals)

		out := cmd.OutOrStdout()
		for _, canonical := range canonicals {
			variants := append([]string(nil), mappings[canonical]...)
			sort.Strings(variants)
			fmt.Fprintf(out, "%s: %s\n", canonical, strings.Join(variants, ", "))
		}
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVar(&aliasFile, "aliases", "", "Counterparty alias file (default: aliases.file from config)")
	Cmd.AddCommand(addCmd, listCmd)
}

func openStore() (*store.AliasStore, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, err
	}
	if aliasFile != "" {
		cfg.Aliases.File = aliasFile
	}
	return store.NewAliasStore(cfg.Aliases.File, config.NewLogger(cfg)), nil
}
