package main

import (
	"fmt"
	"os"

	"fjacquet/ledger-gaps/cmd/alias"
	"fjacquet/ledger-gaps/cmd/analyze"
	"fjacquet/ledger-gaps/cmd/locales"
	"fjacquet/ledger-gaps/cmd/normalize"
	"fjacquet/ledger-gaps/cmd/root"
	"fjacquet/ledger-gaps/internal/config"
)

func init() {
	// 1. Load .env first so GEMINI_API_KEY and LEDGERGAPS_* are visible to viper
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	// 2. Initialize root command flags
	root.Init()

	// 3. Add all subcommands
	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(normalize.Cmd)
	root.Cmd.AddCommand(locales.Cmd)
	root.Cmd.AddCommand(alias.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
