// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/ledger-gaps/internal/config"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ledger-gaps",
		Short: "Find missing postings in recurring ledger entries.",
		Long: `ledger-gaps groups recurring ledger postings (rent, subscriptions, leases)
by counterparty and description, lays them out over the twelve months of a
year and reports the months where a posting is missing (gap) or appears to
have landed in a neighbouring month (shift).

Input can be a CSV export or an ISO 20022 CAMT.053 bank statement.`,
		SilenceUsage: true,
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	// ConfigFile overrides the config file search path.
	ConfigFile string
	// LogLevel and LogFormat override the log section of the config.
	LogLevel  string
	LogFormat string
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input ledger file (CSV or CAMT.053 XML)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default: stdout)")
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default: ./config.yaml, ./.ledger-gaps/config.yaml or ~/.ledger-gaps/config.yaml)")
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "Log format (text or json)")
}

// LoadConfig reads the configuration and applies the persistent flags.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(ConfigFile)
	if err != nil {
		return nil, err
	}
	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	if LogFormat != "" {
		cfg.Log.Format = LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
