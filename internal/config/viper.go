// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"

	"fjacquet/ledger-gaps/internal/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g.
// LEDGERGAPS_ANALYSIS_FISCAL_YEAR.
const EnvPrefix = "LEDGERGAPS"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		// Delimiter of input files; empty means detect it from the header.
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
		Encoding  string `mapstructure:"encoding" yaml:"encoding"`
		Currency  string `mapstructure:"currency" yaml:"currency"`
	} `mapstructure:"csv" yaml:"csv"`

	Analysis struct {
		Locales         []string `mapstructure:"locales" yaml:"locales"`
		LocaleFile      string   `mapstructure:"locale_file" yaml:"locale_file"`
		ShiftMultiplier float64  `mapstructure:"shift_multiplier" yaml:"shift_multiplier"`
		MinActiveMonths int      `mapstructure:"min_active_months" yaml:"min_active_months"`
		FiscalYear      int      `mapstructure:"fiscal_year" yaml:"fiscal_year"`
		Workers         int      `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"analysis" yaml:"analysis"`

	Report struct {
		Format    string `mapstructure:"format" yaml:"format"`
		Top       int    `mapstructure:"top" yaml:"top"`
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"report" yaml:"report"`

	Aliases struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"aliases" yaml:"aliases"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig initializes Viper configuration with hierarchical loading:
// defaults, then the config file, then LEDGERGAPS_* environment variables.
// An explicit configFile must exist; the default locations are optional.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.ledger-gaps")
		v.AddConfigPath(".ledger-gaps")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is read from the unprefixed variable as well
	if err := v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", "")
	v.SetDefault("csv.encoding", "utf-8")
	v.SetDefault("csv.currency", "EUR")

	v.SetDefault("analysis.locales", []string{"nl"})
	v.SetDefault("analysis.locale_file", "")
	v.SetDefault("analysis.shift_multiplier", 1.8)
	v.SetDefault("analysis.min_active_months", 3)
	v.SetDefault("analysis.fiscal_year", 0)
	v.SetDefault("analysis.workers", runtime.NumCPU())

	v.SetDefault("report.format", "text")
	v.SetDefault("report.top", 10)
	v.SetDefault("report.delimiter", ",")

	v.SetDefault("aliases.file", "aliases.yaml")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if utf8.RuneCountInString(config.CSV.Delimiter) > 1 {
		return fmt.Errorf("CSV delimiter must be a single character or empty, got: %s", config.CSV.Delimiter)
	}
	if utf8.RuneCountInString(config.Report.Delimiter) != 1 {
		return fmt.Errorf("report delimiter must be a single character, got: %s", config.Report.Delimiter)
	}

	if len(config.Analysis.Locales) == 0 {
		return fmt.Errorf("analysis.locales must name at least one locale")
	}
	if config.Analysis.ShiftMultiplier <= 0 {
		return fmt.Errorf("analysis.shift_multiplier must be positive, got: %v", config.Analysis.ShiftMultiplier)
	}
	if config.Analysis.MinActiveMonths < 1 || config.Analysis.MinActiveMonths > 12 {
		return fmt.Errorf("analysis.min_active_months must be between 1 and 12, got: %d", config.Analysis.MinActiveMonths)
	}
	if config.Analysis.FiscalYear < 0 {
		return fmt.Errorf("analysis.fiscal_year must not be negative, got: %d", config.Analysis.FiscalYear)
	}
	if config.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1, got: %d", config.Analysis.Workers)
	}

	if _, err := report.ParseFormat(config.Report.Format); err != nil {
		return err
	}
	if config.Report.Top < 0 {
		return fmt.Errorf("report.top must not be negative, got: %d", config.Report.Top)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// Validate re-checks a configuration after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// Rune returns the first rune of s, or 0 when s is empty.
func Rune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}
