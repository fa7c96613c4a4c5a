package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/sirupsen/logrus"
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a collection run.
// This struct remains the "final, validated" config.
type Config struct {
	InputFile   string
	OutputFile  string
	StoreFormat schema.StoreFormat
	Output      schema.OutputMode

	APIURL      string
	SiteURL     string
	Token       string // Please use env var or .env as this is plaintext
	HTTPTimeout time.Duration

	CounterCommand string
	CounterArgs    []string
	CommitSelector string

	LedgerBackend   schema.DatabaseBackend
	LedgerDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
	Summary   bool // Print a per-repository summary table after collect
	Width     int  // Terminal width override for tables, 0 means detect

	LogLevel  logrus.Level
	LogFormat string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputFileStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile    string `mapstructure:"output-file"`
	Format        string `mapstructure:"format"`
	Output        string `mapstructure:"output"`
	APIURL        string `mapstructure:"api-url"`
	SiteURL       string `mapstructure:"site-url"`
	Token         string `mapstructure:"token"`
	HTTPTimeout   string `mapstructure:"http-timeout"`
	CounterCmd    string `mapstructure:"counter-cmd"`
	CounterArgs   string `mapstructure:"counter-args"`
	Selector      string `mapstructure:"commit-selector"`
	LedgerBackend string `mapstructure:"runs-backend"`
	LedgerConnect string `mapstructure:"runs-db-connect"`
	Color         string `mapstructure:"color"`
	LogLevel      string `mapstructure:"log-level"`
	LogFormat     string `mapstructure:"log-format"`
	Width         int    `mapstructure:"width"`

	// --- Fields from collectCmd.Flags() ---
	Input   string `mapstructure:"input"`
	Summary bool   `mapstructure:"summary"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CounterArgs != nil {
		clone.CounterArgs = make([]string, len(c.CounterArgs))
		copy(clone.CounterArgs, c.CounterArgs)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEndpoints(cfg, input); err != nil {
		return err
	}
	if err := processCounter(cfg, input); err != nil {
		return err
	}
	if err := validateLedgerConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseLedgerBackend maps an empty string to NoneBackend and validates the rest.
func ParseLedgerBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputFile = strings.TrimSpace(input.Input)
	if input.InputFileStr != "" {
		cfg.InputFile = input.InputFileStr
	}
	cfg.OutputFile = input.OutputFile
	if cfg.OutputFile == "" {
		cfg.OutputFile = schema.DefaultOutputFile
	}
	cfg.Summary = input.Summary
	if input.Width < 0 {
		return fmt.Errorf("invalid --width %d: must not be negative", input.Width)
	}
	cfg.Width = input.Width

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Store format ---
	format := strings.ToLower(input.Format)
	if format == "" {
		format = string(schema.CSVStore)
	}
	cfg.StoreFormat = schema.StoreFormat(format)
	if _, ok := schema.ValidStoreFormats[cfg.StoreFormat]; !ok {
		return fmt.Errorf("invalid store format '%s'. must be csv, jsonl", input.Format)
	}

	// --- 2. Console output ---
	output := strings.ToLower(input.Output)
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(output)
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json", input.Output)
	}

	// --- 3. Logging ---
	level := input.LogLevel
	if level == "" {
		level = logrus.InfoLevel.String()
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}
	cfg.LogLevel = lvl

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid --log-format '%s'. must be text, json", input.LogFormat)
	}

	return nil
}

// processEndpoints validates the API and site URLs plus the HTTP timeout.
func processEndpoints(cfg *Config, input *ConfigRawInput) error {
	apiURL, err := normalizeBaseURL("api-url", input.APIURL, schema.DefaultAPIURL)
	if err != nil {
		return err
	}
	cfg.APIURL = apiURL

	siteURL, err := normalizeBaseURL("site-url", input.SiteURL, schema.DefaultSiteURL)
	if err != nil {
		return err
	}
	cfg.SiteURL = siteURL

	cfg.Token = strings.TrimSpace(input.Token)

	cfg.HTTPTimeout = 0
	if s := strings.TrimSpace(input.HTTPTimeout); s != "" && s != "0" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid --http-timeout '%s': %w", s, err)
		}
		if d < 0 {
			return fmt.Errorf("--http-timeout cannot be negative (received %s)", s)
		}
		cfg.HTTPTimeout = d
	}
	return nil
}

// normalizeBaseURL checks that raw is an absolute http(s) URL and strips the trailing slash.
func normalizeBaseURL(flag, raw, fallback string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = fallback
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid --%s '%s': %w", flag, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid --%s '%s': scheme must be http or https", flag, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid --%s '%s': missing host", flag, raw)
	}
	return strings.TrimRight(s, "/"), nil
}

// processCounter resolves the line counter command and selector.
func processCounter(cfg *Config, input *ConfigRawInput) error {
	cfg.CounterCommand = strings.TrimSpace(input.CounterCmd)
	if cfg.CounterCommand == "" {
		cfg.CounterCommand = schema.DefaultCounterCommand
	}

	if strings.TrimSpace(input.CounterArgs) == "" {
		cfg.CounterArgs = append([]string(nil), schema.DefaultCounterArgs...)
	} else {
		cfg.CounterArgs = strings.Fields(input.CounterArgs)
	}

	cfg.CommitSelector = strings.TrimSpace(input.Selector)
	if cfg.CommitSelector == "" {
		cfg.CommitSelector = schema.DefaultCommitSelector
	}
	return nil
}

// validateLedgerConfig validates the run ledger backend configuration.
func validateLedgerConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseLedgerBackend(input.LedgerBackend)
	if err != nil {
		return err
	}
	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = input.LedgerConnect
	return ValidateDatabaseConnectionString(cfg.LedgerBackend, cfg.LedgerDBConnect)
}

// ProcessProfilingConfig processes the profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// LedgerParams returns the configuration recorded alongside each ledger run.
// The token and connection strings are never included.
func (c *Config) LedgerParams() map[string]any {
	return map[string]any{
		"input_file":      c.InputFile,
		"output_file":     c.OutputFile,
		"store_format":    string(c.StoreFormat),
		"api_url":         c.APIURL,
		"site_url":        c.SiteURL,
		"counter_command": c.CounterCommand,
		"counter_args":    c.CounterArgs,
		"commit_selector": c.CommitSelector,
		"authenticated":   c.Token != "",
	}
}
