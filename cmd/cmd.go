// Package cmd defines the command-line interface for repometrics.
package cmd

import (
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Console output format: text or json")
	rootCmd.PersistentFlags().String("output-file", schema.DefaultOutputFile, "Output store that rows are appended to")
	rootCmd.PersistentFlags().String("format", string(schema.CSVStore), "Output store format: csv or jsonl")
	rootCmd.PersistentFlags().String("api-url", schema.DefaultAPIURL, "Base URL of the GitHub REST API")
	rootCmd.PersistentFlags().String("site-url", schema.DefaultSiteURL, "Base URL of the GitHub web site (pages and clone URLs)")
	rootCmd.PersistentFlags().String("token", "", "GitHub token (prefer GITHUB_TOKEN or .env, this is plaintext)")
	rootCmd.PersistentFlags().String("http-timeout", "", "Per-request timeout, e.g. 30s (empty = no timeout)")
	rootCmd.PersistentFlags().String("counter-cmd", schema.DefaultCounterCommand, "External line counter executable")
	rootCmd.PersistentFlags().String("counter-args", "", "Arguments passed before the clone URL (default \"--json --quiet\")")
	rootCmd.PersistentFlags().String("commit-selector", schema.DefaultCommitSelector, "CSS selector of the commit count on the repository page")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.NoneBackend), "Run ledger backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Run ledger connection string (sqlite file path, mysql DSN or postgres keywords)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Diagnostic log format: text or json")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of collectCmd to Viper
	collectCmd.Flags().StringP("input", "i", "", "Repository list file (owner,name per line)")
	collectCmd.Flags().Bool("summary", true, "Print a per-repository outcome table after the run")
	if err := viper.BindPFlags(collectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding collect flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
