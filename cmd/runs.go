package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads the minimal configuration needed by the ledger commands.
// Unlike sharedSetup it skips endpoint and counter validation.
func runsSetup(initStores bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseLedgerBackend(viper.GetString("runs-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	if !initStores {
		return nil
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run ledger: %w", err)
	}
	return nil
}

// sqliteLedgerPath is the file removed by 'runs clear' for the sqlite backend.
func sqliteLedgerPath() string {
	if cfg.LedgerDBConnect != "" {
		return cfg.LedgerDBConnect
	}
	return contract.GetLedgerDBFilePath()
}

// requireRunStore fails when the ledger is disabled.
func requireRunStore() (contract.RunStore, error) {
	if ledgerManager == nil || ledgerManager.GetRunStore() == nil {
		return nil, fmt.Errorf("run ledger is disabled; set --runs-backend to sqlite, mysql or postgresql")
	}
	return ledgerManager.GetRunStore(), nil
}

// runsCmd groups the run ledger commands.
//
// Note: these subcommands use runsSetup instead of sharedSetup. They never
// contact GitHub, so the endpoint and counter settings are irrelevant.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the run ledger and export it",
	Long: `Manage the run ledger that records every collect run.

When enabled with --runs-backend, each run stores:
- Run metadata (start and end time, duration, configuration)
- One outcome per repository (status, failing stage, error kind, record)

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show ledger statistics
  export  - Export runs and outcomes to Parquet
  clear   - Remove all ledger data
  migrate - Run database schema migrations`,
}

// runsStatusCmd shows ledger statistics.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run ledger statistics and connection details",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(true)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := requireRunStore()
		if err != nil {
			return err
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get run ledger status: %w", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
		return nil
	},
}

// runsExportCmd exports the ledger to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs and repository outcomes to Parquet",
	Long: `Export all stored runs to two Parquet files next to --output-file:

  <output-file>.runs.parquet          one row per run
  <output-file>.repo_results.parquet  one row per repository outcome

Examples:
  repometrics runs export --runs-backend sqlite --output-file ledger
  duckdb -c "SELECT status, count(*) FROM read_parquet('ledger.repo_results.parquet') GROUP BY 1"`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(true)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		if _, err := requireRunStore(); err != nil {
			return err
		}
		return iocache.ExecuteRunsExport(os.Stdout, cfg.OutputFile)
	},
}

// runsClearCmd clears the ledger.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run ledger data",
	Long: `Delete all stored runs and repository outcomes.

For SQLite the database file is removed. For MySQL and PostgreSQL the ledger
tables are dropped. This action cannot be undone; consider exporting first.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(false)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := iocache.ClearRuns(cfg.LedgerBackend, sqliteLedgerPath(), cfg.LedgerDBConnect); err != nil {
			return fmt.Errorf("failed to clear run ledger: %w", err)
		}
		cmd.Println("Run ledger cleared successfully.")
		return nil
	},
}

// runsMigrateCmd runs database migrations for the ledger.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run ledger.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  repometrics runs migrate --runs-backend sqlite
  repometrics runs migrate --runs-backend sqlite --target-version 1
  repometrics runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(false)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.MigrateRuns(cfg.LedgerBackend, cfg.LedgerDBConnect, viper.GetInt("target-version")); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}
