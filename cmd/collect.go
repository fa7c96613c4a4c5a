package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/spf13/cobra"
)

// collectCmd runs the batch over a repository list.
var collectCmd = &cobra.Command{
	Use:   "collect [input-file]",
	Short: "Collect metrics for every repository in a list and append them to the output store.",
	Long: `Read owner,name pairs from the input file and build one row per repository.

Each row combines five sources, in this order:
- Language byte sizes from the GitHub API
- File and line counts from an external counter (cloc by default)
- The commit count shown on the repository page
- Creation date and last commit date
- Contributor commit totals

The header is appended first on every run. A repository that fails any source
is skipped with a warning and the run moves on; no partial rows are written.

Examples:
  # Collect into the default repo-metrics.csv
  repometrics collect repos.csv

  # JSON lines output without the per-repository outcome table
  repometrics collect repos.csv --format jsonl --output-file metrics.jsonl --summary=false

  # Record the run in a SQLite ledger
  repometrics collect repos.csv --runs-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteCollect(rootCtx, cfg, ledgerManager)
	},
}
