package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/schema"
	"github.com/spf13/cobra"
)

// inspectCmd collects a single repository without writing to the output store.
var inspectCmd = &cobra.Command{
	Use:   "inspect <owner/name>",
	Short: "Collect and print the metrics record for one repository.",
	Long: `Run all five collection stages for a single repository and print the record
as a column/value table, or as JSON with --output json.

Nothing is appended to the output store and the run ledger is not touched.
A failing stage is reported with its name and error kind.

Examples:
  repometrics inspect octocat/Hello-World
  repometrics inspect octocat/Hello-World --output json`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, args []string) error {
		ref, err := schema.ParseRepositoryRef(args[0])
		if err != nil {
			return err
		}
		return core.ExecuteInspect(rootCtx, cfg, ref)
	},
}
