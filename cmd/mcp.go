package cmd

import (
	"github.com/huangsam/repometrics/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the repometrics MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents collect repository metrics through standard tools.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// Logs go to stderr, stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, ledgerManager)
	},
}
