// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repometrics MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.LedgerManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Repometrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		collect: core.CollectRepository,
	}

	// --- 1. Tool: collect_repository ---
	s.AddTool(mcp.NewTool("collect_repository",
		mcp.WithDescription("Collect the full metrics record for one GitHub repository. Nothing is written to the output store."),
		mcp.WithString("repository", mcp.Description("Repository as owner/name, e.g. 'octocat/Hello-World'."), mcp.Required()),
	), h.handleCollectRepository)

	// --- 2. Tool: describe_schema ---
	s.AddTool(mcp.NewTool("describe_schema",
		mcp.WithDescription("List the output columns in order and the collection stages that fill them."),
	), h.handleDescribeSchema)

	// --- 3. Tool: get_run_status ---
	s.AddTool(mcp.NewTool("get_run_status",
		mcp.WithDescription("Summarize the run ledger: number of runs, last run, and repository outcomes."),
	), h.handleGetRunStatus)

	return s
}

// StartMCPServer starts the repometrics MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.LedgerManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
