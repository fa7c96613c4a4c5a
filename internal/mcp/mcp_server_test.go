package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/iocache"
	mcp_internal "github.com/huangsam/repometrics/internal/mcp"
	"github.com/huangsam/repometrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, baseCfg *contract.Config, mgr contract.LedgerManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseCfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{APIURL: schema.DefaultAPIURL, SiteURL: schema.DefaultSiteURL}

	t.Run("collect_repository missing repository", func(t *testing.T) {
		res := callTool(t, baseCfg, nil, "collect_repository", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid repository")
	})

	t.Run("collect_repository bad reference", func(t *testing.T) {
		res := callTool(t, baseCfg, nil, "collect_repository", map[string]any{"repository": "octocat"})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid repository")
	})
}

func TestMCPServerHandlers_CollectFailureReportsStage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	baseCfg := &contract.Config{APIURL: server.URL, SiteURL: server.URL, CounterCommand: "cloc"}
	res := callTool(t, baseCfg, nil, "collect_repository", map[string]any{"repository": "octocat/missing"})
	require.True(t, res.IsError)

	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "stage "+schema.StageLanguageSize)
	assert.Contains(t, text, string(contract.TransportKind))
}

func TestMCPServerHandlers_DescribeSchema(t *testing.T) {
	res := callTool(t, &contract.Config{}, nil, "describe_schema", nil)
	require.False(t, res.IsError)

	var decoded struct {
		Columns []string `json:"columns"`
		Stages  []string `json:"stages"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &decoded))
	assert.Equal(t, schema.Header, decoded.Columns)
	assert.Equal(t, []string{
		schema.StageLanguageSize,
		schema.StageCodeMetrics,
		schema.StageCommitCount,
		schema.StageCommitHistory,
		schema.StageContributors,
	}, decoded.Stages)
}

func TestMCPServerHandlers_GetRunStatus(t *testing.T) {
	t.Run("ledger disabled", func(t *testing.T) {
		mgr := &iocache.MockLedgerManager{}
		mgr.On("GetRunStore").Return(nil)

		res := callTool(t, &contract.Config{}, mgr, "get_run_status", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "run ledger is disabled")
	})

	t.Run("nil manager", func(t *testing.T) {
		res := callTool(t, &contract.Config{}, nil, "get_run_status", nil)
		assert.True(t, res.IsError)
	})

	t.Run("status from ledger", func(t *testing.T) {
		store := &contract.MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true, TotalRuns: 3, TotalFailed: 2}, nil)
		mgr := &iocache.MockLedgerManager{}
		mgr.On("GetRunStore").Return(store)

		res := callTool(t, &contract.Config{}, mgr, "get_run_status", nil)
		require.False(t, res.IsError)

		var status schema.RunStatus
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &status))
		assert.Equal(t, "sqlite", status.Backend)
		assert.Equal(t, 3, status.TotalRuns)
		assert.Equal(t, 2, status.TotalFailed)
		store.AssertExpectations(t)
	})

	t.Run("ledger read error", func(t *testing.T) {
		store := &contract.MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{}, assert.AnError)
		mgr := &iocache.MockLedgerManager{}
		mgr.On("GetRunStore").Return(store)

		res := callTool(t, &contract.Config{}, mgr, "get_run_status", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "failed to read run ledger")
	})
}
