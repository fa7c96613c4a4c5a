package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// collectFunc builds the record for one repository.
type collectFunc func(ctx context.Context, cfg *contract.Config, ref schema.RepositoryRef) (schema.Record, error)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.LedgerManager
	collect collectFunc
}

type collectResponse struct {
	Repository string            `json:"repository"`
	Record     map[string]string `json:"record"`
}

type schemaResponse struct {
	Columns []string `json:"columns"`
	Stages  []string `json:"stages"`
}

func (h *toolHandler) handleCollectRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := schema.ParseRepositoryRef(request.GetString("repository", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}

	rec, err := h.collect(ctx, h.baseCfg.Clone(), ref)
	if err != nil {
		msg := fmt.Sprintf("collection failed (%s): %v", contract.KindOf(err), err)
		var repoErr *contract.RepoError
		if errors.As(err, &repoErr) {
			msg = fmt.Sprintf("collection failed at stage %s (%s): %v", repoErr.Stage, contract.KindOf(err), repoErr.Err)
		}
		return mcp.NewToolResultError(msg), nil
	}

	jsonData, _ := json.MarshalIndent(collectResponse{Repository: ref.String(), Record: rec.AsMap()}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDescribeSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(schemaResponse{Columns: schema.Header, Stages: stageNames()}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRunStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetRunStore() == nil {
		return mcp.NewToolResultError("run ledger is disabled (set --runs-backend)"), nil
	}
	status, err := h.mgr.GetRunStore().GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read run ledger: %v", err)), nil
	}
	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// stageNames reports the stages a collection runs, in execution order.
func stageNames() []string {
	return core.NewAggregator((&core.Adapters{}).Stages()...).StageNames()
}
