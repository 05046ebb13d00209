package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TordWessman/gitstat/core"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) store() (contract.CommitStore, error) {
	if h.mgr == nil {
		return nil, fmt.Errorf("commit cache is not initialized")
	}
	store := h.mgr.GetCommitStore()
	if store == nil {
		return nil, fmt.Errorf("commit cache is not initialized")
	}
	return store, nil
}

func (h *toolHandler) handleGetSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := request.GetString("tag", h.baseCfg.Tag)
	repo := request.GetString("repo", "")

	period := h.baseCfg.Period
	if p := request.GetString("period", ""); p != "" {
		parsed, err := contract.ParsePeriod(p)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid period: %v", err)), nil
		}
		period = parsed
	}

	cutoff := h.baseCfg.Cutoff
	if c := request.GetString("cutoff", ""); c != "" {
		parsed, err := contract.ParseCutoff(c, time.Now())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid cutoff: %v", err)), nil
		}
		cutoff = parsed
	}

	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := core.BuildSeries(ctx, store, tag, repo, period, cutoff)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repos, err := store.LoadRepos(ctx, request.GetString("tag", h.baseCfg.Tag))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(repos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCacheStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
