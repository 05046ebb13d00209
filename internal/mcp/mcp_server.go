// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gitstat MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"gitstat Commit Statistics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_series ---
	s.AddTool(mcp.NewTool("get_series",
		mcp.WithDescription("Bucket the cached commits of a tag into fixed-width time windows with commit, insertion and deletion counts."),
		mcp.WithString("tag", mcp.Description("Tag of the repositories to include (defaults to the configured tag, empty means all).")),
		mcp.WithString("repo", mcp.Description("Restrict the series to one repository name.")),
		mcp.WithString("period", mcp.Description("Bucket width (e.g., '1 day', '2 weeks', '12h'). Defaults to the configured period.")),
		mcp.WithString("cutoff", mcp.Description("Ignore commits before this time (RFC 3339, epoch seconds or '6 months ago').")),
	), h.handleGetSeries)

	// --- 2. Tool: list_repositories ---
	s.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List the repositories known to the commit cache with their clone state and sync cursor."),
		mcp.WithString("tag", mcp.Description("Only list repositories of this tag.")),
	), h.handleListRepositories)

	// --- 3. Tool: get_cache_status ---
	s.AddTool(mcp.NewTool("get_cache_status",
		mcp.WithDescription("Report backend, schema version, commit counts and time range of the commit cache."),
	), h.handleGetCacheStatus)

	return s
}

// StartMCPServer starts the gitstat MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
