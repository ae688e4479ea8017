// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolFunctionHotspots is the name of the only tool the server exposes.
const ToolFunctionHotspots = "get_function_hotspots"

// NewMCPServer initializes and configures the hotspots MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.StoreManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Git Hotspots Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool(ToolFunctionHotspots,
		mcp.WithDescription("Rank the functions of a Git repository by how many commits touched them."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the configured root).")),
		mcp.WithNumber("total", mcp.Description("Number of functions to return.")),
		mcp.WithNumber("skip", mcp.Description("Number of top functions to skip.")),
		mcp.WithArray("prefix", mcp.Description("Only inspect files under these directories."), mcp.WithStringItems()),
		mcp.WithArray("invert_match", mcp.Description("Skip files whose path contains any of these strings."), mcp.WithStringItems()),
		mcp.WithArray("exclude_func", mcp.Description("Skip functions whose name contains any of these strings."), mcp.WithStringItems()),
	), h.handleGetFunctionHotspots)

	return s
}

// StartMCPServer serves the tools on stdio until the client disconnects.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, mgr contract.StoreManager, version string) error {
	s := NewMCPServer(baseCfg, client, mgr, version)
	return server.ServeStdio(s)
}
