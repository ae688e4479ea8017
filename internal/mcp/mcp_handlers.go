package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arsham/git-hotspots/core"
	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/progress"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.StoreManager
}

func (h *toolHandler) handleGetFunctionHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if total := request.GetInt("total", -1); total >= 0 {
		cfg.Total = total
	}
	skip := request.GetInt("skip", 0)
	if skip < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("skip cannot be negative (received %d)", skip)), nil
	}
	cfg.Skip = skip

	if prefixes := request.GetStringSlice("prefix", nil); len(prefixes) > 0 {
		cfg.Prefixes = cfg.Prefixes[:0]
		for _, p := range prefixes {
			if p != "" {
				cfg.Prefixes = append(cfg.Prefixes, "./"+p)
			}
		}
	}
	if v := request.GetStringSlice("invert_match", nil); len(v) > 0 {
		cfg.NotContains = v
	}
	if v := request.GetStringSlice("exclude_func", nil); len(v) > 0 {
		cfg.ExcludeFuncs = v
	}

	ranked, err := core.GetHotspotResults(ctx, cfg, h.client, h.mgr, progress.Discard)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(ranked, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding rows: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
