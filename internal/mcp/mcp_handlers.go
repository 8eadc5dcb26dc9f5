package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/parityci/dpc/core"
	"github.com/parityci/dpc/internal/capture"
	"github.com/parityci/dpc/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleCompareDesigns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	refStr := request.GetString("ref", "")
	implStr := request.GetString("impl", "")
	viewportStr := request.GetString("viewport", "")
	metricsStr := request.GetString("metrics", "")
	threshold := request.GetFloat("threshold", -1)

	if err := contract.RevalidateCompare(cfg, refStr, implStr, viewportStr, metricsStr, threshold); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid comparison parameters: %v", err)), nil
	}

	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	out, err := core.RunCompare(core.WithQuiet(ctx), cfg, svc, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAssessQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	inputStr := request.GetString("input", "")
	viewportStr := request.GetString("viewport", "")

	if err := contract.RevalidateQuality(cfg, inputStr, viewportStr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid quality parameters: %v", err)), nil
	}

	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	out, err := core.RunQuality(core.WithQuiet(ctx), cfg, svc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("quality assessment failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGenerateCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	inputStr := request.GetString("input", "")
	if s := request.GetString("stack", ""); s != "" {
		cfg.Stack = s
	}

	if err := contract.RevalidateQuality(cfg, inputStr, ""); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid generate parameters: %v", err)), nil
	}

	svc := capture.NewService(cfg)
	defer func() { _ = svc.Close() }()

	out, err := core.RunGenerate(core.WithQuiet(ctx), cfg, svc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("code generation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListRuns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var store contract.RunStore
	if h.mgr != nil {
		store = h.mgr.GetRunStore()
	}
	if store == nil {
		return mcp.NewToolResultError("run history is disabled: no store backend configured"), nil
	}

	limit := request.GetInt("limit", contract.DefaultRunsLimit)
	runs, err := store.ListRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
