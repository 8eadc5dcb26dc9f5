// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/parityci/dpc/internal/contract"
)

// NewMCPServer initializes and configures the dpc MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Design Parity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compare_designs ---
	s.AddTool(mcp.NewTool("compare_designs",
		mcp.WithDescription("Compare a reference design against an implementation and score their visual parity."),
		mcp.WithString("ref", mcp.Description("Reference resource: image path, page URL, or Figma URL."), mcp.Required()),
		mcp.WithString("impl", mcp.Description("Implementation resource: image path, page URL, or Figma URL."), mcp.Required()),
		mcp.WithString("viewport", mcp.Description("Comparison viewport as WIDTHxHEIGHT (e.g. '1280x800'). Defaults to the server configuration.")),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric subset (pixel, layout, typography, color, content). Defaults to all.")),
		mcp.WithNumber("threshold", mcp.Description("Pass/fail threshold between 0 and 1.")),
	), h.handleCompareDesigns)

	// --- 2. Tool: assess_quality ---
	s.AddTool(mcp.NewTool("assess_quality",
		mcp.WithDescription("Run single-snapshot design quality heuristics over one input."),
		mcp.WithString("input", mcp.Description("Input resource: image path, page URL, or Figma URL."), mcp.Required()),
		mcp.WithString("viewport", mcp.Description("Assessment viewport as WIDTHxHEIGHT.")),
	), h.handleAssessQuality)

	// --- 3. Tool: generate_code ---
	s.AddTool(mcp.NewTool("generate_code",
		mcp.WithDescription("Generate a static code skeleton for one input snapshot."),
		mcp.WithString("input", mcp.Description("Input resource: image path, page URL, or Figma URL."), mcp.Required()),
		mcp.WithString("stack", mcp.Description("Target stack. Defaults to 'html'."), mcp.Enum("html", "react", "vue")),
	), h.handleGenerateCode)

	// --- 4. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded comparison runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of runs returned.")),
	), h.handleListRuns)

	return s
}

// StartMCPServer starts the dpc MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
