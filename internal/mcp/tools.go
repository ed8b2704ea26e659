// Package mcp exposes archlens's pipeline, export, and diff stages as
// MCP tools for use by an LLM client.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all archlens MCP tools with the server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("analyze_project",
		mcp.WithDescription("Scan a project directory and build its capsule graph, returning components, relations, metrics, and warnings as JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the project directory to analyze")),
		mcp.WithString("config",
			mcp.Description("Optional path to a YAML config file overriding include/exclude patterns and scan depth")),
		mcp.WithNumber("max_depth",
			mcp.Description("Override the configured max scan depth (0 = use config default)")),
	), HandleAnalyzeProject)

	s.AddTool(mcp.NewTool("export_graph",
		mcp.WithDescription("Analyze a project and export its capsule graph in the requested format"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the project directory to analyze")),
		mcp.WithString("format",
			mcp.Required(),
			mcp.WithStringEnumItems([]string{
				"ai_compact", "json", "yaml", "mermaid", "dot", "graphml", "svg", "html", "chain-of-thought", "llm-prompt",
			}),
			mcp.Description("Export format")),
		mcp.WithString("config",
			mcp.Description("Optional path to a YAML config file")),
	), HandleExportGraph)

	s.AddTool(mcp.NewTool("diff_graphs",
		mcp.WithDescription("Analyze two project snapshots and report component/relation changes, a metrics delta, and a quality trend"),
		mcp.WithString("current_path",
			mcp.Required(),
			mcp.Description("Path to the current project snapshot")),
		mcp.WithString("previous_path",
			mcp.Required(),
			mcp.Description("Path to the previous project snapshot to compare against")),
		mcp.WithString("config",
			mcp.Description("Optional path to a YAML config file applied to both snapshots")),
	), HandleDiffGraphs)
}
