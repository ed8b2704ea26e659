package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"

	"github.com/archlens-go/archlens/internal/diff"
	"github.com/archlens-go/archlens/internal/export"
	"github.com/archlens-go/archlens/internal/pipeline"
	"github.com/archlens-go/archlens/pkg/config"
	"github.com/archlens-go/archlens/pkg/logger"
	"github.com/archlens-go/archlens/pkg/types"
)

var log = logger.New()

func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func loadConfigArg(args map[string]interface{}) (*config.Config, error) {
	configPath, _ := stringArg(args, "config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if md, ok := args["max_depth"].(float64); ok && md > 0 {
		cfg.Analysis.MaxDepth = int(md)
	}
	return cfg, nil
}

func analyzeProject(ctx context.Context, path string, cfg *config.Config) (*types.AnalysisResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("path does not exist: %s", path)
	}
	p := pipeline.New(cfg, log)
	return pipeline.Analyze(ctx, p, path, cfg)
}

// HandleAnalyzeProject handles the analyze_project tool.
func HandleAnalyzeProject(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcpsdk.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := stringArg(args, "path")
	if !ok {
		return mcpsdk.NewToolResultError("path parameter is required and must be a string"), nil
	}

	cfg, err := loadConfigArg(args)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to load config: %v", err)), nil
	}

	result, err := analyzeProject(ctx, path, cfg)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(result.Graph)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpsdk.NewToolResultText(string(jsonData)), nil
}

// HandleExportGraph handles the export_graph tool.
func HandleExportGraph(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcpsdk.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := stringArg(args, "path")
	if !ok {
		return mcpsdk.NewToolResultError("path parameter is required and must be a string"), nil
	}
	formatStr, ok := stringArg(args, "format")
	if !ok {
		return mcpsdk.NewToolResultError("format parameter is required and must be a string"), nil
	}

	cfg, err := loadConfigArg(args)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to load config: %v", err)), nil
	}

	result, err := analyzeProject(ctx, path, cfg)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	format := types.ExportFormat(formatStr)
	if formatStr == "ai_compact" {
		format = types.FormatAICompact
	}
	out, err := export.Export(result.Graph, format)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcpsdk.NewToolResultText(out), nil
}

// HandleDiffGraphs handles the diff_graphs tool.
func HandleDiffGraphs(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcpsdk.NewToolResultError("invalid arguments format"), nil
	}

	currentPath, ok := stringArg(args, "current_path")
	if !ok {
		return mcpsdk.NewToolResultError("current_path parameter is required and must be a string"), nil
	}
	previousPath, ok := stringArg(args, "previous_path")
	if !ok {
		return mcpsdk.NewToolResultError("previous_path parameter is required and must be a string"), nil
	}

	cfg, err := loadConfigArg(args)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to load config: %v", err)), nil
	}

	currentResult, err := analyzeProject(ctx, currentPath, cfg)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to analyze current_path: %v", err)), nil
	}
	previousResult, err := analyzeProject(ctx, previousPath, cfg)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to analyze previous_path: %v", err)), nil
	}

	analysis := diff.Analyze(currentResult.Graph, previousResult.Graph)

	jsonData, err := json.Marshal(analysis)
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("failed to marshal diff: %v", err)), nil
	}
	return mcpsdk.NewToolResultText(string(jsonData)), nil
}
