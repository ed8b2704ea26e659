package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archmcp "github.com/archlens-go/archlens/internal/mcp"
)

const fixtureGo = `package sample

func Add(a, b int) int {
	return a + b
}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.go"), []byte(fixtureGo), 0o644))
	return dir
}

func callTool(t *testing.T, handler func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), arguments interface{}) *mcplib.CallToolResult {
	t.Helper()
	req := mcplib.CallToolRequest{Params: mcplib.CallToolParams{Arguments: arguments}}
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestHandleAnalyzeProject_InvalidArgumentsFormat(t *testing.T) {
	res := callTool(t, archmcp.HandleAnalyzeProject, "not-a-map")
	assert.True(t, res.IsError)
}

func TestHandleAnalyzeProject_PathMissing(t *testing.T) {
	res := callTool(t, archmcp.HandleAnalyzeProject, map[string]interface{}{})
	assert.True(t, res.IsError)
}

func TestHandleAnalyzeProject_PathNotExist(t *testing.T) {
	res := callTool(t, archmcp.HandleAnalyzeProject, map[string]interface{}{"path": "/does/not/exist"})
	assert.True(t, res.IsError)
}

func TestHandleAnalyzeProject_Success(t *testing.T) {
	dir := writeFixture(t)
	res := callTool(t, archmcp.HandleAnalyzeProject, map[string]interface{}{"path": dir})

	require.False(t, res.IsError)
	require.Greater(t, len(res.Content), 0)
	text := mcplib.GetTextFromContent(res.Content[0])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Contains(t, decoded, "Capsules")
}

func TestHandleExportGraph_UnsupportedFormat(t *testing.T) {
	dir := writeFixture(t)
	res := callTool(t, archmcp.HandleExportGraph, map[string]interface{}{"path": dir, "format": "bogus"})
	assert.True(t, res.IsError)
}

func TestHandleExportGraph_MermaidSuccess(t *testing.T) {
	dir := writeFixture(t)
	res := callTool(t, archmcp.HandleExportGraph, map[string]interface{}{"path": dir, "format": "mermaid"})

	require.False(t, res.IsError)
	text := mcplib.GetTextFromContent(res.Content[0])
	assert.Contains(t, text, "graph")
}

func TestHandleDiffGraphs_Success(t *testing.T) {
	current := writeFixture(t)
	previous := writeFixture(t)

	res := callTool(t, archmcp.HandleDiffGraphs, map[string]interface{}{
		"current_path": current, "previous_path": previous,
	})

	require.False(t, res.IsError)
	text := mcplib.GetTextFromContent(res.Content[0])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Contains(t, decoded, "Trend")
}
