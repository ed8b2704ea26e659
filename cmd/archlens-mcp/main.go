// Command archlens-mcp exposes the analyzer as an MCP server over stdio:
// analyze_project, export_graph, and diff_graphs tools.
package main

import (
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	archmcp "github.com/archlens-go/archlens/internal/mcp"
)

const (
	serverName    = "archlens"
	serverVersion = "0.1.0"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	server := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	archmcp.RegisterTools(server)

	log.Printf("Starting %s MCP server v%s", serverName, serverVersion)
	log.Println("Registered tools:")
	log.Println("  - analyze_project: scan a project and build its capsule graph")
	log.Println("  - export_graph: analyze a project and export it in a given format")
	log.Println("  - diff_graphs: compare two project snapshots")
	log.Println("Server ready - waiting for MCP client connection...")

	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
