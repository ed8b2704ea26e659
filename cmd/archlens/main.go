// Command archlens analyzes a project directory into a capsule graph and
// exports it in any of the supported report formats.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/archlens-go/archlens/internal/export"
	"github.com/archlens-go/archlens/internal/pipeline"
	"github.com/archlens-go/archlens/pkg/config"
	"github.com/archlens-go/archlens/pkg/logger"
	"github.com/archlens-go/archlens/pkg/types"
	"github.com/archlens-go/archlens/pkg/utils"
)

// Version and BuildDate are set at build time via -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	configFile string
	outputFile string
	maxDepth   int
	verbose    bool
)

var log = logger.New()

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "archlens [command] [project-path]",
		Short: "Architectural graph analysis for multi-language codebases",
		Long: `archlens scans a project directory, builds a capsule graph of its
components and relations, computes quality metrics, and exports the result
in AI-, diagram-, or human-readable formats.

Examples:
  archlens analyze .
  archlens export . --format mermaid --output graph.mmd
  archlens structure . --show-metrics
  archlens diagram . dot --output graph.dot`,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "override the configured max scan depth (0 = use config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(analyzeCmd(), exportCmd(), structureCmd(), diagramCmd(), versionCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if maxDepth > 0 {
		cfg.Analysis.MaxDepth = maxDepth
	}
	if verbose {
		log.SetLogLevel(logger.DebugLevel)
	}
	return cfg, nil
}

func runAnalysis(projectPath string, configure ...func(*config.Config)) (*types.AnalysisResult, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	for _, fn := range configure {
		fn(cfg)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning "+projectPath),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetRenderBlankState(true),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(80 * time.Millisecond):
				bar.Add(1)
			}
		}
	}()

	p := pipeline.New(cfg, log)
	result, err := pipeline.Analyze(context.Background(), p, projectPath, cfg)
	close(done)
	bar.Finish()
	fmt.Println()

	if err != nil {
		return nil, err
	}
	return result, nil
}

func analyzeCmd() *cobra.Command {
	var includeTests, deep bool

	cmd := &cobra.Command{
		Use:   "analyze [project-path]",
		Short: "Analyze a project and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := projectPathArg(args)

			result, err := runAnalysis(path, func(cfg *config.Config) {
				if cmd.Flags().Changed("include-tests") {
					cfg.Analysis.ParseTests = includeTests
				}
				if cmd.Flags().Changed("deep") {
					cfg.Analysis.AnalyzeDependencies = deep
				}
			})
			if err != nil {
				log.ErrorfWithExit("analysis failed: %v", err)
			}

			out, err := export.Export(result.Graph, types.FormatAICompact)
			if err != nil {
				log.ErrorfWithExit("export failed: %v", err)
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeTests, "include-tests", false, "include test files in the scan (analysis.parse_tests)")
	cmd.Flags().BoolVar(&deep, "deep", true, "resolve declared dependencies from signatures (analysis.analyze_dependencies)")
	return cmd
}

var formatAliases = map[string]types.ExportFormat{
	"ai_compact":       types.FormatAICompact,
	"ai-compact":       types.FormatAICompact,
	"json":             types.FormatJSON,
	"yaml":             types.FormatYAML,
	"mermaid":          types.FormatMermaid,
	"dot":              types.FormatDOT,
	"graphml":          types.FormatGraphML,
	"svg":              types.FormatSVG,
	"html":             types.FormatHTML,
	"chain-of-thought": types.FormatChainOfThought,
	"llm-prompt":       types.FormatLLMPrompt,
}

func exportCmd() *cobra.Command {
	var format string
	var criticalOnly bool

	cmd := &cobra.Command{
		Use:   "export [project-path] --format FORMAT",
		Short: "Analyze a project and export the graph in the given format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := projectPathArg(args)
			if !utils.StringInSlice(format, knownFormats) {
				return fmt.Errorf("unsupported format: %s", format)
			}
			f := formatAliases[format]

			result, err := runAnalysis(path)
			if err != nil {
				return utils.FormatError("analysis", err)
			}

			graph := result.Graph
			if criticalOnly {
				graph = criticalOnlyGraph(graph)
			}

			out, err := export.Export(graph, f)
			if err != nil {
				return utils.FormatError("export", err)
			}
			return writeOutput(out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "ai_compact", "export format: ai_compact, json, yaml, mermaid, dot, graphml, svg, html, chain-of-thought, llm-prompt")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&criticalOnly, "critical-only", false, "keep only capsules with open warnings")
	return cmd
}

func structureCmd() *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "structure [project-path]",
		Short: "Print the layer structure of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := projectPathArg(args)
			result, err := runAnalysis(path)
			if err != nil {
				log.ErrorfWithExit("analysis failed: %v", err)
			}

			printStructure(result.Graph, showMetrics)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMetrics, "show-metrics", false, "include per-component complexity and quality score")
	return cmd
}

func diagramCmd() *cobra.Command {
	var includeMetrics bool

	cmd := &cobra.Command{
		Use:   "diagram [project-path] [mermaid|dot|svg]",
		Short: "Export a visual diagram of the project's capsule graph",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			diagramType := "mermaid"
			if len(args) == 2 {
				diagramType = args[1]
			}

			var f types.ExportFormat
			switch diagramType {
			case "mermaid":
				f = types.FormatMermaid
			case "dot":
				f = types.FormatDOT
			case "svg":
				f = types.FormatSVG
			default:
				return fmt.Errorf("unsupported diagram type: %s", diagramType)
			}

			result, err := runAnalysis(path)
			if err != nil {
				log.ErrorfWithExit("analysis failed: %v", err)
			}

			_ = includeMetrics // has no effect: node labels in these formats carry component names only

			out, err := export.Export(result.Graph, f)
			if err != nil {
				log.ErrorfWithExit("export failed: %v", err)
			}
			return writeOutput(out)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&includeMetrics, "include-metrics", false, "accepted but has no effect; node labels show component names only")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("archlens %s (built %s)\n", Version, BuildDate)
		},
	}
}

func projectPathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return utils.TrimWhitespace(args[0])
}

var knownFormats = []string{
	"ai_compact", "ai-compact", "json", "yaml", "mermaid", "dot", "graphml", "svg", "html", "chain-of-thought", "llm-prompt",
}

func writeOutput(content string) error {
	if outputFile == "" {
		fmt.Println(content)
		return nil
	}
	return os.WriteFile(outputFile, []byte(content), 0o644)
}

func criticalOnlyGraph(g *types.CapsuleGraph) *types.CapsuleGraph {
	filtered := types.NewCapsuleGraph(g.CreatedAt)
	for id, cap := range g.Capsules {
		if len(cap.Warnings) > 0 {
			filtered.Capsules[id] = cap
		}
	}
	for _, rel := range g.Relations {
		if _, ok := filtered.Capsules[rel.FromID]; !ok {
			continue
		}
		if _, ok := filtered.Capsules[rel.ToID]; !ok {
			continue
		}
		filtered.Relations = append(filtered.Relations, rel)
	}
	for layer, ids := range g.Layers {
		for _, id := range ids {
			if _, ok := filtered.Capsules[id]; ok {
				filtered.Layers[layer] = append(filtered.Layers[layer], id)
			}
		}
	}
	filtered.Metrics = g.Metrics
	return filtered
}

func printStructure(g *types.CapsuleGraph, showMetrics bool) {
	for _, layer := range orderedLayers(g) {
		ids := g.Layers[layer]
		fmt.Printf("%s (%d components)\n", layer, len(ids))
		for _, id := range ids {
			cap, ok := g.Capsules[id]
			if !ok {
				continue
			}
			if showMetrics {
				fmt.Printf("  - %s [complexity=%d, quality=%.2f]\n", cap.Name, cap.Complexity, cap.QualityScore)
			} else {
				fmt.Printf("  - %s\n", cap.Name)
			}
		}
	}
}

func orderedLayers(g *types.CapsuleGraph) []types.Layer {
	order := []types.Layer{
		types.LayerUI, types.LayerAPI, types.LayerBusiness, types.LayerData,
		types.LayerCore, types.LayerInfrastructure, types.LayerUtils, types.LayerTests, types.LayerOther,
	}
	var present []types.Layer
	for _, l := range order {
		if _, ok := g.Layers[l]; ok {
			present = append(present, l)
		}
	}
	return present
}
