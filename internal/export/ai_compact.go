package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

// aiCompact renders the four-section Markdown digest sized for machine
// consumption (spec.md §4.6, §8 invariant 4): Summary, Problems
// (Heuristic), Top Complexity Components, and an optional Layers section.
func aiCompact(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("# AI Compact Analysis\n\n")
	fmt.Fprintf(&b, "## Summary\n- Components: %d\n- Relations: %d\n- Complexity(avg): %.2f\n\n",
		g.Metrics.TotalCapsules, g.Metrics.TotalRelations, g.Metrics.ComplexityAverage)

	b.WriteString("## Problems (Heuristic)\n")
	var problems []string
	if g.Metrics.CouplingIndex > 0.7 {
		problems = append(problems, "High coupling")
	}
	if g.Metrics.CohesionIndex < 0.3 {
		problems = append(problems, "Low cohesion")
	}
	if g.Metrics.CyclomaticComplexity > uint32(g.Metrics.TotalRelations)+10 {
		problems = append(problems, "High graph cyclomatic complexity")
	}
	totalWarnings := 0
	for _, cap := range g.Capsules {
		totalWarnings += len(cap.Warnings)
	}
	if totalWarnings > 0 {
		problems = append(problems, fmt.Sprintf("Warnings: %d", totalWarnings))
	}
	if len(problems) == 0 {
		b.WriteString("- None\n")
	} else {
		for _, p := range problems {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	b.WriteString("\n")

	top := sortedCapsules(g)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Complexity > top[j].Complexity })
	if len(top) > 10 {
		top = top[:10]
	}
	b.WriteString("## Top Complexity Components\n")
	for _, cap := range top {
		fmt.Fprintf(&b, "- %s (%s) : %d\n", cap.Name, cap.CapsuleType, cap.Complexity)
	}

	if len(g.Layers) > 0 {
		type layerCount struct {
			name  types.Layer
			count int
		}
		counts := make([]layerCount, 0, len(g.Layers))
		for layer, ids := range g.Layers {
			counts = append(counts, layerCount{layer, len(ids)})
		}
		sort.SliceStable(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].name < counts[j].name
		})
		if len(counts) > 8 {
			counts = counts[:8]
		}
		b.WriteString("\n## Layers\n")
		for _, lc := range counts {
			fmt.Fprintf(&b, "- %s: %d\n", lc.name, lc.count)
		}
	}

	return b.String()
}
