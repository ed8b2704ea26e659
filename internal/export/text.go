package export

import (
	"fmt"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

// chainOfThought renders the narrative digest from the original
// implementation's export_to_chain_of_thought (SPEC_FULL.md §D):
// simpler than AI Compact, a plain component-by-component listing.
func chainOfThought(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("# Chain of Thought - Architecture Analysis\n\n")
	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "- Components: %d\n", len(g.Capsules))
	fmt.Fprintf(&b, "- Relations: %d\n", len(g.Relations))
	fmt.Fprintf(&b, "- Average complexity: %.2f\n\n", g.Metrics.ComplexityAverage)

	b.WriteString("## Components\n")
	for _, cap := range sortedCapsules(g) {
		fmt.Fprintf(&b, "- %s (%s): complexity %d\n", cap.Name, cap.CapsuleType, cap.Complexity)
	}

	return b.String()
}

// llmPrompt renders a ready-to-paste prompt summarizing the graph
// (SPEC_FULL.md §D, original's export_to_llm_prompt).
func llmPrompt(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("Analyze the following software architecture:\n\n")
	fmt.Fprintf(&b, "Components: %d\n", len(g.Capsules))
	fmt.Fprintf(&b, "Relations: %d\n", len(g.Relations))
	fmt.Fprintf(&b, "Average complexity: %.2f\n\n", g.Metrics.ComplexityAverage)

	b.WriteString("Component details:\n")
	for _, cap := range sortedCapsules(g) {
		fmt.Fprintf(&b, "- %s: type=%s, complexity=%d\n", cap.Name, cap.CapsuleType, cap.Complexity)
	}

	return b.String()
}
