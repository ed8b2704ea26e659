package export

import (
	"fmt"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

var mermaidClassByType = map[types.CapsuleType]string{
	types.CapsuleModule:    "moduleClass",
	types.CapsuleFunction:  "functionClass",
	types.CapsuleMethod:    "functionClass",
	types.CapsuleStruct:    "structClass",
	types.CapsuleEnum:      "structClass",
	types.CapsuleClass:     "classClass",
	types.CapsuleInterface: "classClass",
}

var mermaidArrowByRelation = map[types.RelationType]string{
	types.RelationDepends:    "-->",
	types.RelationUses:       "-.->",
	types.RelationImplements: "==>",
	types.RelationExtends:    "===>",
	types.RelationAggregates: "--o",
}

// mermaid renders a graph TD diagram: one subgraph per layer, nodes
// classed by capsule type, edges styled by relation type (spec.md §4.6,
// §8 invariant 5 for node-id sanitization).
func mermaid(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "    %%%% %d components\n\n", len(g.Capsules))

	b.WriteString("    classDef moduleClass fill:#e1f5fe,stroke:#01579b,stroke-width:2px\n")
	b.WriteString("    classDef functionClass fill:#f3e5f5,stroke:#4a148c,stroke-width:2px\n")
	b.WriteString("    classDef structClass fill:#e8f5e8,stroke:#1b5e20,stroke-width:2px\n")
	b.WriteString("    classDef classClass fill:#fff3e0,stroke:#e65100,stroke-width:2px\n\n")

	for _, layer := range sortedLayers(g) {
		fmt.Fprintf(&b, "    subgraph \"Layer: %s\"\n", layer)
		for _, id := range sortedLayerIDs(g, layer) {
			cap, ok := g.Capsules[id]
			if !ok {
				continue
			}
			nodeID := sanitizeNodeID(cap.Name)
			display := truncateName(cap.Name, 20)
			fmt.Fprintf(&b, "        %s[\"%s\"]\n", nodeID, display)
			if class, ok := mermaidClassByType[cap.CapsuleType]; ok {
				fmt.Fprintf(&b, "        %s:::%s\n", nodeID, class)
			}
		}
		b.WriteString("    end\n\n")
	}

	b.WriteString("    %% relations\n")
	for _, r := range g.Relations {
		from, to, ok := relationEndpoints(g, r)
		if !ok {
			continue
		}
		arrow, ok := mermaidArrowByRelation[r.RelationType]
		if !ok {
			arrow = "-.->"
		}
		label := strengthBucket(r.Strength)
		fmt.Fprintf(&b, "    %s %s|%s| %s\n", sanitizeNodeID(from.Name), arrow, label, sanitizeNodeID(to.Name))
	}

	return b.String()
}

func strengthBucket(strength float32) string {
	switch {
	case strength > 0.7:
		return "strong"
	case strength > 0.4:
		return "medium"
	default:
		return "weak"
	}
}

// sanitizeNodeID reduces a capsule name to a Mermaid/DOT-safe identifier:
// every non-alphanumeric, non-underscore rune becomes '_'.
func sanitizeNodeID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func truncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen-3] + "..."
}
