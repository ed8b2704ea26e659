package export

import (
	"fmt"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

var dotColorByType = map[types.CapsuleType]string{
	types.CapsuleModule:    "lightblue",
	types.CapsuleFunction:  "lightgreen",
	types.CapsuleMethod:    "lightgreen",
	types.CapsuleStruct:    "lightyellow",
	types.CapsuleEnum:      "lightyellow",
	types.CapsuleClass:     "lightcoral",
	types.CapsuleInterface: "lightcoral",
}

var dotStyleByRelation = map[types.RelationType]string{
	types.RelationDepends:    "solid",
	types.RelationUses:       "dashed",
	types.RelationImplements: "bold",
}

// dot renders a Graphviz digraph: per-type fillcolor, per-relation edge
// style (spec.md §4.6).
func dot(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("digraph architecture {\n")
	b.WriteString("    rankdir=TB;\n")
	b.WriteString("    node [shape=box, style=filled];\n")
	b.WriteString("    edge [fontsize=10];\n\n")

	for _, cap := range sortedCapsules(g) {
		color := dotColorByType[cap.CapsuleType]
		if color == "" {
			color = "lightgray"
		}
		fmt.Fprintf(&b, "    \"%s\" [fillcolor=%s, label=\"%s\"];\n",
			sanitizeNodeID(cap.Name), color, escapeDOTLabel(cap.Name))
	}

	b.WriteString("\n")
	for _, r := range g.Relations {
		from, to, ok := relationEndpoints(g, r)
		if !ok {
			continue
		}
		style, ok := dotStyleByRelation[r.RelationType]
		if !ok {
			style = "dotted"
		}
		fmt.Fprintf(&b, "    \"%s\" -> \"%s\" [style=%s, label=\"%.1f\"];\n",
			sanitizeNodeID(from.Name), sanitizeNodeID(to.Name), style, r.Strength)
	}

	b.WriteString("}\n")
	return b.String()
}

func escapeDOTLabel(text string) string {
	text = strings.ReplaceAll(text, "\"", "\\\"")
	return strings.ReplaceAll(text, "\n", "\\n")
}
