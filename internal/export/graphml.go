package export

import (
	"fmt"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

// graphML renders the standard GraphML namespace with node keys
// name/type/complexity and edge keys relation_type/strength (spec.md §4.6).
func graphML(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<graphml xmlns=\"http://graphml.graphdrawing.org/xmlns\">\n")
	b.WriteString("  <key id=\"name\" for=\"node\" attr.name=\"name\" attr.type=\"string\"/>\n")
	b.WriteString("  <key id=\"type\" for=\"node\" attr.name=\"type\" attr.type=\"string\"/>\n")
	b.WriteString("  <key id=\"complexity\" for=\"node\" attr.name=\"complexity\" attr.type=\"int\"/>\n")
	b.WriteString("  <key id=\"relation_type\" for=\"edge\" attr.name=\"relation_type\" attr.type=\"string\"/>\n")
	b.WriteString("  <key id=\"strength\" for=\"edge\" attr.name=\"strength\" attr.type=\"double\"/>\n")
	b.WriteString("  <graph id=\"architecture\" edgedefault=\"directed\">\n")

	for _, cap := range sortedCapsules(g) {
		fmt.Fprintf(&b, "    <node id=\"%s\">\n", cap.ID)
		fmt.Fprintf(&b, "      <data key=\"name\">%s</data>\n", escapeXML(cap.Name))
		fmt.Fprintf(&b, "      <data key=\"type\">%s</data>\n", cap.CapsuleType)
		fmt.Fprintf(&b, "      <data key=\"complexity\">%d</data>\n", cap.Complexity)
		b.WriteString("    </node>\n")
	}

	for _, r := range g.Relations {
		if _, _, ok := relationEndpoints(g, r); !ok {
			continue
		}
		fmt.Fprintf(&b, "    <edge source=\"%s\" target=\"%s\">\n", r.FromID, r.ToID)
		fmt.Fprintf(&b, "      <data key=\"relation_type\">%s</data>\n", r.RelationType)
		fmt.Fprintf(&b, "      <data key=\"strength\">%v</data>\n", r.Strength)
		b.WriteString("    </edge>\n")
	}

	b.WriteString("  </graph>\n")
	b.WriteString("</graphml>\n")
	return b.String()
}

func escapeXML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, "\"", "&quot;")
	return strings.ReplaceAll(text, "'", "&apos;")
}
