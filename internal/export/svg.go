package export

import (
	"fmt"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

// svg renders a minimal layered box listing with no layout engine
// (spec.md §4.6).
func svg(g *types.CapsuleGraph) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 800 600\" width=\"800\" height=\"600\">\n")
	b.WriteString("  <text x=\"400\" y=\"50\" text-anchor=\"middle\" font-family=\"Arial\" font-size=\"16\">Architecture diagram</text>\n")
	fmt.Fprintf(&b, "  <text x=\"400\" y=\"80\" text-anchor=\"middle\" font-family=\"Arial\" font-size=\"12\">Components: %d, Relations: %d</text>\n",
		len(g.Capsules), len(g.Relations))

	y := 120
	for _, cap := range sortedCapsules(g) {
		fmt.Fprintf(&b, "  <rect x=\"100\" y=\"%d\" width=\"600\" height=\"30\" fill=\"lightblue\" stroke=\"black\"/>\n", y)
		fmt.Fprintf(&b, "  <text x=\"110\" y=\"%d\" font-family=\"Arial\" font-size=\"12\">%s</text>\n", y+20, escapeXML(cap.Name))
		y += 40
	}

	b.WriteString("</svg>\n")
	return b.String()
}
