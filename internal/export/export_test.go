package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens-go/archlens/pkg/types"
)

func testGraph() *types.CapsuleGraph {
	layer := types.LayerCore
	a := &types.Capsule{
		ID: uuid.New(), Name: "foo::bar/baz.qux", FilePath: "a.go", LineStart: 1, LineEnd: 5,
		CapsuleType: types.CapsuleFunction, Complexity: 12, Layer: &layer,
	}
	b := &types.Capsule{
		ID: uuid.New(), Name: "Helper", FilePath: "b.go", LineStart: 1, LineEnd: 5,
		CapsuleType: types.CapsuleClass, Complexity: 3, Layer: &layer,
	}
	g := types.NewCapsuleGraph(time.Now())
	g.Capsules[a.ID] = a
	g.Capsules[b.ID] = b
	g.Layers[layer] = []uuid.UUID{a.ID, b.ID}
	g.Relations = []types.Relation{
		{FromID: a.ID, ToID: b.ID, RelationType: types.RelationDepends, Strength: 0.8},
	}
	g.Metrics = types.GraphMetrics{TotalCapsules: 2, TotalRelations: 1, ComplexityAverage: 7.5}
	return g
}

func TestExport_AICompact_HasFourHeadersInOrder(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatAICompact)
	require.NoError(t, err)

	headers := []string{"# AI Compact Analysis", "## Summary", "## Problems (Heuristic)", "## Top Complexity Components"}
	last := -1
	for _, h := range headers {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, h)
		require.Greater(t, idx, last)
		last = idx
	}
	assert.Contains(t, out, "Components: 2")
}

func TestExport_AICompact_NoProblemsPrintsNone(t *testing.T) {
	g := testGraph()
	// testGraph leaves CohesionIndex at 0, which reports "Low cohesion".
	g.Metrics.CohesionIndex = 0.5
	out, err := Export(g, types.FormatAICompact)
	require.NoError(t, err)
	assert.Contains(t, out, "- None\n")
}

func TestExport_Mermaid_SanitizesNodeID(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatMermaid)
	require.NoError(t, err)
	assert.Contains(t, out, "foo__bar_baz_qux")
	assert.Contains(t, out, "foo__bar_baz_qux[\"foo::bar/baz.qux\"]")
}

func TestExport_JSON_RoundTripsMetricsAndNamedRelations(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatJSON)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	metrics := decoded["metrics"].(map[string]interface{})
	assert.Equal(t, float64(2), metrics["total_capsules"])

	relations := decoded["relations"].([]interface{})
	require.Len(t, relations, 1)
	rel := relations[0].(map[string]interface{})
	assert.Equal(t, "foo::bar/baz.qux", rel["from"])
	assert.Equal(t, "Helper", rel["to"])
}

func TestExport_YAML_ContainsMetrics(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "total_capsules: 2")
}

func TestExport_UnsupportedFormat_ReturnsError(t *testing.T) {
	g := testGraph()
	_, err := Export(g, types.ExportFormat("bogus"))
	assert.Error(t, err)
}

func TestExport_DOT_ContainsDigraph(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatDOT)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph architecture {"))
}

func TestExport_GraphML_ContainsNamespace(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatGraphML)
	require.NoError(t, err)
	assert.Contains(t, out, "http://graphml.graphdrawing.org/xmlns")
}

func TestExport_HTML_ContainsComponentCount(t *testing.T) {
	g := testGraph()
	out, err := Export(g, types.FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, out, "Components: 2")
}

func TestExport_DanglingRelation_SilentlyDropped(t *testing.T) {
	g := testGraph()
	g.Relations = append(g.Relations, types.Relation{FromID: uuid.New(), ToID: uuid.New(), RelationType: types.RelationUses, Strength: 0.5})

	out, err := Export(g, types.FormatJSON)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	relations := decoded["relations"].([]interface{})
	assert.Len(t, relations, 1)
}
