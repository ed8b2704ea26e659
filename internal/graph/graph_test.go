package graph

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens-go/archlens/pkg/types"
)

func newCapsule(name, path string, layer types.Layer) *types.Capsule {
	return &types.Capsule{
		ID: uuid.New(), Name: name, FilePath: path, LineStart: 1, LineEnd: 10,
		Size: 10, Complexity: 2, CapsuleType: types.CapsuleFunction, Layer: &layer,
		Metadata: map[string]string{},
	}
}

func TestBuild_PopulatesLayersAndCapsules(t *testing.T) {
	a := newCapsule("A", "src/a.go", types.LayerCore)
	b := newCapsule("B", "src/b.go", types.LayerCore)

	g := Build([]*types.Capsule{a, b}, nil, time.Now())

	assert.Len(t, g.Capsules, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, g.Layers[types.LayerCore])
	assert.Equal(t, 2, g.Metrics.TotalCapsules)
}

func TestBuild_StructuralProximity_SameDirectory(t *testing.T) {
	a := newCapsule("A", "src/a.go", types.LayerCore)
	b := newCapsule("B", "src/b.go", types.LayerCore)
	// With no layer on b, the layer-adjacency pass adds no competing edge
	// for this pair, so the proximity relation survives dedupe.
	b.Layer = nil

	g := Build([]*types.Capsule{a, b}, nil, time.Now())

	var found bool
	for _, r := range g.Relations {
		if r.RelationType == types.RelationReferences {
			found = true
			assert.Equal(t, float32(0.3), r.Strength)
		}
	}
	assert.True(t, found)
}

func TestBuild_DeclaredDependency_ClosesDependents(t *testing.T) {
	a := newCapsule("A", "src/a.go", types.LayerCore)
	b := newCapsule("B", "src/b.go", types.LayerCore)
	a.Metadata["signature_refs"] = "B"

	g := Build([]*types.Capsule{a, b}, nil, time.Now())

	require.Contains(t, g.Capsules[a.ID].Dependencies, b.ID)
	require.Contains(t, g.Capsules[b.ID].Dependents, a.ID)
}

func TestBuild_DetectsCycleAndWarns(t *testing.T) {
	a := newCapsule("A", "src/a.go", types.LayerCore)
	b := newCapsule("B", "src/b.go", types.LayerCore)
	a.Metadata["signature_refs"] = "B"
	b.Metadata["signature_refs"] = "A"

	g := Build([]*types.Capsule{a, b}, nil, time.Now())

	var warned bool
	for _, w := range g.Capsules[a.ID].Warnings {
		if w.Category == "architecture" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestBuild_EmptyCapsules_ZeroMetrics(t *testing.T) {
	g := Build(nil, nil, time.Now())
	assert.Equal(t, float32(0), g.Metrics.ComplexityAverage)
	assert.Equal(t, float32(0), g.Metrics.CouplingIndex)
	assert.Equal(t, 0, g.Metrics.TotalCapsules)
}
