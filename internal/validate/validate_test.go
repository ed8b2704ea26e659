package validate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens-go/archlens/internal/graph"
	"github.com/archlens-go/archlens/pkg/types"
)

func newCapsule(name string, capsuleType types.CapsuleType, layer types.Layer) *types.Capsule {
	return &types.Capsule{
		ID: uuid.New(), Name: name, FilePath: "a.go", LineStart: 1, LineEnd: 10,
		Size: 10, Complexity: 2, CapsuleType: capsuleType, Layer: &layer,
		Metadata: map[string]string{},
	}
}

func TestValidate_FlagsHighComplexity(t *testing.T) {
	cap := newCapsule("run", types.CapsuleFunction, types.LayerCore)
	cap.Complexity = 20
	g := graph.Build([]*types.Capsule{cap}, nil, time.Now())

	Validate(g, nil)

	var found bool
	for _, w := range g.Capsules[cap.ID].Warnings {
		if w.Category == "complexity" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_FlagsLayerHierarchyViolation(t *testing.T) {
	ui := newCapsule("Widget", types.CapsuleClass, types.LayerUI)
	core := newCapsule("Engine", types.CapsuleClass, types.LayerCore)
	desc := "calls up the stack"
	g := graph.Build([]*types.Capsule{core, ui}, nil, time.Now())
	g.Relations = append(g.Relations, types.Relation{
		FromID: core.ID, ToID: ui.ID, RelationType: types.RelationUses, Strength: 0.5, Description: &desc,
	})

	Validate(g, nil)

	var found bool
	for _, w := range g.Capsules[core.ID].Warnings {
		if w.Category == "layering" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_FlagsShortName(t *testing.T) {
	cap := newCapsule("x", types.CapsuleFunction, types.LayerCore)
	g := graph.Build([]*types.Capsule{cap}, nil, time.Now())

	Validate(g, nil)

	var found bool
	for _, w := range g.Capsules[cap.ID].Warnings {
		if w.Category == "naming" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_FlagsGodObject(t *testing.T) {
	caps := []*types.Capsule{newCapsule("God", types.CapsuleClass, types.LayerCore)}
	caps[0].Complexity = 25
	for i := 0; i < 16; i++ {
		other := newCapsule("Neighbor", types.CapsuleFunction, types.LayerCore)
		other.FilePath = "b.go"
		caps = append(caps, other)
	}
	g := graph.Build(caps, nil, time.Now())
	for _, cap := range g.Capsules {
		if cap.ID == caps[0].ID {
			continue
		}
		g.Relations = append(g.Relations, types.Relation{
			FromID: caps[0].ID, ToID: cap.ID, RelationType: types.RelationUses, Strength: 0.5,
		})
	}

	Validate(g, nil)

	var found bool
	for _, w := range g.Capsules[caps[0].ID].Warnings {
		if w.Category == "solid" && w.Message == "God object detected" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_OptimizeDropsWeakRelationsAndRecomputesMetrics(t *testing.T) {
	a := newCapsule("Alpha", types.CapsuleClass, types.LayerCore)
	b := newCapsule("Beta", types.CapsuleClass, types.LayerCore)
	g := graph.Build([]*types.Capsule{a, b}, nil, time.Now())
	weak := "barely related"
	g.Relations = append(g.Relations, types.Relation{
		FromID: a.ID, ToID: b.ID, RelationType: types.RelationReferences, Strength: 0.05, Description: &weak,
	})

	Validate(g, nil)

	for _, r := range g.Relations {
		assert.Greater(t, r.Strength, float32(0.1))
	}
	require.Equal(t, len(g.Capsules), g.Metrics.TotalCapsules)
}

func TestValidate_AntipatternsDetectMagicNumbersAndDeadCodeMarkers(t *testing.T) {
	cap := newCapsule("compute", types.CapsuleFunction, types.LayerCore)
	content := "func compute() {\n  a := 12\n  b := 34\n  c := 56\n  d := 78\n  // TODO fix this\n}\n"
	g := graph.Build([]*types.Capsule{cap}, nil, time.Now())

	Validate(g, map[string]string{"a.go": content})

	categories := map[string]bool{}
	for _, w := range g.Capsules[cap.ID].Warnings {
		categories[w.Message] = true
	}
	assert.True(t, categories["Magic numbers antipattern"])
	assert.True(t, categories["Dead code markers present"])
}
