package diff

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/archlens-go/archlens/pkg/types"
)

func capsule(name string, capsuleType types.CapsuleType, layer types.Layer, complexity uint32) *types.Capsule {
	return &types.Capsule{
		ID: uuid.New(), Name: name, CapsuleType: capsuleType, Layer: &layer,
		Complexity: complexity, FilePath: "a.go", LineStart: 1, LineEnd: 1,
	}
}

func graphWith(caps ...*types.Capsule) *types.CapsuleGraph {
	g := types.NewCapsuleGraph(time.Now())
	for _, c := range caps {
		g.Capsules[c.ID] = c
	}
	return g
}

func TestAnalyze_DetectsAddedComponent(t *testing.T) {
	previous := graphWith()
	added := capsule("NewThing", types.CapsuleFunction, types.LayerCore, 2)
	current := graphWith(added)

	result := Analyze(current, previous)

	require := assert.New(t)
	found := false
	for _, c := range result.Changes {
		if c.Type == ChangeAdded && c.Component == "NewThing" {
			found = true
		}
	}
	require.True(found)
}

func TestAnalyze_DetectsRemovedComponent(t *testing.T) {
	removed := capsule("OldThing", types.CapsuleFunction, types.LayerCore, 2)
	previous := graphWith(removed)
	current := graphWith()

	result := Analyze(current, previous)

	found := false
	for _, c := range result.Changes {
		if c.Type == ChangeRemoved && c.Component == "OldThing" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyze_DetectsComplexityIncrease(t *testing.T) {
	name := "grower"
	prevCap := capsule(name, types.CapsuleFunction, types.LayerCore, 2)
	curCap := capsule(name, types.CapsuleFunction, types.LayerCore, 2)
	curCap.ID = prevCap.ID
	curCap.Complexity = 20

	previous := graphWith(prevCap)
	current := graphWith(curCap)

	result := Analyze(current, previous)

	found := false
	for _, c := range result.Changes {
		if c.Type == ChangeComplexityIncrease && c.Impact == ImpactMajor {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyze_DetectsLayerMove(t *testing.T) {
	name := "mover"
	prevCap := capsule(name, types.CapsuleFunction, types.LayerCore, 2)
	curCap := capsule(name, types.CapsuleFunction, types.LayerAPI, 2)
	curCap.ID = prevCap.ID

	previous := graphWith(prevCap)
	current := graphWith(curCap)

	result := Analyze(current, previous)

	found := false
	for _, c := range result.Changes {
		if c.Type == ChangeMoved {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyze_MetricsDeltaAndStableTrend(t *testing.T) {
	previous := graphWith()
	previous.Metrics = types.GraphMetrics{ComplexityAverage: 5, CouplingIndex: 0.2, CohesionIndex: 0.5}
	current := graphWith()
	current.Metrics = types.GraphMetrics{ComplexityAverage: 5, CouplingIndex: 0.2, CohesionIndex: 0.5}

	result := Analyze(current, previous)

	assert.Equal(t, float32(0), result.MetricsDelta.ComplexityDelta)
	assert.Equal(t, TrendStable, result.Trend)
}

func TestAnalyze_NewDependencyDetected(t *testing.T) {
	a := capsule("A", types.CapsuleFunction, types.LayerCore, 2)
	b := capsule("B", types.CapsuleFunction, types.LayerCore, 2)
	previous := graphWith(a, b)
	current := graphWith(a, b)
	current.Relations = []types.Relation{{FromID: a.ID, ToID: b.ID, RelationType: types.RelationDepends, Strength: 0.5}}

	result := Analyze(current, previous)

	found := false
	for _, c := range result.Changes {
		if c.Type == ChangeNewDependency {
			found = true
		}
	}
	assert.True(t, found)
}
