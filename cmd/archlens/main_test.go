package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/archlens-go/archlens/pkg/types"
)

func TestProjectPathArg_DefaultsToCurrentDirectory(t *testing.T) {
	assert.Equal(t, ".", projectPathArg(nil))
	assert.Equal(t, "foo", projectPathArg([]string{"foo"}))
}

func TestOrderedLayers_OnlyIncludesPresentLayers(t *testing.T) {
	g := types.NewCapsuleGraph(time.Now())
	g.Layers[types.LayerCore] = []uuid.UUID{uuid.New()}
	g.Layers[types.LayerAPI] = []uuid.UUID{uuid.New()}

	layers := orderedLayers(g)

	assert.Equal(t, []types.Layer{types.LayerAPI, types.LayerCore}, layers)
}

func TestCriticalOnlyGraph_KeepsOnlyCapsulesWithWarnings(t *testing.T) {
	layer := types.LayerCore
	clean := &types.Capsule{ID: uuid.New(), Name: "clean", Layer: &layer}
	flagged := &types.Capsule{ID: uuid.New(), Name: "flagged", Layer: &layer,
		Warnings: []types.Warning{{Level: types.PriorityHigh, Message: "too complex"}}}

	g := types.NewCapsuleGraph(time.Now())
	g.Capsules[clean.ID] = clean
	g.Capsules[flagged.ID] = flagged
	g.Layers[layer] = []uuid.UUID{clean.ID, flagged.ID}
	g.Relations = []types.Relation{
		{FromID: clean.ID, ToID: flagged.ID, RelationType: types.RelationDepends, Strength: 0.5},
	}

	filtered := criticalOnlyGraph(g)

	assert.Len(t, filtered.Capsules, 1)
	_, ok := filtered.Capsules[flagged.ID]
	assert.True(t, ok)
	assert.Empty(t, filtered.Relations)
	assert.Equal(t, []uuid.UUID{flagged.ID}, filtered.Layers[layer])
}
