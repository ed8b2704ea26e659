package capsule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens-go/archlens/pkg/types"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func newID() uuid.UUID { return uuid.New() }

func ptrTime(t time.Time) *time.Time { return &t }

func TestConstruct_FiltersBySignificance(t *testing.T) {
	elements := []types.StructuralElement{
		{Name: "Foo", Kind: types.KindClass, Visibility: types.VisibilityPublic, StartLine: 1, EndLine: 5},
		{Name: "x", Kind: types.KindImport, Visibility: types.VisibilityPublic, StartLine: 1, EndLine: 1},
		{Name: "Count", Kind: types.KindVariable, Visibility: types.VisibilityPrivate, StartLine: 2, EndLine: 2},
		{Name: "Max", Kind: types.KindConstant, Visibility: types.VisibilityPublic, StartLine: 3, EndLine: 3},
	}

	c := New(fixedClock{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	capsules := c.Construct("src/widget.rs", elements)

	names := map[string]*types.Capsule{}
	for _, cap := range capsules {
		names[cap.Name] = cap
	}
	assert.Contains(t, names, "Foo")
	assert.Contains(t, names, "Max")
	assert.NotContains(t, names, "x")
	assert.NotContains(t, names, "Count")
}

func TestConstruct_DerivesLayerFromDirectory(t *testing.T) {
	c := New(fixedClock{time.Now()})
	capsules := c.Construct("api/controllers/handler.go", []types.StructuralElement{
		{Name: "Handle", Kind: types.KindFunction, Visibility: types.VisibilityPublic, StartLine: 1, EndLine: 3},
	})
	require.Len(t, capsules, 1)
	require.NotNil(t, capsules[0].Layer)
	assert.Equal(t, types.LayerAPI, *capsules[0].Layer)
}

func TestConstruct_WarningsForComplexityAndSize(t *testing.T) {
	c := New(fixedClock{time.Now()})
	content := "line\n"
	capsules := c.Construct("src/big.rs", []types.StructuralElement{
		{
			Name: "Huge", Kind: types.KindFunction, Visibility: types.VisibilityPublic,
			StartLine: 1, EndLine: 150, Complexity: 20, Content: content,
		},
	})
	require.Len(t, capsules, 1)
	categories := map[string]bool{}
	for _, w := range capsules[0].Warnings {
		categories[w.Category] = true
	}
	assert.True(t, categories["complexity"])
	assert.True(t, categories["size"])
	assert.True(t, categories["documentation"])
}

func TestOptimize_DedupesByNameFilePathLineStart(t *testing.T) {
	clock := fixedClock{time.Now()}
	layer := types.LayerCore
	dup := func() *types.Capsule {
		return &types.Capsule{
			ID: newID(), Name: "Foo", FilePath: "a.go", LineStart: 1, LineEnd: 5,
			Size: 5, Complexity: 5, CapsuleType: types.CapsuleFunction, Layer: &layer,
			CreatedAt: ptrTime(clock.Now()),
		}
	}
	capsules := []*types.Capsule{dup(), dup()}
	result := Optimize(capsules)
	assert.Len(t, result, 1)
}

func TestOptimize_MergesSmallCompatibleCapsules(t *testing.T) {
	layer := types.LayerCore
	small := func(name string) *types.Capsule {
		return &types.Capsule{
			ID: newID(), Name: name, FilePath: "a.go", LineStart: 1, LineEnd: 2,
			Size: 2, Complexity: 1, CapsuleType: types.CapsuleConstant, Layer: &layer,
		}
	}
	capsules := []*types.Capsule{small("A"), small("B")}
	result := Optimize(capsules)

	var mergedCount, deprecatedCount int
	for _, cap := range result {
		if cap.Status == types.StatusDeprecated {
			deprecatedCount++
		}
		if cap.Name == "merged_A_B" {
			mergedCount++
		}
	}
	assert.Equal(t, 1, mergedCount)
	assert.Equal(t, 2, deprecatedCount)
}

func TestOptimize_SortsByPriorityCriticalFirst(t *testing.T) {
	layer := types.LayerCore
	low := &types.Capsule{ID: newID(), Name: "Low", FilePath: "a.go", LineStart: 1, LineEnd: 20, Size: 20, Complexity: 5, CapsuleType: types.CapsuleFunction, Priority: types.PriorityLow, Layer: &layer}
	high := &types.Capsule{ID: newID(), Name: "High", FilePath: "a.go", LineStart: 21, LineEnd: 40, Size: 20, Complexity: 5, CapsuleType: types.CapsuleClass, Priority: types.PriorityHigh, Layer: &layer}

	result := Optimize([]*types.Capsule{low, high})
	require.Len(t, result, 2)
	assert.Equal(t, types.PriorityHigh, result[0].Priority)
}
