// Package export turns a validated CapsuleGraph into one of the
// supported serialization formats (spec.md §4.6). Every exporter is a
// pure function of the graph: no ambient state, no partial output.
package export

import (
	"sort"

	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/errs"
	"github.com/archlens-go/archlens/pkg/types"
)

// Export renders g in the requested format.
func Export(g *types.CapsuleGraph, format types.ExportFormat) (string, error) {
	switch format {
	case types.FormatAICompact:
		return aiCompact(g), nil
	case types.FormatJSON:
		return toJSON(g)
	case types.FormatYAML:
		return toYAML(g)
	case types.FormatMermaid:
		return mermaid(g), nil
	case types.FormatDOT:
		return dot(g), nil
	case types.FormatGraphML:
		return graphML(g), nil
	case types.FormatSVG:
		return svg(g), nil
	case types.FormatHTML:
		return interactiveHTML(g)
	case types.FormatChainOfThought:
		return chainOfThought(g), nil
	case types.FormatLLMPrompt:
		return llmPrompt(g), nil
	default:
		return "", errs.InvalidConfig(nil, "unsupported export format %q", format)
	}
}

// sortedCapsules gives every exporter a deterministic node order, keyed on
// content (file path, then position, then name) rather than the capsule's
// randomly generated id, so two analyses of the same project export in the
// same order.
func sortedCapsules(g *types.CapsuleGraph) []*types.Capsule {
	caps := make([]*types.Capsule, 0, len(g.Capsules))
	for _, cap := range g.Capsules {
		caps = append(caps, cap)
	}
	sort.Slice(caps, func(i, j int) bool { return capsuleLess(caps[i], caps[j]) })
	return caps
}

func capsuleLess(a, b *types.Capsule) bool {
	if a.FilePath != b.FilePath {
		return a.FilePath < b.FilePath
	}
	if a.LineStart != b.LineStart {
		return a.LineStart < b.LineStart
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID.String() < b.ID.String()
}

// relationEndpoints resolves a relation's from/to capsules, silently
// dropping relations with dangling ids per spec.md §4.6's error semantics.
func relationEndpoints(g *types.CapsuleGraph, r types.Relation) (from, to *types.Capsule, ok bool) {
	from, ok1 := g.Capsules[r.FromID]
	to, ok2 := g.Capsules[r.ToID]
	if !ok1 || !ok2 {
		return nil, nil, false
	}
	return from, to, true
}

func sortedLayers(g *types.CapsuleGraph) []types.Layer {
	layers := make([]types.Layer, 0, len(g.Layers))
	for l := range g.Layers {
		layers = append(layers, l)
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })
	return layers
}

func sortedLayerIDs(g *types.CapsuleGraph, layer types.Layer) []uuid.UUID {
	ids := append([]uuid.UUID(nil), g.Layers[layer]...)
	sort.Slice(ids, func(i, j int) bool {
		a, aok := g.Capsules[ids[i]]
		b, bok := g.Capsules[ids[j]]
		if !aok || !bok {
			return ids[i].String() < ids[j].String()
		}
		return capsuleLess(a, b)
	})
	return ids
}
