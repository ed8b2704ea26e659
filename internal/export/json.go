package export

import (
	"encoding/json"
	"time"

	"github.com/archlens-go/archlens/pkg/errs"
	"github.com/archlens-go/archlens/pkg/types"
)

// jsonGraph is the stable shape shared by the JSON and YAML exporters
// (spec.md §4.6): metrics, layers keyed by name with inline capsule
// summaries, and relations referenced by capsule name rather than id.
type jsonGraph struct {
	CreatedAt string                        `json:"created_at" yaml:"created_at"`
	Metrics   jsonMetrics                   `json:"metrics" yaml:"metrics"`
	Layers    map[string][]jsonCapsule      `json:"layers" yaml:"layers"`
	Relations []jsonRelation                `json:"relations" yaml:"relations"`
}

type jsonMetrics struct {
	TotalCapsules        int     `json:"total_capsules" yaml:"total_capsules"`
	TotalRelations       int     `json:"total_relations" yaml:"total_relations"`
	ComplexityAverage    float32 `json:"complexity_average" yaml:"complexity_average"`
	CouplingIndex        float32 `json:"coupling_index" yaml:"coupling_index"`
	CohesionIndex        float32 `json:"cohesion_index" yaml:"cohesion_index"`
	CyclomaticComplexity uint32  `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	DepthLevels          uint32  `json:"depth_levels" yaml:"depth_levels"`
}

type jsonCapsule struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	CapsuleType string   `json:"capsule_type" yaml:"capsule_type"`
	Complexity  uint32   `json:"complexity" yaml:"complexity"`
	FilePath    string   `json:"file_path" yaml:"file_path"`
	Warnings    []string `json:"warnings" yaml:"warnings"`
}

type jsonRelation struct {
	From         string  `json:"from" yaml:"from"`
	To           string  `json:"to" yaml:"to"`
	RelationType string  `json:"relation_type" yaml:"relation_type"`
	Strength     float32 `json:"strength" yaml:"strength"`
	Description  *string `json:"description,omitempty" yaml:"description,omitempty"`
}

func buildJSONGraph(g *types.CapsuleGraph) jsonGraph {
	jg := jsonGraph{
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
		Metrics: jsonMetrics{
			TotalCapsules:        g.Metrics.TotalCapsules,
			TotalRelations:       g.Metrics.TotalRelations,
			ComplexityAverage:    g.Metrics.ComplexityAverage,
			CouplingIndex:        g.Metrics.CouplingIndex,
			CohesionIndex:        g.Metrics.CohesionIndex,
			CyclomaticComplexity: g.Metrics.CyclomaticComplexity,
			DepthLevels:          g.Metrics.DepthLevels,
		},
		Layers: map[string][]jsonCapsule{},
	}

	for _, layer := range sortedLayers(g) {
		var caps []jsonCapsule
		for _, id := range sortedLayerIDs(g, layer) {
			cap, ok := g.Capsules[id]
			if !ok {
				continue
			}
			warnings := make([]string, 0, len(cap.Warnings))
			for _, w := range cap.Warnings {
				warnings = append(warnings, w.Message)
			}
			caps = append(caps, jsonCapsule{
				ID:          cap.ID.String(),
				Name:        cap.Name,
				CapsuleType: string(cap.CapsuleType),
				Complexity:  cap.Complexity,
				FilePath:    cap.FilePath,
				Warnings:    warnings,
			})
		}
		jg.Layers[string(layer)] = caps
	}

	for _, r := range g.Relations {
		from, to, ok := relationEndpoints(g, r)
		if !ok {
			continue
		}
		jg.Relations = append(jg.Relations, jsonRelation{
			From:         from.Name,
			To:           to.Name,
			RelationType: string(r.RelationType),
			Strength:     r.Strength,
			Description:  r.Description,
		})
	}

	return jg
}

func toJSON(g *types.CapsuleGraph) (string, error) {
	data, err := json.MarshalIndent(buildJSONGraph(g), "", "  ")
	if err != nil {
		return "", errs.Generic("json export: %v", err)
	}
	return string(data), nil
}
