// Package graph assembles a capsule set into a typed CapsuleGraph
// (spec.md §4.3): four independent relation-construction passes, a
// dependency closure, graph-level metrics, and cycle detection.
package graph

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/types"
)

// canonicalAdjacency mirrors spec.md's generic architectural-layer pairs
// (presentation↔application, application↔domain, domain↔infrastructure,
// controller↔service, service↔repository, ui↔core, core↔data), translated
// onto this repo's concrete Layer enum.
var canonicalAdjacency = map[[2]types.Layer]bool{
	{types.LayerUI, types.LayerAPI}:                  true,
	{types.LayerAPI, types.LayerUI}:                  true,
	{types.LayerAPI, types.LayerBusiness}:            true,
	{types.LayerBusiness, types.LayerAPI}:            true,
	{types.LayerBusiness, types.LayerInfrastructure}: true,
	{types.LayerInfrastructure, types.LayerBusiness}: true,
	{types.LayerBusiness, types.LayerData}:           true,
	{types.LayerData, types.LayerBusiness}:           true,
	{types.LayerUI, types.LayerCore}:                 true,
	{types.LayerCore, types.LayerUI}:                 true,
	{types.LayerCore, types.LayerData}:               true,
	{types.LayerData, types.LayerCore}:               true,
}

// Build assembles capsules into a graph: relation construction, dependency
// closure, and metrics. fileContents backs the semantic imports/exports
// pass; capsules whose file is absent from it are simply skipped by that
// pass, not an error.
func Build(capsules []*types.Capsule, fileContents map[string]string, now time.Time) *types.CapsuleGraph {
	g := types.NewCapsuleGraph(now)
	for _, cap := range capsules {
		g.Capsules[cap.ID] = cap
		if cap.Layer != nil {
			g.Layers[*cap.Layer] = append(g.Layers[*cap.Layer], cap.ID)
		}
	}

	resolveDeclaredDependencies(capsules)

	var relations []types.Relation
	relations = append(relations, declaredDependencyRelations(capsules)...)
	relations = append(relations, structuralProximityRelations(capsules)...)
	relations = append(relations, layerAdjacencyRelations(capsules)...)
	relations = append(relations, semanticImportExportRelations(capsules, fileContents)...)

	g.Relations = dedupeRelations(relations)
	closeDependencies(g)
	g.Metrics = ComputeMetrics(g)
	DetectCycles(g)

	return g
}

// resolveDeclaredDependencies seeds each capsule's Dependencies from the
// same-name heuristic recorded in Metadata["signature_refs"] at
// construction time (internal/capsule), so pass 1 below has a concrete
// dependency set to read, per spec.md §4.3's "present in the set" framing.
func resolveDeclaredDependencies(capsules []*types.Capsule) {
	byName := map[string]uuid.UUID{}
	for _, cap := range capsules {
		byName[cap.Name] = cap.ID
	}

	for _, cap := range capsules {
		refs := cap.Metadata["signature_refs"]
		if refs == "" {
			continue
		}
		existing := map[uuid.UUID]bool{}
		for _, id := range cap.Dependencies {
			existing[id] = true
		}
		for _, name := range strings.Split(refs, ",") {
			id, ok := byName[name]
			if !ok || id == cap.ID || existing[id] {
				continue
			}
			existing[id] = true
			cap.Dependencies = append(cap.Dependencies, id)
		}
	}
}

func declaredDependencyRelations(capsules []*types.Capsule) []types.Relation {
	inSet := map[uuid.UUID]bool{}
	for _, cap := range capsules {
		inSet[cap.ID] = true
	}
	desc := "Direct dependency"
	var relations []types.Relation
	for _, cap := range capsules {
		for _, d := range cap.Dependencies {
			if !inSet[d] {
				continue
			}
			relations = append(relations, types.Relation{
				FromID: cap.ID, ToID: d, RelationType: types.RelationDepends,
				Strength: 0.8, Description: &desc,
			})
		}
	}
	return relations
}

func structuralProximityRelations(capsules []*types.Capsule) []types.Relation {
	var relations []types.Relation
	for i := 0; i < len(capsules); i++ {
		for j := i + 1; j < len(capsules); j++ {
			a, b := capsules[i], capsules[j]
			dirA, dirB := filepath.Dir(a.FilePath), filepath.Dir(b.FilePath)

			var strength float32
			if dirA == dirB {
				strength = 0.3
			} else {
				k := commonLeadingComponents(dirA, dirB)
				if k >= 1 {
					strength = 0.1 + 0.05*float32(k)
				}
			}
			if strength > 0.1 {
				relations = append(relations, types.Relation{
					FromID: a.ID, ToID: b.ID, RelationType: types.RelationReferences, Strength: strength,
				})
			}
		}
	}
	return relations
}

func commonLeadingComponents(a, b string) int {
	aParts := strings.Split(filepath.ToSlash(a), "/")
	bParts := strings.Split(filepath.ToSlash(b), "/")
	n := 0
	for n < len(aParts) && n < len(bParts) && aParts[n] == bParts[n] && aParts[n] != "" {
		n++
	}
	return n
}

func layerAdjacencyRelations(capsules []*types.Capsule) []types.Relation {
	var relations []types.Relation
	for i := 0; i < len(capsules); i++ {
		for j := i + 1; j < len(capsules); j++ {
			a, b := capsules[i], capsules[j]
			if a.Layer == nil || b.Layer == nil {
				continue
			}
			var strength float32
			switch {
			case *a.Layer == *b.Layer:
				strength = 0.4
			case canonicalAdjacency[[2]types.Layer{*a.Layer, *b.Layer}]:
				strength = 0.2
			default:
				strength = 0.1
			}
			relations = append(relations, types.Relation{
				FromID: a.ID, ToID: b.ID, RelationType: types.RelationUses, Strength: strength,
			})
		}
	}
	return relations
}

var (
	importFromPattern = regexp.MustCompile(`(?:from|use|import)\s+['"]?([\w./:-]+)['"]?`)
	exportPattern     = regexp.MustCompile(`export\s+(?:default\s+)?(?:const|let|var|function|class)?\s*(\w+)`)
)

func extractImportsExports(content string) (imports []string, exports []string) {
	for _, m := range importFromPattern.FindAllStringSubmatch(content, -1) {
		imports = append(imports, m[1])
	}
	for _, m := range exportPattern.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			exports = append(exports, m[1])
		}
	}
	return imports, exports
}

func semanticImportExportRelations(capsules []*types.Capsule, fileContents map[string]string) []types.Relation {
	if len(fileContents) == 0 {
		return nil
	}
	importsByFile := map[string][]string{}
	exportsByFile := map[string][]string{}
	for path, content := range fileContents {
		imports, exports := extractImportsExports(content)
		importsByFile[path] = imports
		exportsByFile[path] = exports
	}

	var relations []types.Relation
	for _, a := range capsules {
		imports, ok := importsByFile[a.FilePath]
		if !ok || len(imports) == 0 {
			continue
		}
		for _, b := range capsules {
			if a.ID == b.ID {
				continue
			}
			exports, ok := exportsByFile[b.FilePath]
			if !ok || len(exports) == 0 {
				continue
			}
			matches := countMatches(imports, exports)
			if matches == 0 {
				continue
			}
			strength := float32(matches) / float32(len(imports)+len(exports))
			if strength > 0.1 {
				relations = append(relations, types.Relation{
					FromID: a.ID, ToID: b.ID, RelationType: types.RelationUses, Strength: strength,
				})
			}
		}
	}
	return relations
}

func countMatches(imports, exports []string) int {
	count := 0
	for _, imp := range imports {
		for _, exp := range exports {
			if strings.Contains(imp, exp) || strings.Contains(exp, imp) {
				count++
			}
		}
	}
	return count
}

func dedupeRelations(relations []types.Relation) []types.Relation {
	type key struct {
		from, to uuid.UUID
	}
	index := map[key]int{}
	var result []types.Relation
	for _, r := range relations {
		k := key{r.FromID, r.ToID}
		if i, ok := index[k]; ok {
			result[i] = r
			continue
		}
		index[k] = len(result)
		result = append(result, r)
	}
	return result
}

func closeDependencies(g *types.CapsuleGraph) {
	for _, cap := range g.Capsules {
		cap.Dependencies = nil
		cap.Dependents = nil
	}
	for _, r := range g.Relations {
		if r.RelationType != types.RelationDepends && r.RelationType != types.RelationUses {
			continue
		}
		from, ok1 := g.Capsules[r.FromID]
		to, ok2 := g.Capsules[r.ToID]
		if !ok1 || !ok2 {
			continue
		}
		if !containsID(from.Dependencies, r.ToID) {
			from.Dependencies = append(from.Dependencies, r.ToID)
		}
		if !containsID(to.Dependents, r.FromID) {
			to.Dependents = append(to.Dependents, r.FromID)
		}
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
