package graph

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/types"
)

// DetectCycles runs DFS with a recursion-stack guard over each capsule's
// resolved Dependencies (spec.md §4.3) — the Depends+Uses closure built
// by closeDependencies, not the post-dedupe relation set, since dedupe
// keeps only the last relation written per (from,to) and a capsule pair
// can have its forward edge overwritten from Depends to a weaker Uses
// relation while the reverse edge stays Depends; filtering the relation
// list by RelationType afterward would silently drop that direction.
// Every capsule on any reported cycle receives a High-priority
// "architecture" warning.
func DetectCycles(g *types.CapsuleGraph) {
	adj := map[uuid.UUID][]uuid.UUID{}
	for id, cap := range g.Capsules {
		adj[id] = append(adj[id], cap.Dependencies...)
	}

	visited := map[uuid.UUID]bool{}
	onStack := map[uuid.UUID]bool{}
	var path []uuid.UUID
	flagged := map[uuid.UUID]bool{}

	var visit func(id uuid.UUID)
	visit = func(id uuid.UUID) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, next := range adj[id] {
			if onStack[next] {
				reportCycle(g, path, next, flagged)
			} else if !visited[next] {
				visit(next)
			}
		}

		path = path[:len(path)-1]
		onStack[id] = false
	}

	ids := sortedIDs(g.Capsules)
	for _, id := range ids {
		if !visited[id] {
			visit(id)
		}
	}
}

func reportCycle(g *types.CapsuleGraph, path []uuid.UUID, ancestor uuid.UUID, flagged map[uuid.UUID]bool) {
	start := 0
	for i, id := range path {
		if id == ancestor {
			start = i
			break
		}
	}
	cycle := path[start:]

	names := make([]string, 0, len(cycle))
	for _, id := range cycle {
		if cap, ok := g.Capsules[id]; ok {
			names = append(names, cap.Name)
		}
	}
	message := "Dependency cycle: " + strings.Join(names, " -> ")

	for _, id := range cycle {
		cap, ok := g.Capsules[id]
		if !ok {
			continue
		}
		flagged[id] = true
		duplicate := false
		for _, w := range cap.Warnings {
			if w.Category == "architecture" && w.Message == message {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		capID := id
		cap.Warnings = append(cap.Warnings, types.Warning{
			Level: types.PriorityHigh, Message: message, Category: "architecture", CapsuleID: &capID,
		})
	}
}

// sortedIDs gives deterministic iteration order so cycle reports are
// stable across runs.
func sortedIDs(capsules map[uuid.UUID]*types.Capsule) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(capsules))
	for id := range capsules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
