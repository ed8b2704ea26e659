package graph

import (
	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/types"
)

// ComputeMetrics derives GraphMetrics from the graph's current capsules
// and relations (spec.md §4.3).
func ComputeMetrics(g *types.CapsuleGraph) types.GraphMetrics {
	n := len(g.Capsules)
	metrics := types.GraphMetrics{
		TotalCapsules:  n,
		TotalRelations: len(g.Relations),
	}

	if n > 0 {
		var sum uint64
		for _, cap := range g.Capsules {
			sum += uint64(cap.Complexity)
		}
		metrics.ComplexityAverage = float32(sum) / float32(n)
	}

	if n > 1 {
		var strengthSum float32
		for _, r := range g.Relations {
			strengthSum += r.Strength
		}
		metrics.CouplingIndex = strengthSum / float32(n*(n-1))
	}

	metrics.CohesionIndex = cohesionIndex(g)

	adjacency := buildUndirectedAdjacency(g)
	components := countComponents(g, adjacency)
	e, nInt := len(g.Relations), n
	cyclomatic := e - nInt
	if cyclomatic < 0 {
		cyclomatic = 0
	}
	metrics.CyclomaticComplexity = uint32(cyclomatic + 2*components)

	metrics.DepthLevels = uint32(maxDepth(g))

	return metrics
}

func cohesionIndex(g *types.CapsuleGraph) float32 {
	connected := map[[2]uuid.UUID]bool{}
	for _, r := range g.Relations {
		connected[[2]uuid.UUID{r.FromID, r.ToID}] = true
	}

	var ratios []float32
	for _, ids := range g.Layers {
		n := len(ids)
		if n < 2 {
			continue
		}
		total := n * (n - 1)
		connectedCount := 0
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				if connected[[2]uuid.UUID{ids[i], ids[j]}] {
					connectedCount++
				}
			}
		}
		ratios = append(ratios, float32(connectedCount)/float32(total))
	}

	if len(ratios) == 0 {
		return 0
	}
	var sum float32
	for _, r := range ratios {
		sum += r
	}
	return sum / float32(len(ratios))
}

func buildUndirectedAdjacency(g *types.CapsuleGraph) map[uuid.UUID][]uuid.UUID {
	adj := map[uuid.UUID][]uuid.UUID{}
	for id := range g.Capsules {
		adj[id] = nil
	}
	for _, r := range g.Relations {
		adj[r.FromID] = append(adj[r.FromID], r.ToID)
		adj[r.ToID] = append(adj[r.ToID], r.FromID)
	}
	return adj
}

func countComponents(g *types.CapsuleGraph, adjacency map[uuid.UUID][]uuid.UUID) int {
	visited := map[uuid.UUID]bool{}
	components := 0
	for id := range g.Capsules {
		if visited[id] {
			continue
		}
		components++
		stack := []uuid.UUID{id}
		visited[id] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range adjacency[cur] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
	}
	return components
}

// maxDepth returns the longest directed path in the Depends/Uses
// subgraph, via DFS with a visited guard that caps depth at a cycle
// revisit rather than looping forever.
func maxDepth(g *types.CapsuleGraph) int {
	adj := map[uuid.UUID][]uuid.UUID{}
	for _, r := range g.Relations {
		if r.RelationType != types.RelationDepends && r.RelationType != types.RelationUses {
			continue
		}
		adj[r.FromID] = append(adj[r.FromID], r.ToID)
	}

	best := 0
	for id := range g.Capsules {
		depth := dfsDepth(id, adj, map[uuid.UUID]bool{})
		if depth > best {
			best = depth
		}
	}
	return best
}

func dfsDepth(id uuid.UUID, adj map[uuid.UUID][]uuid.UUID, visiting map[uuid.UUID]bool) int {
	if visiting[id] {
		return 0
	}
	visiting[id] = true
	defer delete(visiting, id)

	best := 0
	for _, next := range adj[id] {
		d := 1 + dfsDepth(next, adj, visiting)
		if d > best {
			best = d
		}
	}
	return best
}
