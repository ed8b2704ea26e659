// Package diff compares two CapsuleGraph snapshots and reports what
// changed: added/removed/modified components, relation churn, metric
// deltas, and a quality-trend verdict (SPEC_FULL.md §D, grounded on
// original_source's diff_analyzer.rs).
package diff

import (
	"fmt"

	"github.com/archlens-go/archlens/pkg/types"
)

// ChangeType categorizes a single detected architectural change.
type ChangeType string

const (
	ChangeAdded               ChangeType = "Added"
	ChangeRemoved             ChangeType = "Removed"
	ChangeModified            ChangeType = "Modified"
	ChangeMoved               ChangeType = "Moved"
	ChangeComplexityIncrease  ChangeType = "ComplexityIncrease"
	ChangeComplexityDecrease  ChangeType = "ComplexityDecrease"
	ChangeNewDependency       ChangeType = "NewDependency"
	ChangeRemovedDependency   ChangeType = "RemovedDependency"
)

// Impact classifies how disruptive a change is likely to be.
type Impact string

const (
	ImpactBreaking    Impact = "Breaking"
	ImpactMajor       Impact = "Major"
	ImpactMinor       Impact = "Minor"
	ImpactRefactoring Impact = "Refactoring"
	ImpactQuality     Impact = "Quality"
)

// Trend summarizes the overall quality direction between two snapshots.
type Trend string

const (
	TrendImproving Trend = "Improving"
	TrendDegrading Trend = "Degrading"
	TrendStable    Trend = "Stable"
	TrendMixed     Trend = "Mixed"
)

// Change is a single detected difference between two graphs.
type Change struct {
	Type               ChangeType
	Component          string
	Description        string
	Impact             Impact
	RelatedComponents  []string
}

// MetricsDelta is the arithmetic difference between two GraphMetrics.
type MetricsDelta struct {
	ComplexityDelta    float32
	CouplingDelta      float32
	CohesionDelta      float32
	ComponentCountDelta int
	RelationCountDelta  int
	NewWarnings         int
	ResolvedWarnings    int
}

// Analysis is the full result of comparing two graphs.
type Analysis struct {
	Changes         []Change
	MetricsDelta    MetricsDelta
	Trend           Trend
	Recommendations []string
	Summary         string
}

const changeThreshold = 0.1
const complexityMajorThreshold = 5.0

// Analyze compares current against previous and reports every change,
// metric delta, and quality trend between them.
func Analyze(current, previous *types.CapsuleGraph) Analysis {
	var changes []Change
	changes = append(changes, componentChanges(current, previous)...)
	changes = append(changes, relationChanges(current, previous)...)

	delta := metricsDelta(current, previous)
	trend := qualityTrend(delta, changes)
	recommendations := recommendations(changes, delta, trend)
	summary := summarize(changes, delta, trend)

	return Analysis{
		Changes:         changes,
		MetricsDelta:    delta,
		Trend:           trend,
		Recommendations: recommendations,
		Summary:         summary,
	}
}

func componentChanges(current, previous *types.CapsuleGraph) []Change {
	var changes []Change

	currentByName := map[string]*types.Capsule{}
	for _, c := range current.Capsules {
		currentByName[c.Name] = c
	}
	previousByName := map[string]*types.Capsule{}
	for _, c := range previous.Capsules {
		previousByName[c.Name] = c
	}

	for name, cap := range currentByName {
		if _, ok := previousByName[name]; !ok {
			changes = append(changes, Change{
				Type:              ChangeAdded,
				Component:         name,
				Description:       fmt.Sprintf("Added new component %q of type %s", name, cap.CapsuleType),
				Impact:            addImpact(cap),
				RelatedComponents: relatedComponents(cap, current),
			})
		}
	}

	for name, cap := range previousByName {
		if _, ok := currentByName[name]; !ok {
			changes = append(changes, Change{
				Type:              ChangeRemoved,
				Component:         name,
				Description:       fmt.Sprintf("Removed component %q of type %s", name, cap.CapsuleType),
				Impact:            removeImpact(cap, previous),
				RelatedComponents: relatedComponents(cap, previous),
			})
		}
	}

	for name, curCap := range currentByName {
		if prevCap, ok := previousByName[name]; ok {
			changes = append(changes, modifications(curCap, prevCap)...)
		}
	}

	return changes
}

func modifications(current, previous *types.Capsule) []Change {
	var changes []Change

	complexityDelta := float32(current.Complexity) - float32(previous.Complexity)
	if abs32(complexityDelta) > changeThreshold {
		changeType := ChangeModified
		switch {
		case complexityDelta > 0:
			changeType = ChangeComplexityIncrease
		case complexityDelta < 0:
			changeType = ChangeComplexityDecrease
		}
		impact := ImpactMinor
		if complexityDelta > complexityMajorThreshold {
			impact = ImpactMajor
		}
		changes = append(changes, Change{
			Type:      changeType,
			Component: current.Name,
			Description: fmt.Sprintf("Complexity of %q changed from %d to %d (%+.1f)",
				current.Name, previous.Complexity, current.Complexity, complexityDelta),
			Impact: impact,
		})
	}

	if layerString(current.Layer) != layerString(previous.Layer) {
		changes = append(changes, Change{
			Type:      ChangeMoved,
			Component: current.Name,
			Description: fmt.Sprintf("Component %q moved from layer %q to layer %q",
				current.Name, layerString(previous.Layer), layerString(current.Layer)),
			Impact: ImpactRefactoring,
		})
	}

	if len(current.Warnings) != len(previous.Warnings) {
		delta := len(current.Warnings) - len(previous.Warnings)
		changes = append(changes, Change{
			Type:        ChangeModified,
			Component:   current.Name,
			Description: fmt.Sprintf("Warning count for %q changed by %+d", current.Name, delta),
			Impact:      ImpactQuality,
		})
	}

	return changes
}

func layerString(l *types.Layer) string {
	if l == nil {
		return "none"
	}
	return string(*l)
}

func relationChanges(current, previous *types.CapsuleGraph) []Change {
	type edge struct{ from, to string }

	namedEdges := func(g *types.CapsuleGraph) map[edge]bool {
		edges := map[edge]bool{}
		for _, r := range g.Relations {
			from, ok1 := g.Capsules[r.FromID]
			to, ok2 := g.Capsules[r.ToID]
			if !ok1 || !ok2 {
				continue
			}
			edges[edge{from.Name, to.Name}] = true
		}
		return edges
	}

	currentEdges := namedEdges(current)
	previousEdges := namedEdges(previous)

	var changes []Change
	for e := range currentEdges {
		if !previousEdges[e] {
			changes = append(changes, Change{
				Type:              ChangeNewDependency,
				Component:         e.from,
				Description:       fmt.Sprintf("New dependency added: %q -> %q", e.from, e.to),
				Impact:            ImpactMinor,
				RelatedComponents: []string{e.to},
			})
		}
	}
	for e := range previousEdges {
		if !currentEdges[e] {
			changes = append(changes, Change{
				Type:              ChangeRemovedDependency,
				Component:         e.from,
				Description:       fmt.Sprintf("Dependency removed: %q -> %q", e.from, e.to),
				Impact:            ImpactRefactoring,
				RelatedComponents: []string{e.to},
			})
		}
	}
	return changes
}

func metricsDelta(current, previous *types.CapsuleGraph) MetricsDelta {
	newWarnings, resolvedWarnings := 0, 0
	for _, c := range current.Capsules {
		newWarnings += len(c.Warnings)
	}
	for _, c := range previous.Capsules {
		resolvedWarnings += len(c.Warnings)
	}

	return MetricsDelta{
		ComplexityDelta:     current.Metrics.ComplexityAverage - previous.Metrics.ComplexityAverage,
		CouplingDelta:       current.Metrics.CouplingIndex - previous.Metrics.CouplingIndex,
		CohesionDelta:       current.Metrics.CohesionIndex - previous.Metrics.CohesionIndex,
		ComponentCountDelta: current.Metrics.TotalCapsules - previous.Metrics.TotalCapsules,
		RelationCountDelta:  current.Metrics.TotalRelations - previous.Metrics.TotalRelations,
		NewWarnings:         newWarnings,
		ResolvedWarnings:    resolvedWarnings,
	}
}

func qualityTrend(delta MetricsDelta, changes []Change) Trend {
	score := 0.0
	if delta.ComplexityDelta < 0 {
		score++
	}
	if delta.CouplingDelta < 0 {
		score++
	}
	if delta.CohesionDelta > 0 {
		score++
	}
	if delta.NewWarnings < delta.ResolvedWarnings {
		score++
	}

	breaking, quality := 0, 0
	for _, c := range changes {
		if c.Impact == ImpactBreaking {
			breaking++
		}
		if c.Impact == ImpactQuality {
			quality++
		}
	}
	if breaking > 0 {
		score -= 2
	}
	if quality > 0 {
		score += 0.5
	}

	switch {
	case abs64(score) <= 1.0:
		return TrendStable
	case score > 1.0:
		return TrendImproving
	case score < -1.0:
		return TrendDegrading
	default:
		return TrendMixed
	}
}

func abs64(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func recommendations(changes []Change, delta MetricsDelta, trend Trend) []string {
	var out []string

	if delta.ComplexityDelta > 1 {
		out = append(out, "Consider refactoring to reduce component complexity")
	}
	if delta.CouplingDelta > 0.1 {
		out = append(out, "High coupling increase — consider dependency inversion")
	}
	if delta.CohesionDelta < -0.1 {
		out = append(out, "Cohesion dropped — group related functionality together")
	}

	breaking, newDeps := 0, 0
	for _, c := range changes {
		if c.Impact == ImpactBreaking {
			breaking++
		}
		if c.Type == ChangeNewDependency {
			newDeps++
		}
	}
	if breaking > 0 {
		out = append(out, "Breaking changes detected — update documentation and tests")
	}
	if newDeps > 5 {
		out = append(out, "Many new dependencies — review architectural integrity")
	}

	switch trend {
	case TrendDegrading:
		out = append(out, "Code quality is degrading — a technical audit is warranted")
	case TrendImproving:
		out = append(out, "Code quality is improving — keep going")
	case TrendMixed:
		out = append(out, "Mixed changes — focus on the critical areas")
	case TrendStable:
		out = append(out, "Architecture is stable — safe to add new functionality")
	}

	return out
}

func summarize(changes []Change, delta MetricsDelta, trend Trend) string {
	added, removed, modified := 0, 0, 0
	for _, c := range changes {
		switch c.Type {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeModified, ChangeComplexityIncrease, ChangeComplexityDecrease:
			modified++
		}
	}

	return fmt.Sprintf(
		"%d changes detected: %d added, %d removed, %d modified. "+
			"Complexity: %+.1f, Coupling: %+.2f, Cohesion: %+.2f. Quality trend: %s.",
		len(changes), added, removed, modified,
		delta.ComplexityDelta, delta.CouplingDelta, delta.CohesionDelta, trend)
}

func relatedComponents(cap *types.Capsule, g *types.CapsuleGraph) []string {
	var related []string
	for _, r := range g.Relations {
		if r.FromID == cap.ID {
			if other, ok := g.Capsules[r.ToID]; ok {
				related = append(related, other.Name)
			}
		} else if r.ToID == cap.ID {
			if other, ok := g.Capsules[r.FromID]; ok {
				related = append(related, other.Name)
			}
		}
	}
	return related
}

func addImpact(cap *types.Capsule) Impact {
	switch cap.CapsuleType {
	case types.CapsuleInterface, types.CapsuleClass:
		return ImpactMajor
	case types.CapsuleFunction, types.CapsuleMethod:
		if cap.Complexity > 10 {
			return ImpactMajor
		}
		return ImpactMinor
	default:
		return ImpactMinor
	}
}

func removeImpact(cap *types.Capsule, g *types.CapsuleGraph) Impact {
	dependents := 0
	for _, r := range g.Relations {
		if r.ToID == cap.ID {
			dependents++
		}
	}
	switch {
	case dependents > 5:
		return ImpactBreaking
	case dependents > 2:
		return ImpactMajor
	default:
		return ImpactMinor
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
