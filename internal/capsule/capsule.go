// Package capsule builds Capsules from structural elements (spec.md §4.2):
// filters elements by significance, derives layer/priority/status/quality
// fields, attaches per-capsule warnings, then optimizes the resulting set
// (dedupe, merge small capsules, sort by priority).
package capsule

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/types"
)

var layerByDir = map[string]types.Layer{
	"src": types.LayerCore, "lib": types.LayerCore,
	"api": types.LayerAPI, "controllers": types.LayerAPI, "routes": types.LayerAPI,
	"ui": types.LayerUI, "components": types.LayerUI, "views": types.LayerUI,
	"utils": types.LayerUtils, "helpers": types.LayerUtils, "tools": types.LayerUtils,
	"models": types.LayerBusiness, "entities": types.LayerBusiness, "domain": types.LayerBusiness,
	"services": types.LayerBusiness, "business": types.LayerBusiness,
	"data": types.LayerData, "database": types.LayerData, "db": types.LayerData,
	"tests": types.LayerTests, "test": types.LayerTests,
	"mcp": types.LayerInfrastructure, "server": types.LayerInfrastructure,
}

var kindToCapsuleType = map[types.ElementKind]types.CapsuleType{
	types.KindModule:    types.CapsuleModule,
	types.KindClass:     types.CapsuleClass,
	types.KindInterface: types.CapsuleInterface,
	types.KindStruct:    types.CapsuleStruct,
	types.KindEnum:      types.CapsuleEnum,
	types.KindFunction:  types.CapsuleFunction,
	types.KindMethod:    types.CapsuleMethod,
	types.KindVariable:  types.CapsuleVariable,
	types.KindConstant:  types.CapsuleConstant,
}

// Clock supplies the current time; satisfied by scan.SystemClock in
// production and a fixed-time fake in tests.
type Clock interface {
	Now() time.Time
}

// Constructor builds capsules out of one file's structural elements.
type Constructor struct {
	clock             Clock
	extractComments   bool
	generateSummaries bool
}

// New builds a Constructor backed by clock for created_at timestamps.
// Comment extraction and summary generation default on, matching
// spec.md §6.2's defaults; callers scope them with WithExtractComments
// and WithGenerateSummaries.
func New(clock Clock) *Constructor {
	return &Constructor{clock: clock, extractComments: true, generateSummaries: true}
}

// WithExtractComments toggles the doc-comment-derived "Undocumented
// public" warning (analysis.extract_comments).
func (c *Constructor) WithExtractComments(v bool) *Constructor {
	c.extractComments = v
	return c
}

// WithGenerateSummaries toggles per-capsule Slogan generation
// (analysis.generate_summaries).
func (c *Constructor) WithGenerateSummaries(v bool) *Constructor {
	c.generateSummaries = v
	return c
}

// Construct filters elements by significance and materializes the ones
// that survive into capsules, deriving their cross-cutting fields.
func (c *Constructor) Construct(filePath string, elements []types.StructuralElement) []*types.Capsule {
	var capsules []*types.Capsule
	for _, el := range elements {
		if !isSignificant(el) {
			continue
		}
		capsules = append(capsules, c.build(filePath, el))
	}
	return capsules
}

func isSignificant(el types.StructuralElement) bool {
	switch el.Kind {
	case types.KindFunction, types.KindMethod, types.KindClass, types.KindStruct,
		types.KindInterface, types.KindEnum, types.KindModule:
		return true
	case types.KindConstant, types.KindVariable:
		return el.Visibility == types.VisibilityPublic
	default:
		return false
	}
}

func (c *Constructor) build(filePath string, el types.StructuralElement) *types.Capsule {
	layer := layerFromPath(filePath)
	now := c.clock.Now()

	cap := &types.Capsule{
		ID:          uuid.New(),
		Name:        el.Name,
		CapsuleType: kindToCapsuleType[el.Kind],
		FilePath:    filePath,
		LineStart:   el.StartLine,
		LineEnd:     el.EndLine,
		Size:        el.EndLine - el.StartLine + 1,
		Complexity:  el.Complexity,
		Layer:       &layer,
		Status:      deriveStatus(el),
		Priority:    derivePriority(el),
		Tags:        []string{strings.ToLower(string(layer))},
		Metadata: map[string]string{
			"signature_refs": signatureRefs(el),
			"param_count":    strconv.Itoa(len(el.Parameters)),
		},
		QualityScore: qualityScore(el.Complexity),
		CreatedAt:   &now,
	}
	if c.generateSummaries {
		slogan := fmt.Sprintf("%s %s", el.Kind, el.Name)
		cap.Slogan = &slogan
	}
	cap.Warnings = warningsFor(el, cap.ID, c.extractComments)
	return cap
}

func derivePriority(el types.StructuralElement) types.Priority {
	switch el.Kind {
	case types.KindClass, types.KindInterface, types.KindModule:
		return types.PriorityHigh
	case types.KindStruct, types.KindEnum:
		return types.PriorityMedium
	case types.KindFunction, types.KindMethod:
		if el.Visibility == types.VisibilityPublic {
			return types.PriorityMedium
		}
		return types.PriorityLow
	default:
		return types.PriorityLow
	}
}

func deriveStatus(el types.StructuralElement) types.Status {
	lower := strings.ToLower(el.Content)
	switch {
	case strings.Contains(lower, "deprecated"):
		return types.StatusDeprecated
	case strings.Contains(lower, "todo") || strings.Contains(lower, "fixme"):
		return types.StatusPending
	case el.Visibility == types.VisibilityPrivate:
		return types.StatusHidden
	default:
		return types.StatusActive
	}
}

func layerFromPath(filePath string) types.Layer {
	dir := filepath.Base(filepath.Dir(filePath))
	if dir == "." || dir == string(filepath.Separator) || dir == "" {
		return types.LayerCore
	}
	if layer, ok := layerByDir[strings.ToLower(dir)]; ok {
		return layer
	}
	return types.LayerOther
}

func qualityScore(complexity uint32) float64 {
	if complexity > 10 {
		return 0.5
	}
	return 0.8
}

func hasDocComment(content string) bool {
	return strings.Contains(content, "///") || strings.Contains(content, "/**")
}

func warningsFor(el types.StructuralElement, capsuleID uuid.UUID, extractComments bool) []types.Warning {
	var warnings []types.Warning
	add := func(level types.Priority, message, category string) {
		warnings = append(warnings, types.Warning{Level: level, Message: message, Category: category, CapsuleID: &capsuleID})
	}

	if el.Complexity > 10 {
		add(types.PriorityHigh, "High complexity", "complexity")
	}
	size := el.EndLine - el.StartLine + 1
	if size > 100 {
		add(types.PriorityMedium, "Large size", "size")
	}
	if extractComments && el.Visibility == types.VisibilityPublic && !hasDocComment(el.Content) {
		add(types.PriorityLow, "Undocumented public", "documentation")
	}
	lower := strings.ToLower(el.Content)
	if strings.Contains(lower, "todo") {
		add(types.PriorityLow, "Contains TODO", "maintenance")
	}
	if strings.Contains(lower, "fixme") {
		add(types.PriorityMedium, "Contains FIXME", "maintenance")
	}
	if len(el.Content) > 500 && hasRepeatedLines(el.Content) {
		add(types.PriorityMedium, "Possible duplication", "duplication")
	}

	return warnings
}

// hasRepeatedLines implements spec.md's lightweight heuristic: any
// trimmed, >20-char line repeating 4 or more times within the content.
func hasRepeatedLines(content string) bool {
	counts := map[string]int{}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= 20 {
			continue
		}
		counts[trimmed]++
		if counts[trimmed] >= 4 {
			return true
		}
	}
	return false
}

// signatureRefs extracts candidate type-name tokens from a declaration's
// parameters and return type, used by the graph builder's "declared
// dependency" pass to resolve same-name capsule references (spec.md §4.3
// pass 1). This is a same-name heuristic, not cross-file resolution.
func signatureRefs(el types.StructuralElement) string {
	var tokens []string
	seen := map[string]bool{}
	addToken := func(raw string) {
		for _, word := range identifierWords(raw) {
			if !seen[word] {
				seen[word] = true
				tokens = append(tokens, word)
			}
		}
	}
	for _, p := range el.Parameters {
		addToken(p)
	}
	if el.ReturnType != nil {
		addToken(*el.ReturnType)
	}
	return strings.Join(tokens, ",")
}

func identifierWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			word := cur.String()
			if !isKeywordOrNumber(word) {
				words = append(words, word)
			}
			cur.Reset()
		}
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || (cur.Len() > 0 && r >= '0' && r <= '9') {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

func isKeywordOrNumber(word string) bool {
	switch word {
	case "self", "this", "const", "let", "var", "mut", "pub", "int", "string", "bool", "float", "void":
		return true
	}
	if _, err := strconv.Atoi(word); err == nil {
		return true
	}
	return false
}

// Optimize runs the three post-construction passes from spec.md §4.2:
// dedupe on (name, file_path, line_start), merge small capsules sharing
// file_path/layer/compatible kind, then sort by priority.
func Optimize(capsules []*types.Capsule) []*types.Capsule {
	deduped := dedupe(capsules)
	merged := mergeSmall(deduped)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Priority < merged[j].Priority
	})
	return merged
}

func dedupe(capsules []*types.Capsule) []*types.Capsule {
	type key struct {
		name      string
		filePath  string
		lineStart int
	}
	seen := map[key]bool{}
	var result []*types.Capsule
	for _, cap := range capsules {
		k := key{cap.Name, cap.FilePath, cap.LineStart}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, cap)
	}
	return result
}

func isSmall(cap *types.Capsule) bool {
	if cap.Size < 10 || cap.Complexity < 3 {
		return true
	}
	switch cap.CapsuleType {
	case types.CapsuleConstant, types.CapsuleVariable:
		return true
	}
	return false
}

func mergeFamily(t types.CapsuleType) string {
	switch t {
	case types.CapsuleConstant, types.CapsuleVariable:
		return "const_var"
	case types.CapsuleFunction, types.CapsuleMethod:
		return "func_method"
	default:
		return string(t)
	}
}

func mergeSmall(capsules []*types.Capsule) []*types.Capsule {
	type bucketKey struct {
		filePath string
		layer    types.Layer
		family   string
	}
	buckets := map[bucketKey][]*types.Capsule{}
	var order []bucketKey
	var result []*types.Capsule

	for _, cap := range capsules {
		if !isSmall(cap) {
			result = append(result, cap)
			continue
		}
		layer := types.LayerOther
		if cap.Layer != nil {
			layer = *cap.Layer
		}
		k := bucketKey{filePath: cap.FilePath, layer: layer, family: mergeFamily(cap.CapsuleType)}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], cap)
	}

	for _, k := range order {
		group := buckets[k]
		if len(group) < 2 {
			result = append(result, group...)
			continue
		}
		merged, deprecated := mergeGroup(group)
		result = append(result, merged)
		result = append(result, deprecated...)
	}

	return result
}

func mergeGroup(group []*types.Capsule) (*types.Capsule, []*types.Capsule) {
	names := make([]string, 0, len(group))
	lineStart, lineEnd := group[0].LineStart, group[0].LineEnd
	var complexitySum uint32
	var warnings []types.Warning
	var tags []string
	tagSeen := map[string]bool{}
	var deps, dependents []uuid.UUID

	for _, cap := range group {
		names = append(names, cap.Name)
		if cap.LineStart < lineStart {
			lineStart = cap.LineStart
		}
		if cap.LineEnd > lineEnd {
			lineEnd = cap.LineEnd
		}
		complexitySum += cap.Complexity
		warnings = append(warnings, cap.Warnings...)
		for _, t := range cap.Tags {
			if !tagSeen[t] {
				tagSeen[t] = true
				tags = append(tags, t)
			}
		}
		deps = append(deps, cap.Dependencies...)
		dependents = append(dependents, cap.Dependents...)
	}

	priority := types.PriorityLow
	switch {
	case complexitySum > 15:
		priority = types.PriorityHigh
	case complexitySum > 8:
		priority = types.PriorityMedium
	}

	merged := &types.Capsule{
		ID:           uuid.New(),
		Name:         "merged_" + strings.Join(names, "_"),
		CapsuleType:  group[0].CapsuleType,
		FilePath:     group[0].FilePath,
		LineStart:    lineStart,
		LineEnd:      lineEnd,
		Size:         lineEnd - lineStart + 1,
		Complexity:   complexitySum,
		Dependencies: deps,
		Dependents:   dependents,
		Layer:        group[0].Layer,
		Warnings:     warnings,
		Status:       types.StatusActive,
		Priority:     priority,
		Tags:         tags,
		Metadata:     map[string]string{},
		QualityScore: qualityScore(complexitySum),
		CreatedAt:    group[0].CreatedAt,
	}

	mergedID := merged.ID
	deprecated := make([]*types.Capsule, 0, len(group))
	for _, cap := range group {
		c := cap
		c.Status = types.StatusDeprecated
		c.Warnings = append(c.Warnings, types.Warning{
			Level:     types.PriorityLow,
			Message:   fmt.Sprintf("merged into %s", merged.Name),
			Category:  "optimization",
			CapsuleID: &mergedID,
		})
		deprecated = append(deprecated, c)
	}

	return merged, deprecated
}
