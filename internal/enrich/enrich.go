// Package enrich computes deeper per-capsule quality metrics and detects
// architectural patterns and code smells (spec.md §4.4). Results that
// don't fit the fixed Capsule schema (spec.md §3) are recorded as
// formatted Metadata entries and as tagged Warnings, so the core data
// model never grows fields beyond what §3 defines.
package enrich

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

// wordTokenPattern and symbolTokenPattern mirror the parser's
// branchingTokens catalog (spec.md §4.1/§4.4).
var wordTokenPattern = regexp.MustCompile(`\b(if|else|for|while|match|switch|case|loop|try|catch|except|elif|and|or)\b`)
var symbolTokenPattern = regexp.MustCompile(`&&|\|\||\?\?`)

var docCommentPattern = regexp.MustCompile(`^\s*(///|/\*\*|#:|"""|'''|\*\s)`)

var testMarkers = []string{"#[test]", "test(", "describe(", "it(", "def test_", "@Test"}

// Enrich mutates each capsule in g with quality metrics, pattern tags and
// smell warnings, re-reading the capsule's own line span from
// fileContents (the external file-provider collaborator, spec.md §6).
func Enrich(g *types.CapsuleGraph, fileContents map[string]string) {
	for _, cap := range g.Capsules {
		span := spanFor(cap, fileContents)
		if span == "" {
			continue
		}
		applyQualityMetrics(cap, span)
		applyPatterns(cap, span)
		applySmells(cap, span, fileContents[cap.FilePath])
	}
}

func spanFor(cap *types.Capsule, fileContents map[string]string) string {
	content, ok := fileContents[cap.FilePath]
	if !ok {
		return ""
	}
	lines := strings.Split(content, "\n")
	start, end := cap.LineStart-1, cap.LineEnd
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

func countBranchingTokens(content string) int {
	return len(wordTokenPattern.FindAllString(content, -1)) + len(symbolTokenPattern.FindAllString(content, -1))
}

func applyQualityMetrics(cap *types.Capsule, span string) {
	cyclomatic := 1 + countBranchingTokens(span)
	cognitive := cognitiveComplexity(span)
	lines := strings.Split(span, "\n")
	loc := len(lines)

	docLines := 0
	for _, l := range lines {
		if docCommentPattern.MatchString(l) {
			docLines++
		}
	}
	docRatio := 0.0
	if loc > 0 {
		docRatio = clamp(float64(docLines)/float64(loc), 0, 1)
	}

	coverage := 0.0
	lowerSpan := strings.ToLower(span)
	for _, marker := range testMarkers {
		if strings.Contains(lowerSpan, strings.ToLower(marker)) {
			coverage = 0.8
			break
		}
	}

	debtRatio := technicalDebtRatio(span, lines, cyclomatic)
	maintainability := maintainabilityIndex(loc, cyclomatic)

	cap.Metadata["cyclomatic_complexity"] = strconv.Itoa(cyclomatic)
	cap.Metadata["cognitive_complexity"] = strconv.Itoa(cognitive)
	cap.Metadata["documentation_ratio"] = formatFloat(docRatio)
	cap.Metadata["test_coverage_estimate"] = formatFloat(coverage)
	cap.Metadata["technical_debt_ratio"] = formatFloat(debtRatio)
	cap.Metadata["maintainability_index"] = formatFloat(maintainability)
}

// cognitiveComplexity tracks brace-balance nesting; each if/for/while/
// match/switch adds 1 plus the current nesting level, else adds 1.
func cognitiveComplexity(span string) int {
	nesting := 0
	total := 0
	for _, line := range strings.Split(span, "\n") {
		if wordTokenPattern.MatchString(line) {
			matches := wordTokenPattern.FindAllString(line, -1)
			for _, m := range matches {
				switch strings.ToLower(m) {
				case "else":
					total += 1
				case "if", "for", "while", "match", "switch":
					total += 1 + nesting
				}
			}
		}
		for _, r := range line {
			switch r {
			case '{':
				nesting++
			case '}':
				if nesting > 0 {
					nesting--
				}
			}
		}
	}
	return total
}

func technicalDebtRatio(span string, lines []string, cyclomatic int) float64 {
	lower := strings.ToLower(span)
	todos := strings.Count(lower, "todo")
	fixmes := strings.Count(lower, "fixme")
	hacks := strings.Count(lower, "hack")
	dup := 0
	if hasRepeatedLines(span) {
		dup = 1
	}
	complexityFlag := 0
	if cyclomatic > 10 {
		complexityFlag = 1
	}
	longLines := 0
	for _, l := range lines {
		if len(l) > 120 {
			longLines++
		}
	}
	total := 2*float64(todos) + 3*float64(fixmes) + 4*float64(hacks) + 5*float64(dup) + 3*float64(complexityFlag) + 0.1*float64(longLines)
	return math.Min(1, total/100)
}

func maintainabilityIndex(loc, cyclomatic int) float64 {
	if loc < 1 {
		loc = 1
	}
	value := 171 - 5.2*math.Log(float64(loc)) - 0.23*float64(cyclomatic) - 16.2*math.Log(float64(loc))
	return clamp(value, 0, 100)
}

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

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func applySmells(cap *types.Capsule, span, fileContent string) {
	add := func(message, category string, level types.Priority) {
		capID := cap.ID
		cap.Warnings = append(cap.Warnings, types.Warning{
			Level: level, Message: message, Category: category, CapsuleID: &capID,
		})
	}

	lines := strings.Split(span, "\n")
	isFunctionLike := cap.CapsuleType == types.CapsuleFunction || cap.CapsuleType == types.CapsuleMethod
	isTypeLike := cap.CapsuleType == types.CapsuleClass || cap.CapsuleType == types.CapsuleStruct ||
		cap.CapsuleType == types.CapsuleInterface || cap.CapsuleType == types.CapsuleEnum

	if isFunctionLike && len(lines) > 25 {
		add("Long method", "smell:LongMethod", types.PriorityMedium)
	}
	if paramCount, err := strconv.Atoi(cap.Metadata["param_count"]); err == nil && paramCount > 4 {
		add("Long parameter list", "smell:LongParameterList", types.PriorityMedium)
	}
	if isTypeLike && len(lines) > 200 {
		add("Large class", "smell:LargeClass", types.PriorityMedium)
	}
	if hasRepeatedWindow(lines) {
		add("Duplicated code", "smell:DuplicatedCode", types.PriorityMedium)
	}
	if isFunctionLike && fileContent != "" && isDeadCode(cap.Name, fileContent) {
		add("Dead code", "smell:DeadCode", types.PriorityLow)
	}
	for _, l := range lines {
		if len(l) > 120 {
			add("Long line", "smell:LongLine", types.PriorityLow)
			break
		}
	}
	if maxBraceDepth(span) > 4 {
		add("Deep nesting", "smell:DeepNesting", types.PriorityMedium)
	}
	if hasMagicNumber(span) {
		add("Magic number", "smell:MagicNumber", types.PriorityLow)
	}
	if emptyHandlerPattern.MatchString(span) {
		add("Empty exception handler", "smell:EmptyExceptionHandler", types.PriorityMedium)
	}
	if hardcodedURLPattern.MatchString(span) {
		add("Hardcoded URL", "smell:HardcodedURL", types.PriorityLow)
	}
}

func hasRepeatedWindow(lines []string) bool {
	windows := map[string]int{}
	for i := 0; i+2 < len(lines); i++ {
		window := strings.TrimSpace(lines[i]) + "\n" + strings.TrimSpace(lines[i+1]) + "\n" + strings.TrimSpace(lines[i+2])
		if strings.TrimSpace(window) == "" {
			continue
		}
		windows[window]++
		if windows[window] >= 2 {
			return true
		}
	}
	return false
}

func isDeadCode(name, fileContent string) bool {
	if name == "" {
		return false
	}
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return len(pattern.FindAllString(fileContent, -1)) <= 1
}

func maxBraceDepth(content string) int {
	depth, max := 0, 0
	for _, r := range content {
		switch r {
		case '{':
			depth++
			if depth > max {
				max = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return max
}

var magicNumberPattern = regexp.MustCompile(`\b\d{2,}\b`)
var magicNumberExceptions = map[string]bool{"10": true, "100": true, "1000": true}

func hasMagicNumber(content string) bool {
	for _, m := range magicNumberPattern.FindAllString(content, -1) {
		if !magicNumberExceptions[m] {
			return true
		}
	}
	return false
}

var emptyHandlerPattern = regexp.MustCompile(`(?:catch[^{]*\{\s*\}|except[^:]*:\s*pass\b)`)
var hardcodedURLPattern = regexp.MustCompile(`https?://|localhost`)
