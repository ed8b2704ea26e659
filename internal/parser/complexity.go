package parser

import (
	"regexp"
	"strings"
)

// branchingTokens is the shared catalog from spec.md §4.1 / §4.4: every
// token that counts as a decision point, for both the per-element parser
// complexity and the enricher's cyclomatic complexity.
var branchingTokens = []string{
	"if", "else", "for", "while", "match", "switch", "case", "loop",
	"try", "catch", "except", "&&", "||", "??", "elif", "and", "or",
}

var wordTokenPattern = regexp.MustCompile(`\b(if|else|for|while|match|switch|case|loop|try|catch|except|elif|and|or)\b`)
var symbolTokenPattern = regexp.MustCompile(`&&|\|\||\?\?`)

// countBranchingTokens counts occurrences of the shared branching/looping
// catalog in content, matching word tokens on boundaries and symbol
// tokens literally.
func countBranchingTokens(content string) int {
	count := len(wordTokenPattern.FindAllString(content, -1))
	count += len(symbolTokenPattern.FindAllString(content, -1))
	return count
}

// maxBracketNestingDepth returns the deepest nesting of {}, (), [] brackets
// reached anywhere in content.
func maxBracketNestingDepth(content string) int {
	depth, max := 0, 0
	for _, r := range content {
		switch r {
		case '{', '(', '[':
			depth++
			if depth > max {
				max = depth
			}
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return max
}

// countLines returns the number of newline-delimited lines in content,
// counting a trailing partial line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// elementComplexity computes the per-element complexity per spec.md
// §4.1: base 1, plus branching-token count, plus lines/10 (floor), plus
// twice the maximum bracket nesting depth. Both parser tiers must agree
// on this number given the same content.
func elementComplexity(content string) uint32 {
	base := 1
	tokens := countBranchingTokens(content)
	lineBonus := countLines(content) / 10
	nestingBonus := 2 * maxBracketNestingDepth(content)
	return uint32(base + tokens + lineBonus + nestingBonus)
}
