package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/types"
)

// langRules is the per-language regex dialect for the mandatory fallback
// tier (spec.md §4.1). Each rule captures a declaration's name; body
// extent is then resolved by braceBodyEnd (brace languages) or
// indentBodyEnd (Python).
type langRules struct {
	function    *regexp.Regexp // capture group 1 = name
	typeDecl    *regexp.Regexp // capture group 1 = kind keyword, group 2 = name
	importDecl  *regexp.Regexp // capture group 1 = imported module/identifier
	exportDecl  *regexp.Regexp // capture group 1 = exported symbol (may be empty)
	commentLine *regexp.Regexp
	paramsOpen  string // unused; extractParams reads the first parenthesized list
	returnSep   string // "->" or ":" — token preceding the return type span
	indentBased bool   // Python: body delimited by indentation, not braces
	publicKeywords []string

	// typeNameGroup/typeKindGroup index into typeDecl's submatches. Most
	// dialects write "<kind> <name>" (group 1 = kind, group 2 = name); Go
	// writes "type <name> <kind>" and must override these.
	typeNameGroup int
	typeKindGroup int

	// capitalizedVisibility: Go's export convention is the identifier's
	// first letter, not a keyword — checked by name instead of by line.
	capitalizedVisibility bool
}

func (r langRules) nameGroup() int {
	if r.typeNameGroup == 0 {
		return 2
	}
	return r.typeNameGroup
}

func (r langRules) kindGroup() int {
	if r.typeKindGroup == 0 {
		return 1
	}
	return r.typeKindGroup
}

func rulesFor(lang types.LanguageTag) langRules {
	switch lang {
	case types.LanguageRust:
		return langRules{
			function:    regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+(\w+)`),
			typeDecl:    regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(struct|enum|trait)\s+(\w+)`),
			importDecl:  regexp.MustCompile(`^\s*use\s+([\w:]+)`),
			exportDecl:  regexp.MustCompile(`^\s*pub\s+(?:use|mod)\s+(\w+)`),
			commentLine: regexp.MustCompile(`^\s*//`),
			returnSep:   "->",
			publicKeywords: []string{"pub"},
		}
	case types.LanguageGo:
		return langRules{
			function:    regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?(\w+)`),
			typeDecl:    regexp.MustCompile(`^\s*type\s+(\w+)\s+(struct|interface)\b`),
			importDecl:  regexp.MustCompile(`^\s*"([^"]+)"\s*$|^\s*import\s+"([^"]+)"`),
			exportDecl:  nil,
			commentLine: regexp.MustCompile(`^\s*//`),
			returnSep:   "",
			typeNameGroup: 1,
			typeKindGroup: 2,
			capitalizedVisibility: true,
		}
	case types.LanguageJavaScript, types.LanguageTypeScript:
		return langRules{
			function:    regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s+(\w+)`),
			typeDecl:    regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(class|interface|enum)\s+(\w+)`),
			importDecl:  regexp.MustCompile(`^\s*import\s+.*?\bfrom\s+['"]([^'"]+)['"]`),
			exportDecl:  regexp.MustCompile(`^\s*export\s+(?:default\s+)?(?:const|let|var|function|class)?\s*(\w+)?`),
			commentLine: regexp.MustCompile(`^\s*//`),
			returnSep:   ":",
			publicKeywords: []string{"export"},
		}
	case types.LanguagePython:
		return langRules{
			function:    regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)`),
			typeDecl:    regexp.MustCompile(`^\s*(class)\s+(\w+)`),
			importDecl:  regexp.MustCompile(`^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`),
			exportDecl:  nil,
			commentLine: regexp.MustCompile(`^\s*#`),
			returnSep:   "->",
			indentBased: true,
		}
	case types.LanguageJava:
		return langRules{
			function:    regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static\s+)?(?:final\s+)?[\w<>\[\],\s]+?\s+(\w+)\s*\([^;]*\)\s*\{?\s*$`),
			typeDecl:    regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static\s+|final\s+|abstract\s+)*(class|interface|enum)\s+(\w+)`),
			importDecl:  regexp.MustCompile(`^\s*import\s+([\w.]+);`),
			exportDecl:  nil,
			commentLine: regexp.MustCompile(`^\s*//`),
			returnSep:   "",
			publicKeywords: []string{"public"},
		}
	case types.LanguageC, types.LanguageCpp:
		return langRules{
			function:    regexp.MustCompile(`^\s*(?:static\s+)?[\w:<>\*&,\s]+?\s[\*&]?(\w+)\s*\([^;{]*\)\s*\{?\s*$`),
			typeDecl:    regexp.MustCompile(`^\s*(struct|class|enum)\s+(\w+)`),
			importDecl:  regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`),
			exportDecl:  nil,
			commentLine: regexp.MustCompile(`^\s*//`),
			returnSep:   "",
		}
	default:
		return langRules{
			function:    regexp.MustCompile(`^\s*function\s+(\w+)`),
			typeDecl:    regexp.MustCompile(`^\s*(class)\s+(\w+)`),
			importDecl:  regexp.MustCompile(`^\s*import\s+(\w+)`),
			commentLine: regexp.MustCompile(`^\s*//`),
		}
	}
}

// regexStrategy is the mandatory fallback parser tier for one language.
type regexStrategy struct {
	lang  types.LanguageTag
	rules langRules
}

func newRegexStrategy(lang types.LanguageTag) *regexStrategy {
	return &regexStrategy{lang: lang, rules: rulesFor(lang)}
}

func (s *regexStrategy) Parse(path, content string) []types.StructuralElement {
	if content == "" {
		return []types.StructuralElement{}
	}
	lines := strings.Split(content, "\n")
	var elements []types.StructuralElement

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if s.rules.commentLine != nil && s.rules.commentLine.MatchString(line) {
			continue
		}

		// Declarations are matched by their header line only; the scan
		// never skips over a matched body so that nested declarations
		// (e.g. a method inside a class) are still visited independently.
		if el, _, ok := s.matchFunction(lines, i); ok {
			elements = append(elements, el)
			continue
		}
		if el, _, ok := s.matchType(lines, i); ok {
			elements = append(elements, el)
			continue
		}
		if el, ok := s.matchImport(line, i); ok {
			elements = append(elements, el)
			continue
		}
		if el, ok := s.matchExport(line, i); ok {
			elements = append(elements, el)
			continue
		}
	}

	return elements
}

func (s *regexStrategy) matchFunction(lines []string, startIdx int) (types.StructuralElement, int, bool) {
	if s.rules.function == nil {
		return types.StructuralElement{}, 0, false
	}
	match := s.rules.function.FindStringSubmatch(lines[startIdx])
	if match == nil {
		return types.StructuralElement{}, 0, false
	}
	name := match[1]
	if name == "" {
		return types.StructuralElement{}, 0, false
	}

	endIdx := s.bodyEnd(lines, startIdx)
	body := strings.Join(lines[startIdx:endIdx+1], "\n")

	params := extractParams(body)
	returnType := extractReturnType(lines[startIdx], s.rules.returnSep)

	el := types.StructuralElement{
		ID:         uuid.New(),
		Name:       name,
		Kind:       types.KindFunction,
		Content:    body,
		StartLine:  startIdx + 1,
		EndLine:    endIdx + 1,
		Complexity: elementComplexity(body),
		Visibility: s.rules.visibility(name, lines[startIdx]),
		Parameters: params,
		ReturnType: returnType,
		Metadata:   map[string]string{},
	}
	return el, endIdx - startIdx + 1, true
}

func (s *regexStrategy) matchType(lines []string, startIdx int) (types.StructuralElement, int, bool) {
	if s.rules.typeDecl == nil {
		return types.StructuralElement{}, 0, false
	}
	match := s.rules.typeDecl.FindStringSubmatch(lines[startIdx])
	if match == nil {
		return types.StructuralElement{}, 0, false
	}
	name := match[s.rules.nameGroup()]
	kind := kindFromKeyword(match[s.rules.kindGroup()])
	if name == "" {
		return types.StructuralElement{}, 0, false
	}

	endIdx := s.bodyEnd(lines, startIdx)
	body := strings.Join(lines[startIdx:endIdx+1], "\n")

	el := types.StructuralElement{
		ID:         uuid.New(),
		Name:       name,
		Kind:       kind,
		Content:    body,
		StartLine:  startIdx + 1,
		EndLine:    endIdx + 1,
		Complexity: elementComplexity(body),
		Visibility: s.rules.visibility(name, lines[startIdx]),
		Parameters: []string{},
		Metadata:   map[string]string{},
	}
	return el, endIdx - startIdx + 1, true
}

func (s *regexStrategy) matchImport(line string, idx int) (types.StructuralElement, bool) {
	if s.rules.importDecl == nil {
		return types.StructuralElement{}, false
	}
	match := s.rules.importDecl.FindStringSubmatch(line)
	if match == nil {
		return types.StructuralElement{}, false
	}
	name := firstNonEmpty(match[1:])
	if name == "" {
		return types.StructuralElement{}, false
	}
	return types.StructuralElement{
		ID:         uuid.New(),
		Name:       name,
		Kind:       types.KindImport,
		Content:    line,
		StartLine:  idx + 1,
		EndLine:    idx + 1,
		Complexity: 1,
		Visibility: types.VisibilityPublic,
		Parameters: []string{},
		Metadata:   map[string]string{},
	}, true
}

func (s *regexStrategy) matchExport(line string, idx int) (types.StructuralElement, bool) {
	if s.rules.exportDecl == nil {
		return types.StructuralElement{}, false
	}
	// Avoid double-counting: export of a function/class/type is already
	// captured by matchFunction/matchType on the same line for JS/TS.
	if s.rules.function != nil && s.rules.function.MatchString(line) {
		return types.StructuralElement{}, false
	}
	if s.rules.typeDecl != nil && s.rules.typeDecl.MatchString(line) {
		return types.StructuralElement{}, false
	}
	match := s.rules.exportDecl.FindStringSubmatch(line)
	if match == nil {
		return types.StructuralElement{}, false
	}
	name := ""
	if len(match) > 1 {
		name = match[1]
	}
	if name == "" {
		return types.StructuralElement{}, false
	}
	return types.StructuralElement{
		ID:         uuid.New(),
		Name:       name,
		Kind:       types.KindExport,
		Content:    line,
		StartLine:  idx + 1,
		EndLine:    idx + 1,
		Complexity: 1,
		Visibility: types.VisibilityPublic,
		Parameters: []string{},
		Metadata:   map[string]string{},
	}, true
}

// bodyEnd resolves the last line of the declaration starting at startIdx:
// brace balance for brace languages, indentation for Python. Truncates
// at end-of-file if the definition is unterminated (spec.md §4.1 edge case).
func (s *regexStrategy) bodyEnd(lines []string, startIdx int) int {
	if s.rules.indentBased {
		return indentBodyEnd(lines, startIdx)
	}
	return braceBodyEnd(lines, startIdx)
}

func braceBodyEnd(lines []string, startIdx int) int {
	depth := 0
	seenOpen := false
	for i := startIdx; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				seenOpen = true
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
		if seenOpen && depth == 0 {
			return i
		}
		// No braces at all (e.g. a one-line declaration ending in ';'):
		// stop at the first line that ends the statement.
		if !seenOpen && strings.Contains(lines[i], ";") {
			return i
		}
	}
	return len(lines) - 1
}

func indentBodyEnd(lines []string, startIdx int) int {
	baseIndent := indentOf(lines[startIdx])
	last := startIdx
	for i := startIdx + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= baseIndent {
			break
		}
		last = i
	}
	return last
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 8
		} else {
			break
		}
	}
	return n
}

var paramsPattern = regexp.MustCompile(`\(([^()]*)\)`)

func extractParams(declHead string) []string {
	match := paramsPattern.FindStringSubmatch(declHead)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return []string{}
	}
	parts := strings.Split(match[1], ",")
	params := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			params = append(params, p)
		}
	}
	return params
}

func extractReturnType(line, sep string) *string {
	if sep == "" {
		return nil
	}
	idx := strings.LastIndex(line, sep)
	if idx == -1 {
		return nil
	}
	rest := strings.TrimSpace(line[idx+len(sep):])
	rest = strings.TrimSuffix(rest, "{")
	rest = strings.TrimSuffix(rest, ";")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	return &rest
}

func (r langRules) visibility(name, line string) types.Visibility {
	if r.capitalizedVisibility {
		if name != "" && unicode.IsUpper([]rune(name)[0]) {
			return types.VisibilityPublic
		}
		return types.VisibilityPrivate
	}

	trimmed := strings.TrimSpace(line)
	for _, kw := range r.publicKeywords {
		if strings.HasPrefix(trimmed, kw+" ") || strings.HasPrefix(trimmed, kw+"(") {
			return types.VisibilityPublic
		}
	}
	if len(r.publicKeywords) == 0 {
		return types.VisibilityPublic
	}
	return types.VisibilityPrivate
}

func kindFromKeyword(keyword string) types.ElementKind {
	switch keyword {
	case "struct":
		return types.KindStruct
	case "enum":
		return types.KindEnum
	case "interface":
		return types.KindInterface
	case "trait":
		return types.KindInterface
	case "class":
		return types.KindClass
	default:
		return types.KindOther
	}
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
