package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/google/uuid"

	"github.com/archlens-go/archlens/pkg/types"
)

// treeSitterStrategy is the optional grammar tier for JavaScript, TypeScript
// and TSX (spec.md §4.1). It must agree with the regex fallback on element
// semantics and complexity scoring for the same input — only the extraction
// mechanism differs.
type treeSitterStrategy struct {
	jsParser  *sitter.Parser
	tsParser  *sitter.Parser
	tsxParser *sitter.Parser
}

func newTreeSitterStrategy() *treeSitterStrategy {
	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())

	tsxParser := sitter.NewParser()
	tsxParser.SetLanguage(tsx.GetLanguage())

	return &treeSitterStrategy{jsParser: jsParser, tsParser: tsParser, tsxParser: tsxParser}
}

func (s *treeSitterStrategy) parserFor(path string) *sitter.Parser {
	switch {
	case strings.HasSuffix(path, ".tsx"):
		return s.tsxParser
	case strings.HasSuffix(path, ".ts"):
		return s.tsParser
	default:
		return s.jsParser
	}
}

func (s *treeSitterStrategy) Parse(path, content string) []types.StructuralElement {
	parser := s.parserFor(path)
	source := []byte(content)

	tree, err := parser.ParseCtx(nil, nil, source)
	if err != nil || tree == nil {
		return []types.StructuralElement{}
	}
	defer tree.Close()

	var elements []types.StructuralElement
	walkNode(tree.RootNode(), source, nil, &elements)
	return elements
}

// walkNode recursively descends the tree, emitting a StructuralElement for
// every declaration/import/export node and setting its ParentID to the
// nearest enclosing element; Children is not filled.
func walkNode(node *sitter.Node, source []byte, parentID *uuid.UUID, out *[]types.StructuralElement) {
	if node == nil {
		return
	}

	kind, name, ok := classifyNode(node, source)
	var thisID *uuid.UUID
	if ok {
		el := buildElement(node, source, kind, name)
		if parentID != nil {
			el.ParentID = parentID
		}
		*out = append(*out, el)
		id := el.ID
		thisID = &id
	}

	childParent := parentID
	if thisID != nil {
		childParent = thisID
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		walkNode(node.Child(i), source, childParent, out)
	}

	if thisID != nil && parentID == nil {
		// top-level declarations stay parentless; nothing further to link.
		_ = childParent
	}
}

func classifyNode(node *sitter.Node, source []byte) (types.ElementKind, string, bool) {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration", "method_definition":
		return types.KindFunction, nodeFieldText(node, "name", source), true
	case "class_declaration":
		return types.KindClass, nodeFieldText(node, "name", source), true
	case "interface_declaration":
		return types.KindInterface, nodeFieldText(node, "name", source), true
	case "enum_declaration":
		return types.KindEnum, nodeFieldText(node, "name", source), true
	case "variable_declarator":
		return types.KindVariable, nodeFieldText(node, "name", source), true
	case "import_statement":
		return types.KindImport, importSourceText(node, source), true
	case "export_statement":
		return types.KindExport, "", true
	default:
		return "", "", false
	}
}

func nodeFieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(source)
}

func importSourceText(node *sitter.Node, source []byte) string {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return ""
	}
	return strings.Trim(sourceNode.Content(source), `"'`)
}

func buildElement(node *sitter.Node, source []byte, kind types.ElementKind, name string) types.StructuralElement {
	content := node.Content(source)
	startPoint := node.StartPoint()
	endPoint := node.EndPoint()

	var params []string
	var returnType *string
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		params = splitParamsNode(paramsNode, source)
	}
	if returnNode := node.ChildByFieldName("return_type"); returnNode != nil {
		rt := strings.TrimPrefix(returnNode.Content(source), ":")
		rt = strings.TrimSpace(rt)
		returnType = &rt
	}

	visibility := types.VisibilityPublic
	if kind != types.KindImport && kind != types.KindExport {
		if !isExported(node) {
			visibility = types.VisibilityPrivate
		}
	}

	return types.StructuralElement{
		ID:         uuid.New(),
		Name:       name,
		Kind:       kind,
		Content:    content,
		StartLine:  int(startPoint.Row) + 1,
		EndLine:    int(endPoint.Row) + 1,
		StartCol:   int(startPoint.Column),
		EndCol:     int(endPoint.Column),
		Complexity: elementComplexity(content),
		Visibility: visibility,
		Parameters: params,
		ReturnType: returnType,
		Metadata:   map[string]string{},
	}
}

func splitParamsNode(node *sitter.Node, source []byte) []string {
	var params []string
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		switch child.Type() {
		case "(", ")", ",":
			continue
		default:
			text := strings.TrimSpace(child.Content(source))
			if text != "" {
				params = append(params, text)
			}
		}
	}
	if params == nil {
		params = []string{}
	}
	return params
}

// isExported reports whether a declaration node is wrapped in (or is a
// direct child of) an export_statement — tree-sitter's JS/TS grammars nest
// the declaration as a child of the export node rather than flagging it.
func isExported(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	return parent.Type() == "export_statement"
}
