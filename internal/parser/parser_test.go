package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens-go/archlens/pkg/types"
)

func TestParser_RegexFallback_Rust(t *testing.T) {
	content := `pub struct Widget {
    name: String,
}

pub fn render(w: &Widget) -> String {
    if w.name.is_empty() {
        return String::new();
    }
    w.name.clone()
}
`
	p := New()
	elements := p.Parse("widget.rs", content, types.LanguageRust)

	require.NotEmpty(t, elements)

	var fn, ty *types.StructuralElement
	for i := range elements {
		switch elements[i].Name {
		case "render":
			fn = &elements[i]
		case "Widget":
			ty = &elements[i]
		}
	}

	require.NotNil(t, ty)
	assert.Equal(t, types.KindStruct, ty.Kind)
	assert.Equal(t, types.VisibilityPublic, ty.Visibility)

	require.NotNil(t, fn)
	assert.Equal(t, types.KindFunction, fn.Kind)
	assert.Equal(t, types.VisibilityPublic, fn.Visibility)
	require.NotNil(t, fn.ReturnType)
	assert.Equal(t, "String", *fn.ReturnType)
	assert.GreaterOrEqual(t, fn.Complexity, uint32(2))
}

func TestParser_RegexFallback_Python_IndentBody(t *testing.T) {
	content := `class Service:
    def run(self):
        for item in self.items:
            if item.active:
                print(item)
        return True

def top_level():
    return 1
`
	p := New()
	elements := p.Parse("service.py", content, types.LanguagePython)

	names := map[string]types.StructuralElement{}
	for _, el := range elements {
		names[el.Name] = el
	}

	require.Contains(t, names, "Service")
	require.Contains(t, names, "run")
	require.Contains(t, names, "top_level")

	run := names["run"]
	assert.Equal(t, types.KindFunction, run.Kind)
	assert.Less(t, run.EndLine, names["top_level"].StartLine)
}

func TestParser_Cache_MemoizesByPathAndLength(t *testing.T) {
	cache := NewCache()
	p := New().WithCache(cache)

	content := "func main() {}\n"
	first := p.Parse("main.go", content, types.LanguageGo)
	cached, ok := cache.get("main.go", content)

	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestParser_UnknownLanguage_ReturnsEmpty(t *testing.T) {
	p := New()
	elements := p.Parse("data.toml", "[table]\nkey = 1\n", types.OtherLanguage("toml"))
	assert.Empty(t, elements)
}

func TestParser_EmptyContent_ReturnsEmpty(t *testing.T) {
	p := New()
	elements := p.Parse("empty.go", "", types.LanguageGo)
	assert.Empty(t, elements)
}

func TestComplexity_MatchesSpecFormula(t *testing.T) {
	content := "if (a && b) {\n  for (;;) {\n    do();\n  }\n}\n"
	got := elementComplexity(content)
	// base 1 + tokens(if, &&, for = 3) + lines(6)/10 (0) + 2*maxDepth(3) = 1+3+0+6 = 10
	assert.Equal(t, uint32(10), got)
}
