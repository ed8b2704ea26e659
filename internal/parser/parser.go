// Package parser implements the two-tier structural parser (spec.md
// §4.1): a mandatory regex fallback per language, and an optional
// grammar-based tier (tree-sitter) for JavaScript/TypeScript/TSX.
//
// The composite is a map from language tag to strategy, per spec.md §9 —
// new languages are added by registering a strategy, never by growing a
// switch at every call site.
package parser

import (
	"sync"

	"github.com/archlens-go/archlens/pkg/types"
)

// Strategy parses one file's content into structural elements.
type Strategy interface {
	Parse(path, content string) []types.StructuralElement
}

// cacheKey is the memoization key: spec.md requires the cache never serve
// stale entries across content changes, so the content length is part of
// the key alongside the path.
type cacheKey struct {
	path   string
	length int
}

// Cache is the process-local, request-scoped parser cache keyed by
// (path, content length). Safe for concurrent use by a worker pool: reads
// take an RLock, writes take the exclusive Lock (spec.md §5).
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]types.StructuralElement
}

// NewCache returns an empty cache. Callers should scope one Cache per
// top-level Analyze call — it must not be a package-level global.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]types.StructuralElement)}
}

func (c *Cache) get(path, content string) ([]types.StructuralElement, bool) {
	key := cacheKey{path: path, length: len(content)}
	c.mu.RLock()
	defer c.mu.RUnlock()
	elements, ok := c.entries[key]
	return elements, ok
}

func (c *Cache) put(path, content string, elements []types.StructuralElement) {
	key := cacheKey{path: path, length: len(content)}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = elements
}

// Parser is the two-tier composite. Grammar strategies are optional and
// registered per language; the regex strategy always covers every
// language tag as a fallback.
type Parser struct {
	cache     *Cache
	grammars  map[types.LanguageTag]Strategy
	fallbacks map[types.LanguageTag]Strategy
}

// New builds a parser with the default regex fallback set and, when
// available, the tree-sitter grammar tier for JS/TS/TSX.
func New() *Parser {
	p := &Parser{
		cache:     NewCache(),
		grammars:  make(map[types.LanguageTag]Strategy),
		fallbacks: make(map[types.LanguageTag]Strategy),
	}
	for _, lang := range []types.LanguageTag{
		types.LanguageRust, types.LanguageJavaScript, types.LanguageTypeScript,
		types.LanguagePython, types.LanguageJava, types.LanguageGo, types.LanguageC, types.LanguageCpp,
	} {
		p.fallbacks[lang] = newRegexStrategy(lang)
	}

	ts := newTreeSitterStrategy()
	if ts != nil {
		p.grammars[types.LanguageJavaScript] = ts
		p.grammars[types.LanguageTypeScript] = ts
	}
	return p
}

// WithCache swaps in an external cache (e.g. one shared by a worker pool).
func (p *Parser) WithCache(cache *Cache) *Parser {
	p.cache = cache
	return p
}

// Parse extracts structural elements from one file's content. Unrecognized
// languages (including Other tags) return an empty sequence — parsing
// never fails on unsupported input. Results are memoized by (path,
// len(content)).
func (p *Parser) Parse(path, content string, language types.LanguageTag) []types.StructuralElement {
	if cached, ok := p.cache.get(path, content); ok {
		return cached
	}

	var elements []types.StructuralElement
	if strategy, ok := p.grammars[language]; ok {
		elements = strategy.Parse(path, content)
	} else if strategy, ok := p.fallbacks[language]; ok {
		elements = strategy.Parse(path, content)
	} else {
		elements = []types.StructuralElement{}
	}

	p.cache.put(path, content, elements)
	return elements
}
