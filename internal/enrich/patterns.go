package enrich

import (
	"strings"

	"github.com/archlens-go/archlens/pkg/types"
)

// patternRule is one confidence-weighted signal for a design pattern
// (spec.md §4.4). matcher receives the capsule name and its lowercased
// span content.
type patternRule struct {
	weight  float64
	matcher func(name, lowerSpan string) bool
}

type patternDef struct {
	name  string
	rules []patternRule
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var patternDefs = []patternDef{
	{
		name: "Singleton",
		rules: []patternRule{
			{0.4, func(_, span string) bool { return containsAny(span, "private constructor", "fn new() -> self", "private fn new") }},
			{0.5, func(_, span string) bool { return containsAny(span, "static instance", "instance: option", "static mut instance") }},
			{0.6, func(_, span string) bool { return containsAny(span, "get_instance", "getinstance") }},
		},
	},
	{
		name: "Factory",
		rules: []patternRule{
			{0.3, func(name, _ string) bool { return containsAny(strings.ToLower(name), "create", "make", "build") }},
			{0.3, func(_, span string) bool { return containsAny(span, "fn create", "function create", "def create") }},
			{0.3, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "factory") }},
		},
	},
	{
		name: "Observer",
		rules: []patternRule{
			{0.5, func(_, span string) bool { return containsAny(span, "subscribe", "unsubscribe") }},
			{0.4, func(_, span string) bool { return containsAny(span, "notify", "on_change", "onchange") }},
			{0.4, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "observer") }},
		},
	},
	{
		name: "Strategy",
		rules: []patternRule{
			{0.4, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "strategy") }},
			{0.4, func(_, span string) bool { return containsAny(span, "interface strategy", "trait strategy") }},
			{0.3, func(_, span string) bool { return containsAny(span, "execute(", "apply(") }},
		},
	},
	{
		name: "Command",
		rules: []patternRule{
			{0.4, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "command") }},
			{0.4, func(_, span string) bool { return containsAny(span, "execute()", "undo()") }},
			{0.3, func(_, span string) bool { return containsAny(span, "fn execute", "def execute") }},
		},
	},
	{
		name: "Builder",
		rules: []patternRule{
			{0.4, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "builder") }},
			{0.4, func(_, span string) bool { return containsAny(span, "with_", "set_") }},
			{0.3, func(_, span string) bool { return containsAny(span, "build()", "fn build", "def build") }},
		},
	},
	{
		name: "Adapter",
		rules: []patternRule{
			{0.5, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "adapter") }},
			{0.4, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "wrapper") }},
			{0.3, func(_, span string) bool { return containsAny(span, "implements", "impl ") }},
		},
	},
	{
		name: "Repository",
		rules: []patternRule{
			{0.6, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "repository") }},
			{0.4, func(_, span string) bool { return containsAny(span, "find_by", "findby", "save(", "delete(") }},
			{0.4, func(_, span string) bool { return containsAny(span, "insert(", "update(", "select ") }},
		},
	},
	{
		name: "Service",
		rules: []patternRule{
			{0.5, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "service") }},
			{0.3, func(_, span string) bool { return containsAny(span, "handle(", "process(", "execute(") }},
		},
	},
	{
		name: "Controller",
		rules: []patternRule{
			{0.5, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "controller") }},
			{0.4, func(_, span string) bool { return containsAny(span, "handler(", "route(", "@getmapping", "@postmapping") }},
		},
	},
	{
		name: "Entity",
		rules: []patternRule{
			{0.4, func(name, _ string) bool { return strings.Contains(strings.ToLower(name), "entity") }},
			{0.4, func(_, span string) bool { return containsAny(span, "id: ", "@id", "primary_key") }},
		},
	},
	{
		name: "ValueObject",
		rules: []patternRule{
			{0.4, func(name, _ string) bool { return containsAny(strings.ToLower(name), "value", "vo") }},
			{0.5, func(_, span string) bool { return containsAny(span, "readonly", "const ", "frozen") }},
			{0.3, func(_, span string) bool { return containsAny(span, "equals(", "__eq__", "partialeq") }},
		},
	},
}

func applyPatterns(cap *types.Capsule, span string) {
	lowerSpan := strings.ToLower(span)
	for _, def := range patternDefs {
		var sum float64
		for _, rule := range def.rules {
			if rule.matcher(cap.Name, lowerSpan) {
				sum += rule.weight
			}
		}
		confidence := sum / float64(len(def.rules))
		if confidence > 0.3 {
			cap.Tags = appendUnique(cap.Tags, "pattern:"+def.name)
			cap.Metadata["pattern_confidence_"+def.name] = formatFloat(confidence)
		}
	}
}

func appendUnique(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
