// Package types defines the shared data model for the architectural
// analysis pipeline: structural elements, capsules, relations, warnings
// and the capsule graph that carries them between stages.
package types

import (
	"time"

	"github.com/google/uuid"
)

// LanguageTag identifies the source language of a file.
type LanguageTag string

const (
	LanguageRust       LanguageTag = "rust"
	LanguageJavaScript LanguageTag = "javascript"
	LanguageTypeScript LanguageTag = "typescript"
	LanguagePython     LanguageTag = "python"
	LanguageJava       LanguageTag = "java"
	LanguageGo         LanguageTag = "go"
	LanguageC          LanguageTag = "c"
	LanguageCpp        LanguageTag = "cpp"
)

// OtherLanguage builds the catch-all tag for an unrecognized extension.
func OtherLanguage(ext string) LanguageTag {
	return LanguageTag("other:" + ext)
}

// IsOther reports whether the tag is the catch-all form produced by OtherLanguage.
func (l LanguageTag) IsOther() bool {
	return len(l) > 6 && l[:6] == "other:"
}

// ElementKind enumerates the structural element kinds the parser emits.
type ElementKind string

const (
	KindModule    ElementKind = "Module"
	KindClass     ElementKind = "Class"
	KindInterface ElementKind = "Interface"
	KindStruct    ElementKind = "Struct"
	KindEnum      ElementKind = "Enum"
	KindFunction  ElementKind = "Function"
	KindMethod    ElementKind = "Method"
	KindVariable  ElementKind = "Variable"
	KindConstant  ElementKind = "Constant"
	KindImport    ElementKind = "Import"
	KindExport    ElementKind = "Export"
	KindComment   ElementKind = "Comment"
	KindOther     ElementKind = "Other"
)

// Visibility mirrors the three visibility levels the parser can detect.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// StructuralElement is the throwaway output of the structural parser: one
// per function, type, import, etc. found in a file. Consumed once by the
// capsule constructor and then dropped.
type StructuralElement struct {
	ID         uuid.UUID
	Name       string
	Kind       ElementKind
	Content    string
	StartLine  int
	EndLine    int
	StartCol   int
	EndCol     int
	Complexity uint32
	Visibility Visibility
	Parameters []string
	ReturnType *string
	Children   []uuid.UUID
	ParentID   *uuid.UUID
	Metadata   map[string]string
}

// CapsuleType mirrors the element kind a capsule was constructed from.
type CapsuleType string

const (
	CapsuleModule    CapsuleType = "Module"
	CapsuleClass     CapsuleType = "Class"
	CapsuleInterface CapsuleType = "Interface"
	CapsuleStruct    CapsuleType = "Struct"
	CapsuleEnum      CapsuleType = "Enum"
	CapsuleFunction  CapsuleType = "Function"
	CapsuleMethod    CapsuleType = "Method"
	CapsuleVariable  CapsuleType = "Variable"
	CapsuleConstant  CapsuleType = "Constant"
)

// Layer is a coarse architectural tag derived from file-system location.
type Layer string

const (
	LayerCore           Layer = "Core"
	LayerAPI            Layer = "API"
	LayerUI             Layer = "UI"
	LayerUtils          Layer = "Utils"
	LayerBusiness       Layer = "Business"
	LayerData           Layer = "Data"
	LayerTests          Layer = "Tests"
	LayerInfrastructure Layer = "Infrastructure"
	LayerOther          Layer = "Other"
)

// Status is the lifecycle state of a capsule.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusActive     Status = "Active"
	StatusDeprecated Status = "Deprecated"
	StatusArchived   Status = "Archived"
	StatusHidden     Status = "Hidden"
)

// Priority orders urgency; Critical is the most urgent.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// RelationType enumerates the kinds of directed edges between capsules.
type RelationType string

const (
	RelationDepends    RelationType = "Depends"
	RelationUses       RelationType = "Uses"
	RelationImplements RelationType = "Implements"
	RelationExtends    RelationType = "Extends"
	RelationAggregates RelationType = "Aggregates"
	RelationComposes   RelationType = "Composes"
	RelationCalls      RelationType = "Calls"
	RelationReferences RelationType = "References"
)

// Warning is a single diagnostic attached to a capsule, or to the graph
// itself when CapsuleID is nil.
type Warning struct {
	Level      Priority
	Message    string
	Category   string
	CapsuleID  *uuid.UUID
	Suggestion *string
}

// Capsule is the core structural unit: a meaningful code element with
// metrics, warnings, and relations to other capsules.
type Capsule struct {
	ID           uuid.UUID
	Name         string
	CapsuleType  CapsuleType
	FilePath     string
	LineStart    int
	LineEnd      int
	Size         int
	Complexity   uint32
	Dependencies []uuid.UUID
	Dependents   []uuid.UUID
	Layer        *Layer
	Summary      *string
	Description  *string
	Slogan       *string
	Warnings     []Warning
	Status       Status
	Priority     Priority
	Tags         []string
	Metadata     map[string]string
	QualityScore float64
	CreatedAt    *time.Time
}

// Relation is a directed, typed, weighted edge between two capsules.
type Relation struct {
	FromID      uuid.UUID
	ToID        uuid.UUID
	RelationType RelationType
	Strength    float32
	Description *string
}

// GraphMetrics summarizes the whole capsule graph.
type GraphMetrics struct {
	TotalCapsules        int
	TotalRelations       int
	ComplexityAverage    float32
	CouplingIndex        float32
	CohesionIndex        float32
	CyclomaticComplexity uint32
	DepthLevels          uint32
}

// ComparisonSnapshot is a compact summary of a previous analysis, kept on
// a CapsuleGraph to support diff-analysis without retaining the full graph.
type ComparisonSnapshot struct {
	Metrics            GraphMetrics
	TotalCapsules      int
	TotalRelations     int
	MaxComplexity      uint32
	MaxComplexityName  string
	OrphanCount        int
	CycleCount         int
	AnalyzedAt         time.Time
}

// CapsuleGraph is the typed, directed graph the pipeline builds, enriches,
// validates, optimizes and finally exports.
type CapsuleGraph struct {
	Capsules         map[uuid.UUID]*Capsule
	Relations        []Relation
	Layers           map[Layer][]uuid.UUID
	Metrics          GraphMetrics
	CreatedAt        time.Time
	PreviousAnalysis *ComparisonSnapshot
}

// NewCapsuleGraph returns an empty, well-formed graph ready for capsules.
func NewCapsuleGraph(now time.Time) *CapsuleGraph {
	return &CapsuleGraph{
		Capsules:  make(map[uuid.UUID]*Capsule),
		Relations: make([]Relation, 0),
		Layers:    make(map[Layer][]uuid.UUID),
		CreatedAt: now,
	}
}

// ExportFormat enumerates the serialization shapes the exporter supports.
type ExportFormat string

const (
	FormatAICompact      ExportFormat = "ai-compact"
	FormatJSON           ExportFormat = "json"
	FormatYAML           ExportFormat = "yaml"
	FormatMermaid        ExportFormat = "mermaid"
	FormatDOT            ExportFormat = "dot"
	FormatGraphML        ExportFormat = "graphml"
	FormatSVG            ExportFormat = "svg"
	FormatHTML           ExportFormat = "html"
	FormatChainOfThought ExportFormat = "chain-of-thought"
	FormatLLMPrompt      ExportFormat = "llm-prompt"
)

// AnalysisResult is the top-level outcome of Analyze.
type AnalysisResult struct {
	Graph            *CapsuleGraph
	Warnings         []Warning
	Recommendations  []string
	SupportedFormats []ExportFormat
}
