// Package pipeline wires the seven analysis stages together: Scanner,
// Structural Parser, Capsule Constructor, Graph Builder, Enricher,
// Validator/Optimizer, and Exporter (spec.md §2, §5). Stage 1-3 runs a
// worker pool over the file list. Analyze stops after validation; export
// (stage 7) is left to the caller through export.Export.
package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/archlens-go/archlens/internal/capsule"
	"github.com/archlens-go/archlens/internal/enrich"
	"github.com/archlens-go/archlens/internal/graph"
	"github.com/archlens-go/archlens/internal/parser"
	"github.com/archlens-go/archlens/internal/scan"
	"github.com/archlens-go/archlens/internal/validate"
	"github.com/archlens-go/archlens/pkg/config"
	"github.com/archlens-go/archlens/pkg/errs"
	"github.com/archlens-go/archlens/pkg/logger"
	"github.com/archlens-go/archlens/pkg/types"
)

// Pipeline holds the collaborators each Analyze call needs. Every field
// is swappable for tests; the zero value is not usable, use New.
type Pipeline struct {
	files   scan.FileProvider
	walker  scan.Walker
	classify scan.Classifier
	clock   scan.Clock
	log     *logger.Logger
	workers int
}

// New builds a pipeline with OS-backed collaborators and an include/
// exclude-scoped directory walker.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		files:    scan.OSFileProvider{},
		walker:   scan.NewDirWalker(cfg.Analysis.IncludePatterns, cfg.Analysis.ExcludePatterns, false),
		classify: scan.ExtClassifier{},
		clock:    scan.SystemClock{},
		workers:  8,
	}
}

// WithWorkers overrides the stage 1-3 worker pool size (default 8).
func (p *Pipeline) WithWorkers(n int) *Pipeline {
	if n > 0 {
		p.workers = n
	}
	return p
}

type fileResult struct {
	path     string
	content  string
	capsules []*types.Capsule
}

// Analyze runs the full pipeline against projectRoot: scan, parse,
// construct capsules, build the graph, enrich, validate/optimize. Per-file
// parse failures are recovered locally (spec.md §7's propagation policy);
// a failure reading the project root itself aborts.
func Analyze(ctx context.Context, p *Pipeline, projectRoot string, cfg *config.Config) (*types.AnalysisResult, error) {
	paths, err := p.walker.Walk(projectRoot, cfg.Analysis.MaxDepth)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(paths))
	var warningsMu sync.Mutex
	var globalWarnings []types.Warning

	cache := parser.NewCache()
	prs := parser.New().WithCache(cache)
	constructor := capsule.New(p.clock).
		WithExtractComments(cfg.Analysis.ExtractComments).
		WithGenerateSummaries(cfg.Analysis.GenerateSummaries)

	g, groupCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-groupCtx.Done():
				return groupCtx.Err()
			}

			lang := p.classify.Classify(path)
			if !languageAllowed(lang, cfg.Analysis.Languages) {
				return nil
			}
			if !cfg.Analysis.ParseTests && isTestPath(path) {
				return nil
			}

			data, readErr := p.files.Read(path)
			if readErr != nil {
				warningsMu.Lock()
				globalWarnings = append(globalWarnings, types.Warning{
					Level: types.PriorityLow, Message: readErr.Error(), Category: "io",
				})
				warningsMu.Unlock()
				return nil
			}

			content := string(data)
			elements := prs.Parse(path, content, lang)
			caps := constructor.Construct(path, elements)

			results[i] = fileResult{path: path, content: content, capsules: caps}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errs.Io(err, "scanning %s", projectRoot)
	}

	var allCapsules []*types.Capsule
	fileContents := make(map[string]string, len(results))
	for _, r := range results {
		if r.path == "" {
			continue
		}
		fileContents[r.path] = r.content
		allCapsules = append(allCapsules, r.capsules...)
	}
	sort.Slice(allCapsules, func(i, j int) bool {
		if allCapsules[i].FilePath != allCapsules[j].FilePath {
			return allCapsules[i].FilePath < allCapsules[j].FilePath
		}
		return allCapsules[i].LineStart < allCapsules[j].LineStart
	})

	allCapsules = capsule.Optimize(allCapsules)

	if !cfg.Analysis.AnalyzeDependencies {
		for _, cap := range allCapsules {
			delete(cap.Metadata, "signature_refs")
		}
	}

	capsuleGraph := graph.Build(allCapsules, fileContents, p.clock.Now())
	enrich.Enrich(capsuleGraph, fileContents)
	graphWarnings := validate.Validate(capsuleGraph, fileContents)
	globalWarnings = append(globalWarnings, graphWarnings...)

	return &types.AnalysisResult{
		Graph:            capsuleGraph,
		Warnings:         globalWarnings,
		SupportedFormats: supportedFormats(),
	}, nil
}

// languageAllowed applies the analysis.languages whitelist (spec.md §6.2):
// an empty whitelist processes every classified language.
func languageAllowed(lang types.LanguageTag, whitelist []types.LanguageTag) bool {
	if len(whitelist) == 0 {
		return true
	}
	for _, w := range whitelist {
		if w == lang {
			return true
		}
	}
	return false
}

// isTestPath flags files under a conventional test directory or carrying a
// test-file naming convention, gated by analysis.parse_tests.
func isTestPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.Contains(base, "_test.") || strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") || strings.HasPrefix(base, "test_") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		switch strings.ToLower(part) {
		case "test", "tests", "__tests__", "spec":
			return true
		}
	}
	return false
}

func supportedFormats() []types.ExportFormat {
	return []types.ExportFormat{
		types.FormatAICompact, types.FormatJSON, types.FormatYAML, types.FormatMermaid,
		types.FormatDOT, types.FormatGraphML, types.FormatSVG, types.FormatHTML,
		types.FormatChainOfThought, types.FormatLLMPrompt,
	}
}
