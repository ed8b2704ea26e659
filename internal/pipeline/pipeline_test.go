package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens-go/archlens/internal/scan"
	"github.com/archlens-go/archlens/pkg/config"
	"github.com/archlens-go/archlens/pkg/types"
)

type fakeFiles map[string]string

func (f fakeFiles) Read(path string) ([]byte, error) {
	content, ok := f[path]
	if !ok {
		return nil, assert.AnError
	}
	return []byte(content), nil
}

type fakeWalker struct{ paths []string }

func (w fakeWalker) Walk(root string, maxDepth int) ([]string, error) { return w.paths, nil }

type fakeClassifier struct{}

func (fakeClassifier) Classify(path string) types.LanguageTag { return types.LanguageGo }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

const goFixtureA = `package a

func DoWork(x int) int {
	if x > 0 {
		return x * 2
	}
	return 0
}
`

const goFixtureB = `package b

func Helper() string {
	return "ok"
}
`

func testPipeline(paths []string, files fakeFiles) *Pipeline {
	return &Pipeline{
		files:    files,
		walker:   fakeWalker{paths: paths},
		classify: fakeClassifier{},
		clock:    fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		workers:  4,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			MaxDepth: 10,
		},
	}
}

func TestAnalyze_BuildsGraphFromScannedFiles(t *testing.T) {
	files := fakeFiles{"a.go": goFixtureA, "b.go": goFixtureB}
	p := testPipeline([]string{"a.go", "b.go"}, files)

	result, err := Analyze(context.Background(), p, "/project", testConfig())

	require.NoError(t, err)
	require.NotNil(t, result.Graph)
	assert.NotEmpty(t, result.Graph.Capsules)
	assert.Len(t, result.SupportedFormats, 10)
}

func TestAnalyze_UnreadableFileProducesWarningNotFailure(t *testing.T) {
	files := fakeFiles{"a.go": goFixtureA}
	p := testPipeline([]string{"a.go", "missing.go"}, files)

	result, err := Analyze(context.Background(), p, "/project", testConfig())

	require.NoError(t, err)
	assert.NotEmpty(t, result.Graph.Capsules)

	found := false
	for _, w := range result.Warnings {
		if w.Category == "io" {
			found = true
		}
	}
	assert.True(t, found, "expected an io warning for the unreadable file")
}

func TestAnalyze_EmptyProjectYieldsEmptyGraph(t *testing.T) {
	p := testPipeline(nil, fakeFiles{})

	result, err := Analyze(context.Background(), p, "/project", testConfig())

	require.NoError(t, err)
	assert.Empty(t, result.Graph.Capsules)
}

func TestAnalyze_WalkerErrorAborts(t *testing.T) {
	p := testPipeline(nil, fakeFiles{})
	p.walker = erroringWalker{}

	_, err := Analyze(context.Background(), p, "/project", testConfig())

	assert.Error(t, err)
}

type erroringWalker struct{}

func (erroringWalker) Walk(root string, maxDepth int) ([]string, error) {
	return nil, assert.AnError
}

var _ scan.Walker = fakeWalker{}
