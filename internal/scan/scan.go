// Package scan provides the external collaborators the analysis core
// consumes (spec.md §6): a file provider, a directory walker, and a
// language classifier. These are deliberately outside the hard core —
// the core only depends on the small interfaces below.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/archlens-go/archlens/pkg/errs"
	"github.com/archlens-go/archlens/pkg/types"
)

// FileProvider reads file contents by path.
type FileProvider interface {
	Read(path string) ([]byte, error)
}

// Walker enumerates candidate file paths under a root, in a stable
// (lexicographic) order.
type Walker interface {
	Walk(root string, maxDepth int) ([]string, error)
}

// Classifier maps a file path to a language tag by extension.
type Classifier interface {
	Classify(path string) types.LanguageTag
}

// Clock supplies the current time; mockable in tests.
type Clock interface {
	Now() time.Time
}

// OSFileProvider reads files from the local filesystem.
type OSFileProvider struct{}

func (OSFileProvider) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Io(err, "file not found: %s", path)
		}
		return nil, errs.Io(err, "failed to read %s", path)
	}
	return data, nil
}

// DirWalker walks a directory tree, filtering by glob include/exclude
// patterns and a maximum depth, yielding paths in lexicographic order.
type DirWalker struct {
	IncludePatterns []string
	ExcludePatterns []string
	FollowSymlinks  bool
}

// NewDirWalker builds a walker for the given include/exclude glob sets.
func NewDirWalker(include, exclude []string, followSymlinks bool) *DirWalker {
	return &DirWalker{IncludePatterns: include, ExcludePatterns: exclude, FollowSymlinks: followSymlinks}
}

// Walk enumerates every file under root matching IncludePatterns and not
// matching ExcludePatterns, stopping descent past maxDepth directories.
func (w *DirWalker) Walk(root string, maxDepth int) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && strings.Count(rel, "/")+1 > maxDepth {
				return filepath.SkipDir
			}
			if w.matchesAny(rel+"/", w.ExcludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.matchesAny(rel, w.ExcludePatterns) {
			return nil
		}
		if !w.matchesAny(rel, w.IncludePatterns) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errs.Io(err, "failed to walk %s", root)
	}

	sort.Strings(paths)
	return paths, nil
}

func (w *DirWalker) matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// ExtClassifier maps file extensions to language tags, extension-based
// per spec.md §6.
type ExtClassifier struct{}

func (ExtClassifier) Classify(path string) types.LanguageTag {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rs":
		return types.LanguageRust
	case ".js", ".jsx", ".mjs", ".cjs":
		return types.LanguageJavaScript
	case ".ts", ".tsx":
		return types.LanguageTypeScript
	case ".py":
		return types.LanguagePython
	case ".java":
		return types.LanguageJava
	case ".go":
		return types.LanguageGo
	case ".c", ".h":
		return types.LanguageC
	case ".cc", ".cpp", ".cxx", ".hpp", ".hh":
		return types.LanguageCpp
	default:
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		return types.OtherLanguage(ext)
	}
}

// SystemClock reports the actual wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
