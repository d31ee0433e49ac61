package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// sourceExtensions are the file types worth showing to a model. Manifests and
// docs are matched separately by name.
var sourceExtensions = map[string]bool{
	".go":    true,
	".rs":    true,
	".py":    true,
	".js":    true,
	".ts":    true,
	".java":  true,
	".c":     true,
	".cc":    true,
	".cpp":   true,
	".h":     true,
	".hpp":   true,
	".rb":    true,
	".sh":    true,
	".sql":   true,
	".md":    true,
	".toml":  true,
	".yaml":  true,
	".yml":   true,
	".json":  true,
	".proto": true,
}

var manifestNames = map[string]bool{
	"go.mod":           true,
	"go.sum":           true,
	"Cargo.toml":       true,
	"package.json":     true,
	"pyproject.toml":   true,
	"requirements.txt": true,
	"Makefile":         true,
	"Gemfile":          true,
}

// CollectContext concatenates project source, manifest, documentation and
// test files into a single prompt blob, bounded by maxBytes. Files are
// included whole in traversal order; once the next file would exceed the
// budget, collection stops.
func CollectContext(projectRoot string, maxBytes int) (string, error) {
	rules := GetIgnoreRules(projectRoot)

	var buf strings.Builder
	total := 0
	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rules.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if rules.MatchesPath(rel) || !includeInContext(rel) {
			return nil
		}

		contents, readErr := os.ReadFile(path)
		if readErr != nil || !utf8.Valid(contents) {
			return nil
		}

		header := fmt.Sprintf("\n===== FILE: %s =====\n", rel)
		needed := len(header) + len(contents)
		if total+needed > maxBytes {
			return fs.SkipAll
		}
		buf.WriteString(header)
		buf.Write(contents)
		total += needed
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("collecting context under %s: %w", projectRoot, err)
	}
	return buf.String(), nil
}

func includeInContext(rel string) bool {
	base := filepath.Base(rel)
	if manifestNames[base] {
		return true
	}
	if strings.HasPrefix(base, "README") {
		return true
	}
	if strings.HasPrefix(rel, "tests/") || strings.HasPrefix(rel, "test/") {
		return true
	}
	return sourceExtensions[strings.ToLower(filepath.Ext(base))]
}
