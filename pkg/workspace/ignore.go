package workspace

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// GetIgnoreRules combines the project's .gitignore with baked-in patterns
// that should never reach a model prompt.
func GetIgnoreRules(rootDir string) *ignore.GitIgnore {
	allLines := essentialIgnorePatterns()

	gitIgnorePath := filepath.Join(rootDir, ".gitignore")
	if content, err := os.ReadFile(gitIgnorePath); err == nil {
		allLines = append(allLines, strings.Split(string(content), "\n")...)
	}

	var filteredLines []string
	for _, line := range allLines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			filteredLines = append(filteredLines, line)
		}
	}

	return ignore.CompileIgnoreLines(filteredLines...)
}

// essentialIgnorePatterns returns patterns that are always excluded from
// context collection regardless of the project's own ignore files.
func essentialIgnorePatterns() []string {
	return []string{
		".redgreen/", // our own workspace directory
		".git/",
		".hg/",
		".svn/",
		"node_modules/",
		"target/",
		"build/",
		"dist/",
		"vendor/",
		"__pycache__/",
		".venv/",
		"venv/",
		".idea/",
		".vscode/",
		".DS_Store",
		"*.log",
		"*.tmp",
		"*.bak",
		"*.swp",
		"*.exe",
		"*.dll",
		"*.so",
		"*.dylib",
		"*.o",
		"*.a",
		"*.test",
	}
}
