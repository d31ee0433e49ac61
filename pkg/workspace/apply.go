package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redgreenloop/redgreen/pkg/provider"
)

// ApplyPatch writes each file edit to the project tree in order and returns
// the project-relative paths touched, duplicates included. There is no
// atomicity across files: a failure partway through leaves earlier edits in
// place; recovery is the caller's concern (a later git reset).
func ApplyPatch(projectRoot string, patch *provider.Patch) ([]string, error) {
	touched := make([]string, 0, len(patch.Files))
	for _, fe := range patch.Files {
		rel, err := safeRelPath(fe.Path)
		if err != nil {
			return touched, err
		}
		path := filepath.Join(projectRoot, rel)
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return touched, fmt.Errorf("creating directories for %s: %w", fe.Path, err)
			}
		}
		switch fe.Mode {
		case provider.EditModeRewrite:
			if err := os.WriteFile(path, []byte(fe.Content), 0o644); err != nil {
				return touched, fmt.Errorf("writing %s: %w", fe.Path, err)
			}
		case provider.EditModeAppend:
			f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return touched, fmt.Errorf("opening %s for append: %w", fe.Path, err)
			}
			if _, err := f.WriteString(fe.Content); err != nil {
				f.Close()
				return touched, fmt.Errorf("appending to %s: %w", fe.Path, err)
			}
			if err := f.Close(); err != nil {
				return touched, fmt.Errorf("closing %s: %w", fe.Path, err)
			}
		default:
			return touched, fmt.Errorf("unknown edit mode %q for %s", fe.Mode, fe.Path)
		}
		touched = append(touched, rel)
	}
	return touched, nil
}

// safeRelPath rejects edit paths that would escape the project root. Backend
// responses are untrusted input.
func safeRelPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("edit has empty path")
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("edit path %q is absolute; paths must be project-relative", p)
	}
	cleaned := filepath.Clean(filepath.FromSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("edit path %q escapes the project root", p)
	}
	return cleaned, nil
}
