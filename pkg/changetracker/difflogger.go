package changetracker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/redgreenloop/redgreen/pkg/provider"
)

const (
	redColor   = "\x1b[31m"
	greenColor = "\x1b[32m"
	resetColor = "\x1b[0m"
)

// GetDiffText renders a colored character diff between two versions of a
// file, suitable for console preview of a pending edit.
func GetDiffText(original, updated string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, updated, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var out strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			out.WriteString(greenColor)
			out.WriteString(d.Text)
			out.WriteString(resetColor)
		case diffmatchpatch.DiffDelete:
			out.WriteString(redColor)
			out.WriteString(d.Text)
			out.WriteString(resetColor)
		case diffmatchpatch.DiffEqual:
			out.WriteString(d.Text)
		}
	}
	return out.String()
}

// PreviewEdit renders what a pending file edit will change relative to the
// current content on disk. For append edits the new tail is shown as an
// insertion; for rewrites a full diff against the existing file.
func PreviewEdit(projectRoot string, fe provider.FileEdit) string {
	existing := ""
	if content, err := os.ReadFile(filepath.Join(projectRoot, filepath.FromSlash(fe.Path))); err == nil {
		existing = string(content)
	}
	switch fe.Mode {
	case provider.EditModeAppend:
		return GetDiffText(existing, existing+fe.Content)
	default:
		return GetDiffText(existing, fe.Content)
	}
}
