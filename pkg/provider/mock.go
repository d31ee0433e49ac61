package provider

import (
	"context"
	"fmt"
)

// MockProvider returns a canned append-only patch. It exists so the full
// cycle, including commits and test runs, can be exercised without network
// access or API keys.
type MockProvider struct{}

func (p *MockProvider) GeneratePatch(ctx context.Context, role, contextText, instructions string) (*Patch, error) {
	var content string
	switch role {
	case "tester":
		content = "// TODO: add a failing test\n"
	case "implementor":
		content = "// TODO: implement feature to make tests pass\n"
	default:
		content = "// TODO: refactor without changing behavior\n"
	}
	return &Patch{
		Files: []FileEdit{
			{
				Path:    "redgreen-mock.log",
				Mode:    EditModeAppend,
				Content: content,
			},
		},
		CommitMessage: fmt.Sprintf("chore(%s): mock patch", role),
	}, nil
}
