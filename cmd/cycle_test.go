package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redgreenloop/redgreen/pkg/vcs"
)

func TestMain(m *testing.M) {
	// The logger creates .redgreen/ relative to the working directory.
	if dir, err := os.MkdirTemp("", "cmd-test"); err == nil {
		_ = os.Chdir(dir)
	}
	os.Exit(m.Run())
}

// End-to-end: one full cycle against a real git repository using the mock
// backends from the template config.
func TestCycleCommandEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture test command assumes sh")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	t.Setenv("GIT_AUTHOR_NAME", "redgreen-test")
	t.Setenv("GIT_AUTHOR_EMAIL", "redgreen@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "redgreen-test")
	t.Setenv("GIT_COMMITTER_EMAIL", "redgreen@example.com")

	project := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	cfgContent := `
tester:
  provider: {kind: mock, model: mock}
implementor:
  provider: {kind: mock, model: mock}
refactorer:
  provider: {kind: mock, model: mock}
test_cmd: "true"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0o644))

	rootCmd.SetArgs([]string{"cycle", "--project", project, "--config", cfgPath})
	require.NoError(t, rootCmd.Execute())

	// Red, one green attempt and refactor each commit the mock edit.
	ok, out, err := vcs.RunCommand(project, "git", "rev-list", "--count", "HEAD")
	require.NoError(t, err)
	require.True(t, ok, out)
	assert.Equal(t, "3", strings.TrimSpace(out))

	content, err := os.ReadFile(filepath.Join(project, "redgreen-mock.log"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(content), "\n"), "three mock edits appended")
}
