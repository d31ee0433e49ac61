package runner

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell fixtures assume sh")
	}
}

func TestShellRunnerPassingCommand(t *testing.T) {
	skipOnWindows(t)
	passed, output, err := ShellRunner{}.Run(t.TempDir(), "echo all good")
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Contains(t, output, "all good")
}

func TestShellRunnerFailingCommandIsNotAnError(t *testing.T) {
	skipOnWindows(t)
	passed, output, err := ShellRunner{}.Run(t.TempDir(), "echo boom; exit 1")
	require.NoError(t, err, "a failing test command is a result, not an error")
	assert.False(t, passed)
	assert.Contains(t, output, "boom")
}

func TestShellRunnerOutputOrder(t *testing.T) {
	skipOnWindows(t)
	passed, output, err := ShellRunner{}.Run(t.TempDir(), "echo out-line; echo err-line 1>&2")
	require.NoError(t, err)
	assert.True(t, passed)
	// Combined output is stdout followed by stderr.
	assert.Less(t, strings.Index(output, "out-line"), strings.Index(output, "err-line"))
}

func TestShellRunnerRunsInProjectRoot(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "marker.txt"), []byte("here"), 0o644))

	passed, output, err := ShellRunner{}.Run(root, "cat marker.txt")
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Contains(t, output, "here")
}

func TestShellRunnerSupportsCompoundCommands(t *testing.T) {
	skipOnWindows(t)
	passed, _, err := ShellRunner{}.Run(t.TempDir(), "true && echo chained | grep chained")
	require.NoError(t, err)
	assert.True(t, passed)
}
