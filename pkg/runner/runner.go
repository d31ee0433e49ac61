package runner

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
)

// TestRunner executes the project's configured test command.
type TestRunner interface {
	// Run executes command in projectRoot through the platform shell.
	// passed reflects the process exit status; output is stdout followed by
	// stderr. A non-nil error means the command could not be invoked at all.
	Run(projectRoot, command string) (passed bool, output string, err error)
}

// ShellRunner runs commands via "sh -lc" (or "cmd /C" on Windows) so
// compound test commands work unmodified. No timeout is enforced; a hanging
// test command blocks the cycle.
type ShellRunner struct{}

func (ShellRunner) Run(projectRoot, command string) (bool, string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-lc", command)
	}
	cmd.Dir = projectRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	output := stdout.String() + stderr.String()
	if err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			// Test failure, not an invocation error.
			return false, output, nil
		}
		return false, output, fmt.Errorf("running test command %q: %w", command, err)
	}
	return true, output, nil
}
