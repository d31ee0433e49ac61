package vcs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandFunc executes a command in dir and reports whether it exited
// successfully, along with its combined output (stdout followed by stderr).
// A non-nil error means the command could not be run at all.
type CommandFunc func(dir, name string, args ...string) (ok bool, output string, err error)

// RunCommand is the CommandFunc backed by os/exec.
func RunCommand(dir, name string, args ...string) (bool, string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	output := stdout.String() + stderr.String()
	if err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			return false, output, nil
		}
		return false, output, fmt.Errorf("running %s: %w", name, err)
	}
	return true, output, nil
}

// Git wraps the git binary with the project root as working directory. Every
// operation is a single synchronous subprocess call with no internal retry.
type Git struct {
	root string
	run  CommandFunc
}

// NewGit returns a Git adapter that shells out to the real git binary.
func NewGit(projectRoot string) *Git {
	return NewGitWithRunner(projectRoot, RunCommand)
}

// NewGitWithRunner allows substituting the subprocess layer in tests.
func NewGitWithRunner(projectRoot string, run CommandFunc) *Git {
	return &Git{root: projectRoot, run: run}
}

func (g *Git) git(args ...string) (bool, string, error) {
	return g.run(g.root, "git", args...)
}

// EnsureRepo initializes a repository at the project root if none exists.
// Idempotent: a present .git marker makes it a no-op.
func (g *Git) EnsureRepo() error {
	if _, err := os.Stat(filepath.Join(g.root, ".git")); err == nil {
		return nil
	}
	ok, out, err := g.git("init")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("git init failed: %s", out)
	}
	return nil
}

// CommitPaths stages exactly the given paths and commits with the given
// message. Empty commits are allowed, so an empty path list still produces a
// commit.
func (g *Git) CommitPaths(paths []string, message string) error {
	if len(paths) > 0 {
		args := append([]string{"add", "--"}, paths...)
		ok, out, err := g.git(args...)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("git add failed: %s", out)
		}
	}
	ok, out, err := g.git("commit", "--allow-empty", "-m", message)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("git commit failed: %s", out)
	}
	return nil
}

// HeadCommit returns the current revision identifier. It fails when there is
// no commit yet; callers must ensure at least one prior commit.
func (g *Git) HeadCommit() (string, error) {
	ok, out, err := g.git("rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("git rev-parse HEAD failed: %s", out)
	}
	return strings.TrimSpace(out), nil
}

// ResetHardTo discards history and working-tree changes after the given
// revision.
func (g *Git) ResetHardTo(revision string) error {
	ok, out, err := g.git("reset", "--hard", revision)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("git reset --hard %s failed: %s", revision, out)
	}
	return nil
}

// ResetHardBackOne undoes exactly the most recent commit and its
// working-tree effects.
func (g *Git) ResetHardBackOne() error {
	ok, out, err := g.git("reset", "--hard", "HEAD~1")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("git reset --hard HEAD~1 failed: %s", out)
	}
	return nil
}

// CreateBranchAtHead labels the current revision. Used for forensic
// preservation of failed attempts; callers may treat failure as best-effort.
func (g *Git) CreateBranchAtHead(name string) error {
	ok, out, err := g.git("branch", name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("git branch %s failed: %s", name, out)
	}
	return nil
}
