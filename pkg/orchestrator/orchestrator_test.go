package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redgreenloop/redgreen/pkg/config"
	"github.com/redgreenloop/redgreen/pkg/provider"
	"github.com/redgreenloop/redgreen/pkg/utils"
)

// The logger writes .redgreen/run.log relative to the working directory;
// keep test runs from littering the package directory.
func TestMain(m *testing.M) {
	if dir, err := os.MkdirTemp("", "orchestrator-test"); err == nil {
		_ = os.Chdir(dir)
	}
	os.Exit(m.Run())
}

type commitRecord struct {
	paths   []string
	message string
	rev     string
}

// fakeVCS keeps an in-memory linear history.
type fakeVCS struct {
	ensured   int
	commits   []commitRecord
	branches  map[string]string
	branchErr error
	nextRev   int
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{branches: map[string]string{}}
}

func (f *fakeVCS) EnsureRepo() error {
	f.ensured++
	return nil
}

func (f *fakeVCS) CommitPaths(paths []string, message string) error {
	f.nextRev++
	f.commits = append(f.commits, commitRecord{
		paths:   append([]string(nil), paths...),
		message: message,
		rev:     fmt.Sprintf("rev-%d", f.nextRev),
	})
	return nil
}

func (f *fakeVCS) HeadCommit() (string, error) {
	if len(f.commits) == 0 {
		return "", fmt.Errorf("no commits yet")
	}
	return f.commits[len(f.commits)-1].rev, nil
}

func (f *fakeVCS) ResetHardTo(revision string) error {
	for i, c := range f.commits {
		if c.rev == revision {
			f.commits = f.commits[:i+1]
			return nil
		}
	}
	return fmt.Errorf("unknown revision %s", revision)
}

func (f *fakeVCS) ResetHardBackOne() error {
	if len(f.commits) == 0 {
		return fmt.Errorf("nothing to reset")
	}
	f.commits = f.commits[:len(f.commits)-1]
	return nil
}

func (f *fakeVCS) CreateBranchAtHead(name string) error {
	if f.branchErr != nil {
		return f.branchErr
	}
	head, err := f.HeadCommit()
	if err != nil {
		return err
	}
	f.branches[name] = head
	return nil
}

type generateCall struct {
	role         string
	instructions string
}

// scriptedProvider hands out queued patches and records what it was asked.
type scriptedProvider struct {
	patches []*provider.Patch
	calls   []generateCall
	err     error
}

func (s *scriptedProvider) GeneratePatch(ctx context.Context, role, contextText, instructions string) (*provider.Patch, error) {
	s.calls = append(s.calls, generateCall{role: role, instructions: instructions})
	if s.err != nil {
		return nil, s.err
	}
	if len(s.patches) == 0 {
		return &provider.Patch{}, nil
	}
	next := s.patches[0]
	s.patches = s.patches[1:]
	return next, nil
}

type testResult struct {
	passed bool
	output string
}

// scriptedRunner replays a fixed sequence of test outcomes.
type scriptedRunner struct {
	results []testResult
	runs    int
}

func (s *scriptedRunner) Run(projectRoot, command string) (bool, string, error) {
	if s.runs >= len(s.results) {
		return false, "", fmt.Errorf("unexpected extra test run %d", s.runs+1)
	}
	r := s.results[s.runs]
	s.runs++
	return r.passed, r.output, nil
}

func appendPatch(msg string) *provider.Patch {
	return &provider.Patch{
		Files: []provider.FileEdit{
			{Path: "work.log", Mode: provider.EditModeAppend, Content: msg + "\n"},
		},
	}
}

func newTestOrchestrator(t *testing.T, attempts int, tester, implementor, refactorer *scriptedProvider, git *fakeVCS, run *scriptedRunner) *Orchestrator {
	t.Helper()
	cfg := config.Example()
	cfg.ImplementorMaxAttempts = attempts
	return &Orchestrator{
		projectRoot: t.TempDir(),
		cfg:         cfg,
		tester:      tester,
		implementor: implementor,
		refactorer:  refactorer,
		git:         git,
		runner:      run,
		logger:      utils.GetLogger(0),
	}
}

func TestRunCycleHappyPathFourCommits(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "FAIL: TestNext"}, // red check
		{passed: false, output: "still failing"},  // attempt 1
		{passed: true},                            // attempt 2
		{passed: true},                            // refactor check
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{appendPatch("red")}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("try-1"), appendPatch("try-2")}}
	ref := &scriptedProvider{patches: []*provider.Patch{appendPatch("tidy")}}

	o := newTestOrchestrator(t, 2, tester, impl, ref, git, run)
	require.NoError(t, o.RunCycle(context.Background()))

	require.Len(t, git.commits, 4)
	assert.Equal(t, "test: add failing test", git.commits[0].message)
	assert.Equal(t, "feat: make tests pass (attempt 1)", git.commits[1].message)
	assert.Equal(t, "feat: make tests pass (attempt 2)", git.commits[2].message)
	assert.Equal(t, "refactor: improve design", git.commits[3].message)
	assert.Equal(t, 1, git.ensured)
	assert.Empty(t, git.branches)
	assert.Equal(t, 4, run.runs)
}

func TestRunCycleGreenExhaustionResetsToTesterHead(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red output"},
		{passed: false, output: "fail-1"},
		{passed: false, output: "fail-2"},
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{appendPatch("red")}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("try-1"), appendPatch("try-2")}}
	ref := &scriptedProvider{}

	o := newTestOrchestrator(t, 2, tester, impl, ref, git, run)
	require.NoError(t, o.RunCycle(context.Background()), "attempt exhaustion is a recognized steady state, not an error")

	// History rewound to the tester commit exactly.
	require.Len(t, git.commits, 1)
	assert.Equal(t, "test: add failing test", git.commits[0].message)

	// Failed attempts preserved on a branch pointing at the last attempt.
	require.Len(t, git.branches, 1)
	for name, rev := range git.branches {
		assert.True(t, strings.HasPrefix(name, "attempts/implementor-"), "branch %q", name)
		assert.Equal(t, "rev-3", rev)
	}

	// Refactorer was never consulted.
	assert.Empty(t, ref.calls)
}

func TestRunCycleFeedsLatestFailureIntoNextAttempt(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red output"},
		{passed: false, output: "fail-1"},
		{passed: false, output: "fail-2"},
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{appendPatch("red")}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("try-1"), appendPatch("try-2")}}

	o := newTestOrchestrator(t, 2, tester, impl, &scriptedProvider{}, git, run)
	require.NoError(t, o.RunCycle(context.Background()))

	require.Len(t, impl.calls, 2)
	assert.Contains(t, impl.calls[0].instructions, "red output")
	assert.Contains(t, impl.calls[1].instructions, "fail-1")
	assert.NotContains(t, impl.calls[1].instructions, "red output")
}

func TestRunCycleRefactorRegressionRevertsAndErrors(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red"},
		{passed: true},
		{passed: false, output: "REGRESSION: TestNext broke"},
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{appendPatch("red")}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("fix")}}
	ref := &scriptedProvider{patches: []*provider.Patch{appendPatch("tidy")}}

	o := newTestOrchestrator(t, 3, tester, impl, ref, git, run)
	err := o.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGRESSION: TestNext broke")

	// Exactly the refactor commit is undone.
	require.Len(t, git.commits, 2)
	assert.Equal(t, "feat: make tests pass (attempt 1)", git.commits[1].message)
}

func TestRunCycleEmptyPatchStillCommits(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red"},
		{passed: true},
		{passed: true},
	}}
	empty := func() *scriptedProvider {
		return &scriptedProvider{patches: []*provider.Patch{{}}}
	}

	o := newTestOrchestrator(t, 1, empty(), empty(), empty(), git, run)
	require.NoError(t, o.RunCycle(context.Background()))

	require.Len(t, git.commits, 3)
	for _, c := range git.commits {
		assert.Empty(t, c.paths, "empty edit set commits with no staged paths")
	}
}

func TestRunCycleUnexpectedlyGreenRedProceeds(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: true, output: "all green already"}, // anomaly: logged, not fatal
		{passed: true},
		{passed: true},
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{appendPatch("red")}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("fix")}}
	ref := &scriptedProvider{patches: []*provider.Patch{appendPatch("tidy")}}

	o := newTestOrchestrator(t, 1, tester, impl, ref, git, run)
	require.NoError(t, o.RunCycle(context.Background()))
	assert.Len(t, git.commits, 3)
}

func TestRunCycleBackendErrorAborts(t *testing.T) {
	git := newFakeVCS()
	tester := &scriptedProvider{err: fmt.Errorf("connection refused")}

	o := newTestOrchestrator(t, 1, tester, &scriptedProvider{}, &scriptedProvider{}, git, &scriptedRunner{})
	err := o.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tester backend")
	assert.Empty(t, git.commits)
}

func TestRunCycleBranchFailureIsBestEffort(t *testing.T) {
	git := newFakeVCS()
	git.branchErr = fmt.Errorf("branch already exists")
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red"},
		{passed: false, output: "fail-1"},
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{appendPatch("red")}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("try-1")}}

	o := newTestOrchestrator(t, 1, tester, impl, &scriptedProvider{}, git, run)
	require.NoError(t, o.RunCycle(context.Background()), "branch creation failure must not abort the cycle")
	require.Len(t, git.commits, 1, "history still reset to the tester commit")
}

func TestRunCycleBackendCommitMessagesWin(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red"},
		{passed: true},
		{passed: true},
	}}
	withMsg := func(msg string) *scriptedProvider {
		p := appendPatch("edit")
		p.CommitMessage = msg
		return &scriptedProvider{patches: []*provider.Patch{p}}
	}

	o := newTestOrchestrator(t, 1, withMsg("test: cover overflow"), withMsg("feat: handle overflow"), withMsg("refactor: extract helper"), git, run)
	require.NoError(t, o.RunCycle(context.Background()))

	require.Len(t, git.commits, 3)
	assert.Equal(t, "test: cover overflow", git.commits[0].message)
	// Attempt number is appended even to backend-supplied messages.
	assert.Equal(t, "feat: handle overflow (attempt 1)", git.commits[1].message)
	assert.Equal(t, "refactor: extract helper", git.commits[2].message)
}

func TestRunCycleAppliesEditsToProjectTree(t *testing.T) {
	git := newFakeVCS()
	run := &scriptedRunner{results: []testResult{
		{passed: false, output: "red"},
		{passed: true},
		{passed: true},
	}}
	tester := &scriptedProvider{patches: []*provider.Patch{{
		Files: []provider.FileEdit{
			{Path: "calc_test.go", Mode: provider.EditModeRewrite, Content: "package calc\n"},
		},
	}}}
	impl := &scriptedProvider{patches: []*provider.Patch{appendPatch("fix")}}
	ref := &scriptedProvider{patches: []*provider.Patch{appendPatch("tidy")}}

	o := newTestOrchestrator(t, 1, tester, impl, ref, git, run)
	require.NoError(t, o.RunCycle(context.Background()))

	content, err := os.ReadFile(o.projectRoot + "/calc_test.go")
	require.NoError(t, err)
	assert.Equal(t, "package calc\n", string(content))
	assert.Equal(t, []string{"calc_test.go"}, git.commits[0].paths)
}
