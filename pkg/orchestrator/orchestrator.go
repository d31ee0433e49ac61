package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redgreenloop/redgreen/pkg/changetracker"
	"github.com/redgreenloop/redgreen/pkg/config"
	"github.com/redgreenloop/redgreen/pkg/provider"
	"github.com/redgreenloop/redgreen/pkg/runner"
	"github.com/redgreenloop/redgreen/pkg/utils"
	"github.com/redgreenloop/redgreen/pkg/vcs"
	"github.com/redgreenloop/redgreen/pkg/workspace"
)

// Default commit messages per step, used when the backend supplies none.
const (
	defaultTesterMessage      = "test: add failing test"
	defaultImplementorMessage = "feat: make tests pass"
	defaultRefactorerMessage  = "refactor: improve design"
)

// VCS is the version-control surface the controller needs. *vcs.Git
// satisfies it; tests substitute an in-memory fake.
type VCS interface {
	EnsureRepo() error
	CommitPaths(paths []string, message string) error
	HeadCommit() (string, error)
	ResetHardTo(revision string) error
	ResetHardBackOne() error
	CreateBranchAtHead(name string) error
}

// Orchestrator sequences one Red -> Green -> Refactor cycle over a single
// project working tree. It is strictly sequential: one backend call, one
// commit and one test run in flight at any time.
type Orchestrator struct {
	projectRoot string
	cfg         *config.Config
	tester      provider.Provider
	implementor provider.Provider
	refactorer  provider.Provider
	git         VCS
	runner      runner.TestRunner
	logger      *utils.Logger
}

// New builds an orchestrator for the given project. It fails fast on a
// missing project directory or an unbuildable backend.
func New(projectRoot string, cfg *config.Config, logger *utils.Logger) (*Orchestrator, error) {
	if _, err := os.Stat(projectRoot); err != nil {
		return nil, fmt.Errorf("project root does not exist: %s", projectRoot)
	}
	tester, err := provider.New(cfg.Tester.Provider)
	if err != nil {
		return nil, fmt.Errorf("building tester backend: %w", err)
	}
	implementor, err := provider.New(cfg.Implementor.Provider)
	if err != nil {
		return nil, fmt.Errorf("building implementor backend: %w", err)
	}
	refactorer, err := provider.New(cfg.Refactorer.Provider)
	if err != nil {
		return nil, fmt.Errorf("building refactorer backend: %w", err)
	}
	return &Orchestrator{
		projectRoot: projectRoot,
		cfg:         cfg,
		tester:      tester,
		implementor: implementor,
		refactorer:  refactorer,
		git:         vcs.NewGit(projectRoot),
		runner:      runner.ShellRunner{},
		logger:      logger,
	}, nil
}

// RunCycle executes one full cycle. Exhausting the implementor's attempt
// budget is not an error: the tree is reset to the tester commit and the
// next cycle starts from a clean, still-red state. Only a refactor
// regression propagates as an error, after the offending commit has been
// reverted.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	o.logStep("Red", "tester", o.cfg.Tester.Provider.Model)
	if err := o.git.EnsureRepo(); err != nil {
		return err
	}

	patch, err := o.generate(ctx, o.tester, "tester", o.buildTesterInstructions())
	if err != nil {
		return err
	}
	touched, err := o.apply(patch)
	if err != nil {
		return err
	}
	if err := o.git.CommitPaths(touched, commitMessage(patch, defaultTesterMessage)); err != nil {
		return err
	}
	testerHead, err := o.git.HeadCommit()
	if err != nil {
		return err
	}

	passed, out, err := o.runner.Run(o.projectRoot, o.cfg.TestCmd)
	if err != nil {
		return err
	}
	if passed {
		o.logger.Warnf("tester step produced passing tests; proceeding anyway")
	} else {
		o.logger.Infof("Tests are red as expected")
	}

	o.logStep("Green", "implementor", o.cfg.Implementor.Provider.Model)
	lastFailOutput := out
	greenAchieved := false
	for attempt := 1; attempt <= o.cfg.ImplementorMaxAttempts; attempt++ {
		patch, err := o.generate(ctx, o.implementor, "implementor", o.buildImplementorInstructions(lastFailOutput))
		if err != nil {
			return err
		}
		touched, err := o.apply(patch)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s (attempt %d)", commitMessage(patch, defaultImplementorMessage), attempt)
		if err := o.git.CommitPaths(touched, msg); err != nil {
			return err
		}

		passed, out, err := o.runner.Run(o.projectRoot, o.cfg.TestCmd)
		if err != nil {
			return err
		}
		if passed {
			greenAchieved = true
			break
		}
		lastFailOutput = out
		o.logger.Warnf("implementor attempt %d failed; retrying if attempts remain", attempt)
	}

	if !greenAchieved {
		o.logger.Warnf("all implementor attempts failed; preserving attempts and resetting to tester commit")
		branchName := "attempts/implementor-" + time.Now().UTC().Format("20060102150405")
		if err := o.git.CreateBranchAtHead(branchName); err != nil {
			// Preserving the attempt history is a nicety, not a requirement.
			o.logger.Debugf("could not create preservation branch %s: %v", branchName, err)
		}
		if err := o.git.ResetHardTo(testerHead); err != nil {
			return err
		}
		// Next cycle tries again from a clean tester state.
		return nil
	}
	o.logger.Infof("Tests green")

	o.logStep("Refactor", "refactorer", o.cfg.Refactorer.Provider.Model)
	patch, err = o.generate(ctx, o.refactorer, "refactorer", o.buildRefactorerInstructions())
	if err != nil {
		return err
	}
	touched, err = o.apply(patch)
	if err != nil {
		return err
	}
	if err := o.git.CommitPaths(touched, commitMessage(patch, defaultRefactorerMessage)); err != nil {
		return err
	}

	passed, out, err = o.runner.Run(o.projectRoot, o.cfg.TestCmd)
	if err != nil {
		return err
	}
	if !passed {
		o.logger.Warnf("refactor step broke tests, reverting commit")
		if err := o.git.ResetHardBackOne(); err != nil {
			return err
		}
		return fmt.Errorf("refactor step failed tests and was reverted. Output:\n%s", out)
	}
	o.logger.Infof("Refactor preserved green")
	return nil
}

func (o *Orchestrator) logStep(step, role, model string) {
	o.logger.Infof("Starting %s (%s) step (model %s)", step, utils.Capitalize(role), model)
}

// generate collects fresh project context and asks a role backend for a patch.
func (o *Orchestrator) generate(ctx context.Context, p provider.Provider, role, instructions string) (*provider.Patch, error) {
	contextText, err := workspace.CollectContext(o.projectRoot, o.cfg.MaxContextBytes)
	if err != nil {
		return nil, err
	}
	o.logger.Tracef("%s instructions (%d bytes), context (%d bytes)", role, len(instructions), len(contextText))
	patch, err := p.GeneratePatch(ctx, role, contextText, instructions)
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", role, err)
	}
	if patch.Notes != "" {
		o.logger.Debugf("%s notes: %s", role, patch.Notes)
	}
	return patch, nil
}

// apply previews and applies a patch, returning the touched paths.
func (o *Orchestrator) apply(patch *provider.Patch) ([]string, error) {
	for _, fe := range patch.Files {
		o.logger.Debugf("edit %s (%s)", fe.Path, fe.Mode)
		o.logger.Tracef("%s", changetracker.PreviewEdit(o.projectRoot, fe))
	}
	return workspace.ApplyPatch(o.projectRoot, patch)
}

func commitMessage(patch *provider.Patch, fallback string) string {
	if patch.CommitMessage != "" {
		return patch.CommitMessage
	}
	return fallback
}
