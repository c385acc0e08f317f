// Package step runs one Sync-and-Build Step: bring a checkout to its pinned
// reference and, only if that changed the checkout, run the recipe's build
// commands in it.
//
// Sync and build are independent outcomes. A failed build leaves the
// checkout at the new revision; the next run sees it as unchanged and does
// not build again.
package step

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/obentoo/srcsync/internal/build"
	"github.com/obentoo/srcsync/internal/checkout"
	"github.com/obentoo/srcsync/internal/common/git"
	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/common/shell"
	"github.com/obentoo/srcsync/internal/recipe"
)

var (
	// ErrSync marks failures to bring the checkout to its reference
	ErrSync = errors.New("sync failed")
	// ErrBuild marks failures of the build commands
	ErrBuild = errors.New("build failed")
	// ErrMissingPrerequisite is returned when a required tool is not on PATH
	ErrMissingPrerequisite = errors.New("missing prerequisite")
)

// SyncError wraps a failure of the sync operation
type SyncError struct {
	Recipe string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: sync failed: %v", e.Recipe, e.Err)
}

func (e *SyncError) Unwrap() []error {
	return []error{ErrSync, e.Err}
}

// BuildError wraps a failure of the build commands
type BuildError struct {
	Recipe   string
	Revision string               // Revision the checkout was left at
	Failed   *shell.CommandResult // Failing command, nil if none ran
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: build failed: %v", e.Recipe, e.Err)
}

func (e *BuildError) Unwrap() []error {
	return []error{ErrBuild, e.Err}
}

// Result contains the outcome of one step
type Result struct {
	Recipe string
	Sync   *checkout.SyncResult
	Build  *build.Result // nil when the checkout did not change
}

// Built reports whether the build commands ran
func (r *Result) Built() bool {
	return r.Build != nil
}

// LookPathFunc finds an executable; exec.LookPath outside tests
type LookPathFunc func(file string) (string, error)

// Step binds a recipe to the git client and shell executor that carry it out
type Step struct {
	Recipe   *recipe.Recipe
	Git      git.GitExecutor
	Shell    shell.Executor
	LookPath LookPathFunc
	// SkipGitPrerequisite drops "git" from the required tools, for clients
	// that do not shell out to git
	SkipGitPrerequisite bool
}

// New creates a Step for r using the named git client and the shell interpreter
func New(r *recipe.Recipe, gitClient string) (*Step, error) {
	path, err := r.Path()
	if err != nil {
		return nil, err
	}

	runner, err := git.NewExecutor(gitClient, path)
	if err != nil {
		return nil, err
	}

	return &Step{
		Recipe:              r,
		Git:                 runner,
		Shell:               shell.NewInterpreter(),
		LookPath:            exec.LookPath,
		SkipGitPrerequisite: gitClient == git.ClientGoGit,
	}, nil
}

// CheckPrerequisites verifies that every required tool is on PATH
func (s *Step) CheckPrerequisites() error {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var missing []error
	for _, tool := range s.Recipe.Requires {
		if tool == "git" && s.SkipGitPrerequisite {
			continue
		}
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, fmt.Errorf("%w: %s", ErrMissingPrerequisite, tool))
		}
	}
	return errors.Join(missing...)
}

// Run syncs the checkout and builds if it changed. On a BuildError the
// returned Result is non-nil and Result.Sync describes the new checkout.
func (s *Step) Run(ctx context.Context) (*Result, error) {
	r := s.Recipe
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.CheckPrerequisites(); err != nil {
		return nil, err
	}

	logger.Info("Syncing %s to %s", r.Name, r.Reference)
	syncResult, err := checkout.SyncWithRunner(s.Git, r.Checkout)
	if err != nil {
		return nil, &SyncError{Recipe: r.Name, Err: err}
	}
	logger.Info("%s", syncResult.Message)

	result := &Result{Recipe: r.Name, Sync: syncResult}
	if !syncResult.Changed {
		return result, nil
	}

	logger.Info("Building %s in %s", r.Name, s.Git.WorkDir())
	buildResult, err := build.RunWithExecutor(ctx, s.Shell, build.Action{
		Dir:      s.Git.WorkDir(),
		Commands: r.Commands,
		Env:      r.EnvList(),
	})
	result.Build = buildResult
	if err != nil {
		buildErr := &BuildError{Recipe: r.Name, Revision: syncResult.Revision, Err: err}
		if buildResult != nil {
			buildErr.Failed = buildResult.Failed()
		}
		return result, buildErr
	}

	return result, nil
}
