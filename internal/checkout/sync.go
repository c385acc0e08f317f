package checkout

import (
	"errors"
	"fmt"

	"github.com/obentoo/srcsync/internal/common/git"
	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/recipe"
)

var (
	// ErrReferenceNotFound indicates the pinned reference does not name a commit
	ErrReferenceNotFound = errors.New("reference not found")
)

// SyncResult contains sync operation results
type SyncResult struct {
	Changed  bool   // True if tracked content was updated
	Cloned   bool   // True if the repository was cloned during this sync
	Previous string // Commit checked out before the sync, empty when cloned
	Revision string // Commit checked out after the sync
	Message  string // Human-readable status message
}

// Sync brings the recipe's checkout to its pinned reference using the
// named git client.
func Sync(client string, co recipe.Checkout) (*SyncResult, error) {
	path, err := co.Path()
	if err != nil {
		return nil, err
	}

	runner, err := git.NewExecutor(client, path)
	if err != nil {
		return nil, err
	}
	return SyncWithRunner(runner, co)
}

// SyncWithRunner performs sync using a provided GitExecutor.
// The checkout counts as unchanged only when HEAD already is the pinned
// commit and no tracked file differs from it.
func SyncWithRunner(runner git.GitExecutor, co recipe.Checkout) (*SyncResult, error) {
	remote := co.RemoteName()
	result := &SyncResult{}

	if !runner.IsRepository() {
		logger.Debug("Cloning %s into %s", co.Repository, runner.WorkDir())
		if err := runner.Clone(co.Repository, remote); err != nil {
			return nil, fmt.Errorf("cloning %s: %w", co.Repository, err)
		}
		result.Cloned = true
	} else {
		head, err := runner.Head()
		if err != nil {
			return nil, fmt.Errorf("reading HEAD: %w", err)
		}
		result.Previous = head

		if err := ensureRemote(runner, remote, co.Repository); err != nil {
			return nil, err
		}

		logger.Debug("Fetching %s in %s", remote, runner.WorkDir())
		if err := runner.Fetch(remote); err != nil {
			return nil, fmt.Errorf("fetching %s: %w", remote, err)
		}
	}

	revision, err := resolve(runner, remote, co.Reference)
	if err != nil {
		return nil, err
	}
	result.Revision = revision

	if !result.Cloned && result.Previous == revision {
		modified, err := trackedChanges(runner)
		if err != nil {
			return nil, err
		}
		if len(modified) == 0 {
			result.Message = fmt.Sprintf("%s already at %s", runner.WorkDir(), co.Reference)
			return result, nil
		}
		logger.Warn("%d tracked file(s) differ from %s, restoring", len(modified), co.Reference)
	}

	if err := runner.CheckoutDetached(revision); err != nil {
		return nil, fmt.Errorf("checking out %s: %w", co.Reference, err)
	}

	result.Changed = true
	result.Message = fmt.Sprintf("%s updated to %s", runner.WorkDir(), co.Reference)
	return result, nil
}

// ensureRemote points remote at url when the checkout was cloned from elsewhere
func ensureRemote(runner git.GitExecutor, remote, url string) error {
	current, err := runner.RemoteURL(remote)
	if err == nil && current == url {
		return nil
	}

	logger.Info("Setting %s URL to %s", remote, url)
	if err := runner.SetRemoteURL(remote, url); err != nil {
		return fmt.Errorf("setting %s URL: %w", remote, err)
	}
	return nil
}

// resolve finds the commit for ref: a branch on the remote first, so a
// branch that moved upstream is followed, then a tag or commit
func resolve(runner git.GitExecutor, remote, ref string) (string, error) {
	revision, err := runner.ResolveRevision(remoteBranch(remote, ref))
	if err == nil {
		return revision, nil
	}
	if !errors.Is(err, git.ErrRevisionNotFound) {
		return "", err
	}

	revision, err = runner.ResolveRevision(ref)
	if err == nil {
		return revision, nil
	}
	if errors.Is(err, git.ErrRevisionNotFound) {
		return "", fmt.Errorf("%w: %s", ErrReferenceNotFound, ref)
	}
	return "", err
}

// remoteBranch returns the remote-tracking ref fetch updates for branch
func remoteBranch(remote, branch string) string {
	return "refs/remotes/" + remote + "/" + branch
}

// trackedChanges lists tracked files whose content differs from HEAD
func trackedChanges(runner git.GitExecutor) ([]string, error) {
	entries, err := runner.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	var modified []string
	for _, e := range entries {
		if e.Tracked() {
			modified = append(modified, e.FilePath)
		}
	}
	return modified, nil
}
