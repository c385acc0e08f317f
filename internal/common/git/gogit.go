package git

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// GoGitRunner implements GitExecutor in-process with go-git, for hosts
// where the git binary is not installed.
type GoGitRunner struct {
	workDir string
	repo    *gogit.Repository
}

// NewGoGitRunner creates a new GoGitRunner for the specified working directory
func NewGoGitRunner(workDir string) *GoGitRunner {
	return &GoGitRunner{
		workDir: workDir,
	}
}

// WorkDir returns the working directory of the GoGitRunner
func (g *GoGitRunner) WorkDir() string {
	return g.workDir
}

func (g *GoGitRunner) open() (*gogit.Repository, error) {
	if g.repo != nil {
		return g.repo, nil
	}
	repo, err := gogit.PlainOpen(g.workDir)
	if err != nil {
		return nil, errors.Join(ErrGitCommand, err)
	}
	g.repo = repo
	return repo, nil
}

// IsRepository reports whether WorkDir holds a repository
func (g *GoGitRunner) IsRepository() bool {
	if !isRepository(g.workDir) {
		return false
	}
	_, err := g.open()
	return err == nil
}

// Clone clones url into WorkDir without populating the worktree
func (g *GoGitRunner) Clone(url, remote string) error {
	if err := os.MkdirAll(filepath.Dir(g.workDir), 0755); err != nil {
		return err
	}

	repo, err := gogit.PlainClone(g.workDir, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: remote,
		NoCheckout: true,
		Tags:       gogit.AllTags,
	})
	if err != nil {
		return errors.Join(ErrGitCommand, err)
	}
	g.repo = repo
	return nil
}

// RemoteURL returns the fetch URL of a remote
func (g *GoGitRunner) RemoteURL(remote string) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}

	r, err := repo.Remote(remote)
	if err != nil {
		return "", errors.Join(ErrGitCommand, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// SetRemoteURL replaces the remote with one pointing at url
func (g *GoGitRunner) SetRemoteURL(remote, url string) error {
	repo, err := g.open()
	if err != nil {
		return err
	}

	if err := repo.DeleteRemote(remote); err != nil && !errors.Is(err, gogit.ErrRemoteNotFound) {
		return errors.Join(ErrGitCommand, err)
	}
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: remote,
		URLs: []string{url},
	})
	if err != nil {
		return errors.Join(ErrGitCommand, err)
	}
	return nil
}

// Fetch fetches branches and tags from remote
func (g *GoGitRunner) Fetch(remote string) error {
	repo, err := g.open()
	if err != nil {
		return err
	}

	err = repo.Fetch(&gogit.FetchOptions{
		RemoteName: remote,
		Tags:       gogit.AllTags,
		Force:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return errors.Join(ErrGitCommand, err)
	}
	return nil
}

// ResolveRevision resolves ref to the hash of the commit it names,
// peeling annotated tags
func (g *GoGitRunner) ResolveRevision(ref string) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", errors.Join(ErrRevisionNotFound, errors.New(ref))
	}

	h := *hash
	if tag, err := repo.TagObject(h); err == nil {
		commit, err := tag.Commit()
		if err != nil {
			return "", errors.Join(ErrRevisionNotFound, errors.New(ref))
		}
		h = commit.Hash
	}

	if _, err := repo.CommitObject(h); err != nil {
		return "", errors.Join(ErrRevisionNotFound, errors.New(ref))
	}
	return h.String(), nil
}

// Head returns the commit HEAD points at
func (g *GoGitRunner) Head() (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", errors.Join(ErrGitCommand, err)
	}
	return ref.Hash().String(), nil
}

// Status returns the worktree status in the same shape as ParseStatusOutput
func (g *GoGitRunner) Status() ([]StatusEntry, error) {
	repo, err := g.open()
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Join(ErrGitCommand, err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, errors.Join(ErrGitCommand, err)
	}

	var entries []StatusEntry
	for path, fs := range st {
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}
		entries = append(entries, StatusEntry{
			Status:   statusCode(fs),
			FilePath: path,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FilePath < entries[j].FilePath
	})
	return entries, nil
}

// statusCode maps a go-git file status to the porcelain code
func statusCode(fs *gogit.FileStatus) string {
	if fs.Staging == gogit.Untracked || fs.Worktree == gogit.Untracked {
		return "??"
	}
	if fs.Staging != gogit.Unmodified {
		return string(rune(fs.Staging))
	}
	return string(rune(fs.Worktree))
}

// CheckoutDetached force-checks out rev with a detached HEAD
func (g *GoGitRunner) CheckoutDetached(rev string) error {
	repo, err := g.open()
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return errors.Join(ErrGitCommand, err)
	}

	err = wt.Checkout(&gogit.CheckoutOptions{
		Hash:  plumbing.NewHash(rev),
		Force: true,
	})
	if err != nil {
		return errors.Join(ErrGitCommand, err)
	}
	return nil
}

// Ensure GoGitRunner implements GitExecutor interface
var _ GitExecutor = (*GoGitRunner)(nil)
