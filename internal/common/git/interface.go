package git

// GitExecutor defines the version-control operations needed to keep a
// checkout at a pinned revision. Implementations exist for the git binary
// (GitRunner), for an in-process client (GoGitRunner) and for tests
// (MockGitRunner).
type GitExecutor interface {
	// IsRepository reports whether WorkDir already holds a repository
	IsRepository() bool

	// Clone clones url into WorkDir without checking out a worktree
	Clone(url, remote string) error

	// RemoteURL returns the fetch URL of a remote
	RemoteURL(remote string) (string, error)

	// SetRemoteURL points an existing remote at url, creating it if needed
	SetRemoteURL(remote, url string) error

	// Fetch fetches branches and tags from a remote, overwriting moved tags
	Fetch(remote string) error

	// ResolveRevision resolves a tag, branch or commit name to a commit hash.
	// Returns ErrRevisionNotFound when ref does not name a commit.
	ResolveRevision(ref string) (string, error)

	// Head returns the commit HEAD points at, or "" for an unborn HEAD
	Head() (string, error)

	// Status returns the current git status as a list of StatusEntry
	Status() ([]StatusEntry, error)

	// CheckoutDetached force-checks out rev with a detached HEAD, discarding
	// modifications to tracked files
	CheckoutDetached(rev string) error

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}

// Client names accepted by NewExecutor
const (
	ClientExec  = "exec"
	ClientGoGit = "go-git"
)

// NewExecutor returns the GitExecutor for the named client
func NewExecutor(client, workDir string) (GitExecutor, error) {
	switch client {
	case "", ClientExec:
		return NewGitRunner(workDir), nil
	case ClientGoGit:
		return NewGoGitRunner(workDir), nil
	default:
		return nil, ErrUnknownClient
	}
}
