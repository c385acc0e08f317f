package git

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrGitCommand       = errors.New("git command failed")
	ErrRevisionNotFound = errors.New("revision not found")
	ErrUnknownClient    = errors.New("unknown git client")
)

// GitRunner executes git commands in a specific working directory
type GitRunner struct {
	workDir string
}

// NewGitRunner creates a new GitRunner for the specified working directory
func NewGitRunner(workDir string) *GitRunner {
	return &GitRunner{
		workDir: workDir,
	}
}

// WorkDir returns the working directory of the GitRunner
func (g *GitRunner) WorkDir() string {
	return g.workDir
}

// runCommand executes a git command in the working directory
func (g *GitRunner) runCommand(args ...string) (stdout, stderr string, err error) {
	return runGit(g.workDir, args...)
}

// runGit executes a git command in dir and returns stdout, stderr, and any error
func runGit(dir string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	// Fail instead of waiting for credentials on a terminal
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		// Wrap the error with stderr for context
		if stderr != "" {
			err = errors.Join(ErrGitCommand, errors.New(strings.TrimSpace(stderr)))
		} else {
			err = errors.Join(ErrGitCommand, err)
		}
	}

	return stdout, stderr, err
}

// IsRepository checks for a .git directory directly inside WorkDir, so a
// checkout nested in an unrelated repository is not mistaken for one.
func (g *GitRunner) IsRepository() bool {
	return isRepository(g.workDir)
}

func isRepository(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Clone clones url into WorkDir without populating the worktree
func (g *GitRunner) Clone(url, remote string) error {
	parent := filepath.Dir(g.workDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return err
	}

	_, _, err := runGit(parent, "clone", "--no-checkout", "--origin", remote, url, g.workDir)
	return err
}

// RemoteURL returns the fetch URL of a remote
func (g *GitRunner) RemoteURL(remote string) (string, error) {
	stdout, _, err := g.runCommand("remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// SetRemoteURL points remote at url, adding the remote if it does not exist
func (g *GitRunner) SetRemoteURL(remote, url string) error {
	if _, err := g.RemoteURL(remote); err != nil {
		_, _, err = g.runCommand("remote", "add", remote, url)
		return err
	}
	_, _, err := g.runCommand("remote", "set-url", remote, url)
	return err
}

// Fetch fetches branches and tags from remote
func (g *GitRunner) Fetch(remote string) error {
	_, _, err := g.runCommand("fetch", "--tags", "--force", remote)
	return err
}

// ResolveRevision resolves ref to the hash of the commit it names.
// Only a silent exit status 1 means the ref is unknown; any other failure
// is returned as ErrGitCommand.
func (g *GitRunner) ResolveRevision(ref string) (string, error) {
	stdout, stderr, err := g.runCommand("rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && strings.TrimSpace(stderr) == "" {
			return "", errors.Join(ErrRevisionNotFound, errors.New(ref))
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// Head returns the commit HEAD points at
func (g *GitRunner) Head() (string, error) {
	stdout, stderr, err := g.runCommand("rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		// unborn HEAD: rev-parse exits non-zero without a message
		if strings.TrimSpace(stderr) == "" {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// StatusEntry represents a single entry from git status --porcelain
type StatusEntry struct {
	Status   string // A, M, D, R, ??
	FilePath string
}

// Tracked reports whether the entry concerns a tracked file
func (e StatusEntry) Tracked() bool {
	return e.Status != "??" && e.Status != "!!"
}

// Status returns the current git status as a list of StatusEntry
func (g *GitRunner) Status() ([]StatusEntry, error) {
	stdout, _, err := g.runCommand("status", "--porcelain")
	if err != nil {
		return nil, err
	}

	return ParseStatusOutput(stdout), nil
}

// ParseStatusOutput parses git status --porcelain output into StatusEntry slice
func ParseStatusOutput(output string) []StatusEntry {
	var entries []StatusEntry

	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if len(line) < 3 {
			continue
		}

		// Git status --porcelain format: XY filename
		// X = index status, Y = worktree status
		status := strings.TrimSpace(line[:2])
		filePath := line[3:]

		// Handle renamed files: R  old -> new
		if strings.HasPrefix(status, "R") {
			parts := strings.Split(filePath, " -> ")
			if len(parts) == 2 {
				filePath = parts[1]
			}
		}

		entries = append(entries, StatusEntry{
			Status:   status,
			FilePath: filePath,
		})
	}

	return entries
}

// CheckoutDetached force-checks out rev with a detached HEAD
func (g *GitRunner) CheckoutDetached(rev string) error {
	_, _, err := g.runCommand("checkout", "--force", "--detach", rev)
	return err
}

// Ensure GitRunner implements GitExecutor interface
var _ GitExecutor = (*GitRunner)(nil)
