// Package gittest creates throwaway upstream repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Upstream is a local repository standing in for a remote
type Upstream struct {
	Dir string
	t   testing.TB
}

// RequireGit skips the test when the git binary is not installed
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
}

// NewUpstream initializes an empty repository in a temporary directory
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()
	RequireGit(t)

	u := &Upstream{Dir: filepath.Join(t.TempDir(), "upstream"), t: t}
	if err := os.MkdirAll(u.Dir, 0755); err != nil {
		t.Fatalf("creating upstream dir: %v", err)
	}
	u.Git("init", "-q")
	return u
}

// URL returns the path used as the remote URL
func (u *Upstream) URL() string {
	return u.Dir
}

// Git runs git in the upstream repository and returns trimmed stdout
func (u *Upstream) Git(args ...string) string {
	u.t.Helper()
	return Run(u.t, u.Dir, args...)
}

// Commit writes files and commits them, returning the new commit hash
func (u *Upstream) Commit(message string, files map[string]string) string {
	u.t.Helper()
	for name, content := range files {
		path := filepath.Join(u.Dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			u.t.Fatalf("creating %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0755); err != nil {
			u.t.Fatalf("writing %s: %v", name, err)
		}
	}
	u.Git("add", "-A")
	u.Git("commit", "-q", "-m", message)
	return u.Git("rev-parse", "HEAD")
}

// Tag creates an annotated tag at HEAD
func (u *Upstream) Tag(name string) {
	u.t.Helper()
	u.Git("tag", "-a", name, "-m", "release "+name)
}

// Run executes git in dir with a fixed identity and no signing
func Run(t testing.TB, dir string, args ...string) string {
	t.Helper()
	full := append([]string{
		"-c", "user.name=srcsync test",
		"-c", "user.email=test@example.com",
		"-c", "commit.gpgsign=false",
		"-c", "tag.gpgsign=false",
		"-c", "init.defaultBranch=master",
	}, args...)

	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}
