package git

// MockGitRunner implements GitExecutor for testing.
// Each method can be configured with a custom function to control behavior.
type MockGitRunner struct {
	IsRepositoryFunc     func() bool
	CloneFunc            func(url, remote string) error
	RemoteURLFunc        func(remote string) (string, error)
	SetRemoteURLFunc     func(remote, url string) error
	FetchFunc            func(remote string) error
	ResolveRevisionFunc  func(ref string) (string, error)
	HeadFunc             func() (string, error)
	StatusFunc           func() ([]StatusEntry, error)
	CheckoutDetachedFunc func(rev string) error
	workDir              string
}

// NewMockGitRunner creates a new MockGitRunner with the specified working directory
func NewMockGitRunner(workDir string) *MockGitRunner {
	return &MockGitRunner{
		workDir: workDir,
	}
}

// IsRepository reports whether WorkDir holds a repository
func (m *MockGitRunner) IsRepository() bool {
	if m.IsRepositoryFunc != nil {
		return m.IsRepositoryFunc()
	}
	return false
}

// Clone clones url into WorkDir
func (m *MockGitRunner) Clone(url, remote string) error {
	if m.CloneFunc != nil {
		return m.CloneFunc(url, remote)
	}
	return nil
}

// RemoteURL returns the fetch URL of a remote
func (m *MockGitRunner) RemoteURL(remote string) (string, error) {
	if m.RemoteURLFunc != nil {
		return m.RemoteURLFunc(remote)
	}
	return "", nil
}

// SetRemoteURL points remote at url
func (m *MockGitRunner) SetRemoteURL(remote, url string) error {
	if m.SetRemoteURLFunc != nil {
		return m.SetRemoteURLFunc(remote, url)
	}
	return nil
}

// Fetch fetches changes from a remote repository
func (m *MockGitRunner) Fetch(remote string) error {
	if m.FetchFunc != nil {
		return m.FetchFunc(remote)
	}
	return nil
}

// ResolveRevision resolves ref to a commit hash
func (m *MockGitRunner) ResolveRevision(ref string) (string, error) {
	if m.ResolveRevisionFunc != nil {
		return m.ResolveRevisionFunc(ref)
	}
	return "", ErrRevisionNotFound
}

// Head returns the commit HEAD points at
func (m *MockGitRunner) Head() (string, error) {
	if m.HeadFunc != nil {
		return m.HeadFunc()
	}
	return "", nil
}

// Status returns the current git status as a list of StatusEntry
func (m *MockGitRunner) Status() ([]StatusEntry, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return nil, nil
}

// CheckoutDetached checks out rev
func (m *MockGitRunner) CheckoutDetached(rev string) error {
	if m.CheckoutDetachedFunc != nil {
		return m.CheckoutDetachedFunc(rev)
	}
	return nil
}

// WorkDir returns the working directory of the git repository
func (m *MockGitRunner) WorkDir() string {
	return m.workDir
}

// Ensure MockGitRunner implements GitExecutor interface
var _ GitExecutor = (*MockGitRunner)(nil)
