package shell

import "context"

// MockExecutor implements Executor for testing. Every request is recorded
// in Calls; RunFunc controls the outcome.
type MockExecutor struct {
	RunFunc func(ctx context.Context, req Request) (*Result, error)
	Calls   []Request
}

// Run records req and delegates to RunFunc. Without RunFunc every command
// succeeds with no output.
func (m *MockExecutor) Run(ctx context.Context, req Request) (*Result, error) {
	m.Calls = append(m.Calls, req)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, req)
	}

	result := &Result{}
	for _, command := range req.Commands {
		result.Commands = append(result.Commands, CommandResult{Command: command})
	}
	return result, nil
}

// CommandCount returns how many commands were requested across all calls
func (m *MockExecutor) CommandCount() int {
	n := 0
	for _, call := range m.Calls {
		n += len(call.Commands)
	}
	return n
}

// Ensure MockExecutor implements Executor interface
var _ Executor = (*MockExecutor)(nil)
