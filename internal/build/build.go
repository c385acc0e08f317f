package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/common/shell"
)

var (
	// ErrNoCommands is returned for an action without commands
	ErrNoCommands = errors.New("build action has no commands")
	// ErrDirNotFound is returned when the build directory does not exist
	ErrDirNotFound = errors.New("build directory does not exist")
)

// Action is the fixed command sequence run in a checkout
type Action struct {
	Dir      string
	Commands []string
	Env      []string // KEY=VALUE
}

// Result contains build action results
type Result struct {
	Commands []shell.CommandResult
	Duration time.Duration
}

// Failed returns the command that stopped the build, if any
func (r *Result) Failed() *shell.CommandResult {
	return (&shell.Result{Commands: r.Commands}).Failed()
}

// Run executes the action with the shell interpreter, streaming command
// output to the logger at debug level.
func Run(ctx context.Context, action Action) (*Result, error) {
	return RunWithExecutor(ctx, shell.NewInterpreter(), action)
}

// RunWithExecutor executes the action with the provided Executor.
// Commands run in order; the first failure stops the sequence and the
// returned Result still lists every command that ran.
func RunWithExecutor(ctx context.Context, executor shell.Executor, action Action) (*Result, error) {
	if len(action.Commands) == 0 {
		return nil, ErrNoCommands
	}

	info, err := os.Stat(action.Dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirNotFound, action.Dir)
	}

	stream := logger.Default().Writer(logger.LevelDebug)
	defer stream.Flush()

	for i, command := range action.Commands {
		logger.Debug("[%d/%d] %s", i+1, len(action.Commands), command)
	}

	start := time.Now()
	sr, err := executor.Run(ctx, shell.Request{
		Dir:      action.Dir,
		Commands: action.Commands,
		Env:      action.Env,
		Stream:   stream,
	})

	result := &Result{Duration: time.Since(start)}
	if sr != nil {
		result.Commands = sr.Commands
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
