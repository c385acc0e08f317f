// Package shell runs command sequences with an in-process POSIX shell.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrCommandFailed indicates a command exited non-zero
	ErrCommandFailed = errors.New("command failed")
	// ErrParse indicates a command is not valid shell syntax
	ErrParse = errors.New("invalid shell command")
)

// Executor runs an ordered list of commands in a directory
type Executor interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request describes one command sequence
type Request struct {
	Dir      string    // Working directory for every command
	Commands []string  // Run in order; the first failure stops the sequence
	Env      []string  // KEY=VALUE pairs added to the process environment
	Stream   io.Writer // Optional live copy of stdout and stderr
}

// CommandResult records one executed command
type CommandResult struct {
	Command  string
	ExitCode int
	Output   string // Combined stdout and stderr
	Duration time.Duration
}

// Result lists the commands that ran, including a failed last one
type Result struct {
	Commands []CommandResult
}

// Failed returns the failing command, if any
func (r *Result) Failed() *CommandResult {
	for i := range r.Commands {
		if r.Commands[i].ExitCode != 0 {
			return &r.Commands[i]
		}
	}
	return nil
}

// CommandError describes a command that exited non-zero
type CommandError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// Interpreter runs commands with mvdan.cc/sh. Each command gets a fresh
// shell started in Request.Dir with errexit set.
type Interpreter struct{}

// NewInterpreter creates an Interpreter
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Run executes req.Commands in order and stops at the first failure
func (s *Interpreter) Run(ctx context.Context, req Request) (*Result, error) {
	env := expand.ListEnviron(append(os.Environ(), req.Env...)...)
	parser := syntax.NewParser()
	result := &Result{}

	for _, command := range req.Commands {
		file, err := parser.Parse(strings.NewReader(command), "")
		if err != nil {
			return result, fmt.Errorf("%w: %q: %v", ErrParse, command, err)
		}

		var out bytes.Buffer
		var w io.Writer = &out
		if req.Stream != nil {
			w = io.MultiWriter(&out, req.Stream)
		}

		runner, err := interp.New(
			interp.Dir(req.Dir),
			interp.Env(env),
			interp.StdIO(nil, w, w),
			interp.Params("-e"),
		)
		if err != nil {
			return result, fmt.Errorf("failed to initialize shell: %w", err)
		}

		start := time.Now()
		runErr := runner.Run(ctx, file)
		cr := CommandResult{
			Command:  command,
			ExitCode: exitCode(runErr),
			Output:   out.String(),
			Duration: time.Since(start),
		}
		result.Commands = append(result.Commands, cr)

		if runErr != nil {
			return result, &CommandError{Command: command, ExitCode: cr.ExitCode, Err: runErr}
		}
	}

	return result, nil
}

// exitCode extracts the shell exit status; -1 means the command never
// produced one (cancelled context, handler failure)
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if status, ok := interp.IsExitStatus(err); ok {
		return int(status)
	}
	return -1
}

// Ensure Interpreter implements Executor interface
var _ Executor = (*Interpreter)(nil)
