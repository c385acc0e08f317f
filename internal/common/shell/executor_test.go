package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInterpreterRunsCommandsInDir(t *testing.T) {
	dir := t.TempDir()

	result, err := NewInterpreter().Run(context.Background(), Request{
		Dir: dir,
		Commands: []string{
			"echo configured > config.status",
			"echo built > libdevmapper.a",
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Commands) != 2 {
		t.Fatalf("expected 2 command results, got %d", len(result.Commands))
	}
	for _, name := range []string{"config.status", "libdevmapper.a"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s in %s: %v", name, dir, err)
		}
	}
	if result.Failed() != nil {
		t.Errorf("expected no failed command, got %+v", result.Failed())
	}
}

func TestInterpreterStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()

	result, err := NewInterpreter().Run(context.Background(), Request{
		Dir: dir,
		Commands: []string{
			"true",
			"echo 'make: *** No rule to make target' >&2; exit 2",
			"echo installed > installed.txt",
		},
	})

	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T", err)
	}
	if cmdErr.ExitCode != 2 {
		t.Errorf("expected exit code 2, got %d", cmdErr.ExitCode)
	}

	if len(result.Commands) != 2 {
		t.Fatalf("expected 2 command results, got %d", len(result.Commands))
	}
	failed := result.Failed()
	if failed == nil || !strings.Contains(failed.Output, "No rule to make target") {
		t.Errorf("failed command output should be captured, got %+v", failed)
	}

	if _, err := os.Stat(filepath.Join(dir, "installed.txt")); !os.IsNotExist(err) {
		t.Error("commands after a failure must not run")
	}
}

func TestInterpreterErrexitWithinCommand(t *testing.T) {
	dir := t.TempDir()

	_, err := NewInterpreter().Run(context.Background(), Request{
		Dir:      dir,
		Commands: []string{"false; echo reached > reached.txt"},
	})
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "reached.txt")); !os.IsNotExist(err) {
		t.Error("errexit should stop a command at its first failing statement")
	}
}

func TestInterpreterEnvAndStream(t *testing.T) {
	var stream bytes.Buffer

	result, err := NewInterpreter().Run(context.Background(), Request{
		Dir:      t.TempDir(),
		Commands: []string{`echo "flags=$CFLAGS"`},
		Env:      []string{"CFLAGS=-O2 -static"},
		Stream:   &stream,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "flags=-O2 -static\n"
	if result.Commands[0].Output != want {
		t.Errorf("captured output = %q, want %q", result.Commands[0].Output, want)
	}
	if stream.String() != want {
		t.Errorf("streamed output = %q, want %q", stream.String(), want)
	}
}

func TestInterpreterParseError(t *testing.T) {
	result, err := NewInterpreter().Run(context.Background(), Request{
		Dir:      t.TempDir(),
		Commands: []string{"if then fi ("},
	})
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	if len(result.Commands) != 0 {
		t.Errorf("unparsable command should not run, got %+v", result.Commands)
	}
}

func TestInterpreterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInterpreter().Run(ctx, Request{
		Dir:      t.TempDir(),
		Commands: []string{"sleep 5"},
	})
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}

func TestMockExecutorRecordsCalls(t *testing.T) {
	mock := &MockExecutor{}

	result, err := mock.Run(context.Background(), Request{
		Dir:      "/usr/local/lvm2",
		Commands: []string{"./configure", "make"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Commands) != 2 {
		t.Errorf("expected 2 results, got %d", len(result.Commands))
	}
	if len(mock.Calls) != 1 || mock.CommandCount() != 2 {
		t.Errorf("expected 1 call with 2 commands, got %d calls, %d commands", len(mock.Calls), mock.CommandCount())
	}
}
