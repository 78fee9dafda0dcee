package esbuild

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Cmd is a subprocess invocation.
type Cmd struct {
	Path string
	Args []string
	Dir  string
}

// Output is the captured result of a finished subprocess.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Executor runs subprocesses. A non-zero exit is reported through
// Output.ExitCode, not as an error; errors mean the process could not be
// started or was killed because ctx ended.
type Executor interface {
	Run(ctx context.Context, cmd Cmd) (Output, error)
}

// waitDelay bounds how long Run waits for output pipes after the process
// is killed.
const waitDelay = 2 * time.Second

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

// Run implements [Executor].
func (ExecExecutor) Run(ctx context.Context, cmd Cmd) (Output, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}

// ToolError carries a failed esbuild run's exit code and standard error.
type ToolError struct {
	ExitCode int
	Stderr   string
}

// Error returns the captured standard error unchanged.
func (e *ToolError) Error() string { return e.Stderr }
