package esbuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "tool.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecExecutorCapturesOutput(t *testing.T) {
	script := writeScript(t, `echo "out $1"; echo "err" >&2; pwd >&2; exit 3`)
	dir := t.TempDir()

	out, err := ExecExecutor{}.Run(context.Background(), Cmd{Path: script, Args: []string{"x"}, Dir: dir})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", out.ExitCode)
	}
	if string(out.Stdout) != "out x\n" {
		t.Errorf("Stdout = %q", out.Stdout)
	}
	if len(out.Stderr) == 0 {
		t.Error("Stderr should be captured")
	}
}

func TestExecExecutorVerifiesRealScript(t *testing.T) {
	script := writeScript(t, `echo "0.24.2"`)
	m := newTestManager(t, Platform{"linux", "x64"}, nil, ExecExecutor{})

	if !m.Verify(context.Background(), script) {
		t.Error("Verify() = false for a script printing the version")
	}
}

func TestExecExecutorDeadline(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ExecExecutor{}.Run(ctx, Cmd{Path: script})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestExecExecutorMissingBinary(t *testing.T) {
	_, err := ExecExecutor{}.Run(context.Background(), Cmd{Path: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Error("Run() should fail for a missing binary")
	}
}
