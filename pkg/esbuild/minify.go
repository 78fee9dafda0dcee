package esbuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

// Minifier minifies a single JavaScript file without bundling.
type Minifier struct {
	binary  BinaryProvider
	exec    Executor
	timeout time.Duration
}

// NewMinifier creates a Minifier. A nil executor runs real processes; a
// non-positive timeout selects [DefaultMinifyTimeout].
func NewMinifier(binary BinaryProvider, exec Executor, timeout time.Duration) *Minifier {
	if exec == nil {
		exec = ExecExecutor{}
	}
	if timeout <= 0 {
		timeout = DefaultMinifyTimeout
	}
	return &Minifier{binary: binary, exec: exec, timeout: timeout}
}

// Minify minifies sourcePath. With a non-empty outputPath the result is
// written there and read back; otherwise it is taken from standard output.
func (m *Minifier) Minify(ctx context.Context, sourcePath, outputPath string) (string, error) {
	bin, err := m.binary.Ensure(ctx)
	if err != nil {
		return "", err
	}

	args := []string{sourcePath, "--minify"}
	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", filepath.Dir(outputPath))
		}
		args = append(args, "--outfile="+outputPath)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	out, err := m.exec.Run(ctx, Cmd{Path: bin, Args: args})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", sterrors.Wrap(sterrors.ErrCodeMinifyTimeout, &ToolError{ExitCode: out.ExitCode, Stderr: string(out.Stderr)},
			"esbuild minify timed out after %s", m.timeout)
	}
	if err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeMinifyFailed, err, "run esbuild")
	}
	if out.ExitCode != 0 {
		return "", sterrors.Wrap(sterrors.ErrCodeMinifyFailed, &ToolError{ExitCode: out.ExitCode, Stderr: string(out.Stderr)},
			"esbuild minify failed with exit code %d", out.ExitCode)
	}

	if outputPath == "" {
		return string(out.Stdout), nil
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return "", sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "read %s", outputPath)
	}
	return string(data), nil
}
