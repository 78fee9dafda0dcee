package esbuild

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/fetch"
)

const (
	DefaultTarget        = "es2020"
	DefaultBundleTimeout = 2 * time.Minute
	DefaultMinifyTimeout = 30 * time.Second
)

// BinaryProvider yields the path of a usable esbuild binary.
// [Manager] implements it.
type BinaryProvider interface {
	Ensure(ctx context.Context) (string, error)
}

// Stager populates a staging directory. [fetch.Fetcher] implements it.
type Stager interface {
	DownloadEntry(ctx context.Context, name, version, destDir, entryOverride string) (string, error)
	Stage(ctx context.Context, name, version, destDir string) (*fetch.Staging, error)
}

// BundleOptions controls a single bundle.
type BundleOptions struct {
	Minify bool
	// EntryPoint stages only this file instead of the dependency tree.
	EntryPoint string
}

// BundlerConfig configures a [Bundler]. Zero values select defaults.
type BundlerConfig struct {
	Binary   BinaryProvider
	Stager   Stager
	Executor Executor
	Target   string
	Timeout  time.Duration
	Logger   *log.Logger
}

// Bundler produces ESM bundles of npm packages.
type Bundler struct {
	binary  BinaryProvider
	stager  Stager
	exec    Executor
	target  string
	timeout time.Duration
	logger  *log.Logger
}

// NewBundler creates a Bundler.
func NewBundler(cfg BundlerConfig) *Bundler {
	b := &Bundler{
		binary:  cfg.Binary,
		stager:  cfg.Stager,
		exec:    cfg.Executor,
		target:  cfg.Target,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if b.exec == nil {
		b.exec = ExecExecutor{}
	}
	if b.target == "" {
		b.target = DefaultTarget
	}
	if b.timeout <= 0 {
		b.timeout = DefaultBundleTimeout
	}
	if b.logger == nil {
		b.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return b
}

// BundlePackage bundles name@version into outputPath.
func (b *Bundler) BundlePackage(ctx context.Context, name, version, outputPath string, opts BundleOptions) error {
	bin, err := b.binary.Ensure(ctx)
	if err != nil {
		return err
	}

	staging, err := os.MkdirTemp("", "starelements-stage-*")
	if err != nil {
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create staging directory")
	}
	defer os.RemoveAll(staging)

	entry, aliases, err := b.stage(ctx, name, version, staging, opts.EntryPoint)
	if err != nil {
		return err
	}

	out, err := filepath.Abs(outputPath)
	if err != nil {
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "resolve %s", outputPath)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", filepath.Dir(out))
	}

	args := []string{entry, "--bundle", "--format=esm", "--target=" + b.target, "--outfile=" + out}
	args = append(args, aliases...)
	if opts.Minify {
		args = append(args, "--minify")
	}

	b.logger.Debug("running esbuild", "package", name, "version", version, "args", args)
	if err := b.run(ctx, bin, args, staging); err != nil {
		return err
	}
	b.logger.Debug("bundled package", "package", name, "output", out)
	return nil
}

func (b *Bundler) stage(ctx context.Context, name, version, dir, entryOverride string) (string, []string, error) {
	if entryOverride != "" {
		entry, err := b.stager.DownloadEntry(ctx, name, version, dir, entryOverride)
		return entry, nil, err
	}

	s, err := b.stager.Stage(ctx, name, version, dir)
	if err != nil {
		return "", nil, err
	}
	var aliases []string
	seen := map[string]bool{name: true}
	for _, dep := range s.Dependencies() {
		if seen[dep.Name] {
			continue
		}
		seen[dep.Name] = true
		aliases = append(aliases, "--alias:"+dep.Name+"="+dep.Rel())
	}
	return s.Root.Path, aliases, nil
}

func (b *Bundler) run(ctx context.Context, bin string, args []string, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	out, err := b.exec.Run(ctx, Cmd{Path: bin, Args: args, Dir: dir})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return sterrors.Wrap(sterrors.ErrCodeBundleTimeout, &ToolError{ExitCode: out.ExitCode, Stderr: string(out.Stderr)},
			"esbuild bundle timed out after %s", b.timeout)
	}
	if err != nil {
		return sterrors.Wrap(sterrors.ErrCodeBundleFailed, err, "run esbuild")
	}
	if out.ExitCode != 0 {
		return sterrors.Wrap(sterrors.ErrCodeBundleFailed, &ToolError{ExitCode: out.ExitCode, Stderr: string(out.Stderr)},
			"esbuild bundle failed with exit code %d", out.ExitCode)
	}
	return nil
}
