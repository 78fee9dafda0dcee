package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/starelements/starelements/pkg/config"
	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/esbuild"
	"github.com/starelements/starelements/pkg/fetch"
	"github.com/starelements/starelements/pkg/httputil"
	"github.com/starelements/starelements/pkg/integrations"
	"github.com/starelements/starelements/pkg/integrations/unpkg"
	"github.com/starelements/starelements/pkg/lock"
	"github.com/starelements/starelements/pkg/observability"
	"github.com/starelements/starelements/pkg/pkgspec"
)

// Resolver pins versions and names their sources. [unpkg.Client] implements it.
type Resolver interface {
	ResolveVersion(ctx context.Context, name, versionOrTag string) (string, error)
	PackageURL(name, version string) string
}

// PackageBundler produces a bundle file. [esbuild.Bundler] implements it.
type PackageBundler interface {
	BundlePackage(ctx context.Context, name, version, outputPath string, opts esbuild.BundleOptions) error
}

// Binary provides the esbuild binary. [esbuild.Manager] implements it.
type Binary interface {
	Ensure(ctx context.Context) (string, error)
	Version() string
}

// Runner executes bundle runs. It holds no per-run state.
type Runner struct {
	Resolver Resolver
	Bundler  PackageBundler
	Binary   Binary
	Logger   *log.Logger
	Now      func() time.Time
}

// New wires a Runner against the registry, cache and timeouts in cfg.
func New(cfg *config.BundleConfig, logger *log.Logger, opts ...Option) (*Runner, error) {
	o := collect(opts)
	logger = orDiscard(logger)

	registry := unpkg.NewClient(cfg.Registry, cfg.Timeouts.Fetch, httputil.Attempts(cfg.Retries))
	manager, err := newManager(cfg, logger, o)
	if err != nil {
		return nil, err
	}

	bundler := esbuild.NewBundler(esbuild.BundlerConfig{
		Binary:   manager,
		Stager:   fetch.New(registry, logger),
		Executor: o.executor,
		Target:   cfg.Target,
		Timeout:  cfg.Timeouts.Bundle,
		Logger:   logger,
	})

	return &Runner{
		Resolver: registry,
		Bundler:  bundler,
		Binary:   manager,
		Logger:   logger,
		Now:      o.now,
	}, nil
}

// NewManager creates the esbuild binary manager configured by cfg.
func NewManager(cfg *config.BundleConfig, logger *log.Logger, opts ...Option) (*esbuild.Manager, error) {
	return newManager(cfg, orDiscard(logger), collect(opts))
}

// NewMinifier creates a minifier backed by the binary manager configured by cfg.
func NewMinifier(cfg *config.BundleConfig, logger *log.Logger, opts ...Option) (*esbuild.Minifier, error) {
	o := collect(opts)
	manager, err := newManager(cfg, orDiscard(logger), o)
	if err != nil {
		return nil, err
	}
	return esbuild.NewMinifier(manager, o.executor, cfg.Timeouts.Minify), nil
}

func newManager(cfg *config.BundleConfig, logger *log.Logger, o options) (*esbuild.Manager, error) {
	return esbuild.NewManager(esbuild.ManagerConfig{
		Version:         cfg.EsbuildVersion,
		BaseURL:         cfg.Registry,
		CacheDir:        o.cacheDir,
		Platform:        o.platform,
		Downloader:      integrations.NewClient(cfg.Timeouts.Download, httputil.Attempts(cfg.Retries)),
		Executor:        o.executor,
		DownloadTimeout: cfg.Timeouts.Download,
		VerifyTimeout:   cfg.Timeouts.Verify,
		Logger:          logger,
	})
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return logger
}

// Run bundles every specifier in cfg.Bundle and writes the lock file.
func (r *Runner) Run(ctx context.Context, cfg config.BundleConfig) (*Result, error) {
	start := time.Now()

	lf, err := lock.Read(cfg.LockFile)
	if err != nil {
		return nil, err
	}
	lf.EsbuildVersion = r.Binary.Version()

	bin, err := r.Binary.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{LockFile: cfg.LockFile, EsbuildVersion: lf.EsbuildVersion}
	result.Stats.EnsureTime = time.Since(start)
	r.Logger.Debug("esbuild ready", "path", bin, "version", lf.EsbuildVersion)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "create %s", cfg.OutputDir)
	}

	bundleStart := time.Now()
	for _, raw := range cfg.Bundle {
		b, err := r.bundleOne(ctx, cfg, raw)
		if err != nil {
			return nil, packageError(raw, err)
		}
		lf.Upsert(lock.LockedPackage{
			Name:      b.Name,
			Version:   b.Version,
			Integrity: b.Integrity,
			SourceURL: b.SourceURL,
			BundledAt: lock.Timestamp(r.now()),
		})
		result.Bundles = append(result.Bundles, b)
		r.Logger.Info("bundled package", "package", b.Name, "version", b.Version, "size", b.Size)
	}
	result.Stats.BundleTime = time.Since(bundleStart)

	if err := lock.Write(lf, cfg.LockFile); err != nil {
		return nil, err
	}
	result.Stats.TotalTime = time.Since(start)
	return result, nil
}

func (r *Runner) bundleOne(ctx context.Context, cfg config.BundleConfig, raw string) (b Bundle, err error) {
	spec, err := pkgspec.Parse(raw)
	if err != nil {
		return Bundle{}, err
	}

	version, err := r.Resolver.ResolveVersion(ctx, spec.Name, spec.Version)
	if err != nil {
		return Bundle{}, err
	}
	r.Logger.Debug("resolved version", "package", spec.Name, "requested", spec.Version, "version", version)

	hooks := observability.Bundle()
	hooks.OnBundleStart(ctx, spec.Name, version)
	start := time.Now()
	defer func() {
		hooks.OnBundleComplete(ctx, spec.Name, version, b.Size, time.Since(start), err)
	}()

	out := filepath.Join(cfg.OutputDir, pkgspec.BundleFilename(spec.Name))
	opts := esbuild.BundleOptions{Minify: cfg.Minify, EntryPoint: spec.Entry}
	if err := r.Bundler.BundlePackage(ctx, spec.Name, version, out, opts); err != nil {
		return Bundle{}, err
	}

	info, err := os.Stat(out)
	if err != nil {
		return Bundle{}, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "stat %s", out)
	}
	integrity, err := lock.ComputeIntegrity(out)
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{
		Spec:      raw,
		Name:      spec.Name,
		Version:   version,
		Path:      out,
		Integrity: integrity,
		Size:      info.Size(),
		SourceURL: r.Resolver.PackageURL(spec.Name, version),
	}, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// packageError prefixes err with the failing specifier, keeping its code.
func packageError(spec string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	code := sterrors.GetCode(err)
	if code == "" {
		code = sterrors.ErrCodeInternal
	}
	return sterrors.Wrap(code, err, "%s", spec)
}
