// Package pipeline bundles every package listed in a project's configuration
// and records the results in the lock file.
//
// # Stages
//
// For each specifier, in order:
//
//  1. Parse: split "name@version#entry" with [pkgspec.Parse]
//  2. Resolve: ask the registry mirror for the exact version
//  3. Bundle: stage the package and run esbuild into the output directory
//  4. Record: hash the bundle and upsert its lock entry
//
// The lock file is written once, after every package succeeded. A failure
// at any stage aborts the run and leaves the lock file untouched.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	runner, err := pipeline.New(cfg, logger)
//	result, err := runner.Run(ctx, *cfg)
//	if err != nil {
//	    fmt.Println(pipeline.Describe(err))
//	}
package pipeline

import (
	"time"

	"github.com/starelements/starelements/pkg/esbuild"
)

// Bundle is one package produced by a run.
type Bundle struct {
	Spec      string // specifier as configured
	Name      string
	Version   string // exact version
	Path      string // absolute output path
	Integrity string
	Size      int64
	SourceURL string
}

// Result contains the outputs of a successful run.
type Result struct {
	Bundles        []Bundle
	LockFile       string
	EsbuildVersion string
	Stats          Stats
}

// Stats contains run timing.
type Stats struct {
	EnsureTime time.Duration
	BundleTime time.Duration
	TotalTime  time.Duration
}

// Option customizes a Runner built by [New].
type Option func(*options)

type options struct {
	executor esbuild.Executor
	cacheDir string
	platform *esbuild.Platform
	now      func() time.Time
}

// WithExecutor runs esbuild through e instead of real subprocesses.
func WithExecutor(e esbuild.Executor) Option {
	return func(o *options) { o.executor = e }
}

// WithCacheDir overrides the esbuild binary cache root.
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithPlatform fetches esbuild builds for p instead of the host platform.
func WithPlatform(p esbuild.Platform) Option {
	return func(o *options) { o.platform = &p }
}

// WithClock sets the time source used for bundled_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
