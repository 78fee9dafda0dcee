// Package config loads the bundler settings from the [tool.starelements]
// table of a project's pyproject.toml.
//
//	[tool.starelements]
//	bundle = ["lit@3", "@shoelace-style/shoelace@2.15.0#dist/shoelace.js"]
//	output = "static/js"
//	minify = true
//
//	[tool.starelements.timeouts]
//	bundle = "3m"
//
// Only bundle is required; every other key has a default.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/esbuild"
	"github.com/starelements/starelements/pkg/integrations/unpkg"
	"github.com/starelements/starelements/pkg/lock"
)

// ProjectFile is the file configuration is read from.
const ProjectFile = "pyproject.toml"

const (
	DefaultOutput       = "static/js"
	DefaultFetchTimeout = 30 * time.Second
)

// Timeouts bounds each kind of blocking call.
type Timeouts struct {
	Fetch    time.Duration
	Download time.Duration
	Verify   time.Duration
	Bundle   time.Duration
	Minify   time.Duration
}

// DefaultTimeouts returns the timeouts used for unset keys.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Fetch:    DefaultFetchTimeout,
		Download: esbuild.DefaultDownloadTimeout,
		Verify:   esbuild.DefaultVerifyTimeout,
		Bundle:   esbuild.DefaultBundleTimeout,
		Minify:   esbuild.DefaultMinifyTimeout,
	}
}

// BundleConfig is the resolved project configuration. Paths are absolute.
type BundleConfig struct {
	ProjectRoot    string
	Bundle         []string
	OutputDir      string
	Minify         bool
	Registry       string
	EsbuildVersion string
	Target         string
	LockFile       string
	Retries        int
	Timeouts       Timeouts
}

// Default returns a configuration rooted at projectRoot with every default
// applied and an empty bundle list.
func Default(projectRoot string) *BundleConfig {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		root = projectRoot
	}
	return &BundleConfig{
		ProjectRoot:    root,
		OutputDir:      filepath.Join(root, DefaultOutput),
		Minify:         true,
		Registry:       unpkg.DefaultBaseURL,
		EsbuildVersion: esbuild.DefaultVersion,
		Target:         esbuild.DefaultTarget,
		LockFile:       filepath.Join(root, lock.DefaultFilename),
		Timeouts:       DefaultTimeouts(),
	}
}

// Load reads projectRoot/pyproject.toml. It returns (nil, nil) when the file
// is missing or has no bundle key. An empty bundle list is a valid config.
func Load(projectRoot string) (*BundleConfig, error) {
	path := filepath.Join(projectRoot, ProjectFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeFilesystem, err, "read %s", path)
	}
	return Parse(projectRoot, data)
}

// Parse decodes pyproject.toml contents for a project at projectRoot.
func Parse(projectRoot string, data []byte) (*BundleConfig, error) {
	var doc pyproject
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeInvalidConfig, err, "parse %s", ProjectFile)
	}
	if !md.IsDefined("tool", "starelements", "bundle") {
		return nil, nil
	}
	raw := doc.Tool.Starelements

	cfg := Default(projectRoot)
	cfg.Bundle = raw.Bundle
	if raw.Output != "" {
		cfg.OutputDir = resolve(cfg.ProjectRoot, raw.Output)
	}
	if raw.Minify != nil {
		cfg.Minify = *raw.Minify
	}
	if raw.Registry != "" {
		if err := sterrors.ValidateURL(raw.Registry); err != nil {
			return nil, sterrors.Wrap(sterrors.ErrCodeInvalidConfig, err, "registry")
		}
		cfg.Registry = raw.Registry
	}
	if raw.EsbuildVersion != "" {
		cfg.EsbuildVersion = raw.EsbuildVersion
	}
	if raw.Target != "" {
		cfg.Target = raw.Target
	}
	if raw.LockFile != "" {
		cfg.LockFile = resolve(cfg.ProjectRoot, raw.LockFile)
	}
	if raw.Retries < 0 {
		return nil, sterrors.New(sterrors.ErrCodeInvalidConfig, "retries must not be negative, got %d", raw.Retries)
	}
	cfg.Retries = raw.Retries

	t := raw.Timeouts
	for _, d := range []struct {
		name string
		src  Duration
		dst  *time.Duration
	}{
		{"fetch", t.Fetch, &cfg.Timeouts.Fetch},
		{"download", t.Download, &cfg.Timeouts.Download},
		{"verify", t.Verify, &cfg.Timeouts.Verify},
		{"bundle", t.Bundle, &cfg.Timeouts.Bundle},
		{"minify", t.Minify, &cfg.Timeouts.Minify},
	} {
		if d.src.Duration < 0 {
			return nil, sterrors.New(sterrors.ErrCodeInvalidConfig, "timeouts.%s must be positive", d.name)
		}
		if d.src.Duration > 0 {
			*d.dst = d.src.Duration
		}
	}
	return cfg, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Duration is a time.Duration written as a Go duration string ("90s", "2m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type pyproject struct {
	Tool struct {
		Starelements rawConfig `toml:"starelements"`
	} `toml:"tool"`
}

type rawConfig struct {
	Bundle         []string `toml:"bundle"`
	Output         string   `toml:"output"`
	Minify         *bool    `toml:"minify"`
	Registry       string   `toml:"registry"`
	EsbuildVersion string   `toml:"esbuild_version"`
	Target         string   `toml:"target"`
	LockFile       string   `toml:"lock_file"`
	Retries        int      `toml:"retries"`
	Timeouts       struct {
		Fetch    Duration `toml:"fetch"`
		Download Duration `toml:"download"`
		Verify   Duration `toml:"verify"`
		Bundle   Duration `toml:"bundle"`
		Minify   Duration `toml:"minify"`
	} `toml:"timeouts"`
}
