// Package cli implements the starelements command-line interface.
//
// # Commands
//
//   - bundle: bundle every package in [tool.starelements] (also the default
//     when no command is given)
//   - minify: minify a single JavaScript file with esbuild
//   - lock verify: check bundles on disk against starelements.lock
//   - cache: show or clear the esbuild binary cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every registry request and bundle through the observability hooks.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/starelements/starelements/pkg/config"
	"github.com/starelements/starelements/pkg/esbuild"
	"github.com/starelements/starelements/pkg/pipeline"
)

const appName = "starelements"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrReported is returned by commands that already printed their failure.
var ErrReported = errors.New("error already reported")

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	logOut io.Writer
	out    io.Writer
	opts   []pipeline.Option
}

// New creates a new CLI instance logging to w at level. Status output goes
// to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		logOut: w,
		out:    os.Stdout,
	}
}

// SetOutput redirects status output.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// ExitCode maps a command error to a process exit code: 0 on success, 130
// when interrupted and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// loadConfig reads the project configuration, falling back to defaults for
// commands that do not need a bundle list.
func loadConfig(projectRoot string) (*config.BundleConfig, error) {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(projectRoot), nil
	}
	return cfg, nil
}

func (c *CLI) newManager(cfg *config.BundleConfig) (*esbuild.Manager, error) {
	return pipeline.NewManager(cfg, c.Logger, c.opts...)
}
