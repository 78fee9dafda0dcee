package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/starelements/starelements/pkg/config"
	"github.com/starelements/starelements/pkg/pipeline"
)

const noConfigMessage = "No [tool.starelements] bundle config found in " + config.ProjectFile

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bundle",
		Short: "Bundle the packages listed in pyproject.toml",
		Long: `Bundle every package listed under [tool.starelements] bundle into an ES module.

Each entry is an npm specifier of the form [@scope/]name[@version][#entry]:

  [tool.starelements]
  bundle = [
      "lit@3",
      "@shoelace-style/shoelace@2.15.0#dist/shoelace.js",
  ]

Bundles are written to the output directory (default static/js)
and recorded in starelements.lock once every package succeeded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBundle(cmd.Context(), *project)
		},
	}
}

func (c *CLI) runBundle(ctx context.Context, project string) error {
	cfg, err := config.Load(project)
	if err != nil {
		return c.report(err)
	}
	if cfg == nil {
		printError(c.out, noConfigMessage)
		return ErrReported
	}

	runner, err := pipeline.New(cfg, c.Logger, c.opts...)
	if err != nil {
		return c.report(err)
	}

	prog := newProgress(c.Logger)
	msg := fmt.Sprintf("Bundling %d package(s)", len(cfg.Bundle))
	var spinner *Spinner
	if isTerminal(os.Stderr) && c.Logger.GetLevel() > LogDebug {
		spinner = c.startSpinner(ctx, os.Stderr, msg+"...")
	} else {
		printInfo(c.out, "%s", msg)
	}

	result, err := runner.Run(ctx, *cfg)
	if spinner != nil {
		c.stopSpinner(spinner)
	}
	if err != nil {
		return c.report(err)
	}

	for _, b := range result.Bundles {
		printSuccess(c.out, "%s@%s %s", b.Name, b.Version, StyleDim.Render(formatBytes(b.Size)))
		printFile(c.out, b.Path)
	}
	printDetail(c.out, "Lock file: %s", result.LockFile)
	prog.done(fmt.Sprintf("Bundled %d package(s)", len(result.Bundles)))
	return nil
}

// report prints err as a user-facing message. Cancellation is passed through
// so the process can exit with the interrupt status.
func (c *CLI) report(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	printError(c.out, "Error: %s", pipeline.Describe(err))
	return ErrReported
}
