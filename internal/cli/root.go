package cli

import (
	"github.com/spf13/cobra"

	"github.com/starelements/starelements/pkg/buildinfo"
	"github.com/starelements/starelements/pkg/esbuild"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Running the root command without a subcommand bundles the project.
func (c *CLI) RootCommand() *cobra.Command {
	var project string
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "starelements bundles npm packages into ES modules",
		Long: `starelements downloads the npm packages listed in the [tool.starelements] table
of pyproject.toml, bundles each one into a single ES module with esbuild and
records exact versions and hashes in starelements.lock.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
				registerLogHooks(c.Logger)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBundle(cmd.Context(), project)
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(buildinfo.Template(esbuild.DefaultVersion))
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&project, "project", "C", ".", "project directory containing pyproject.toml")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.bundleCommand(&project))
	root.AddCommand(c.minifyCommand(&project))
	root.AddCommand(c.lockCommand(&project))
	root.AddCommand(c.cacheCommand(&project))
	root.AddCommand(c.completionCommand())

	return root
}
