package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starelements/starelements/pkg/pipeline"
)

// minifyCommand creates the minify command.
func (c *CLI) minifyCommand(project *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "minify <source>",
		Short: "Minify a JavaScript file with esbuild",
		Long: `Minify a single JavaScript file without bundling.

The result is written to --output when given, otherwise to stdout. The esbuild
version, registry and timeouts come from pyproject.toml when present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project)
			if err != nil {
				return c.report(err)
			}
			m, err := pipeline.NewMinifier(cfg, c.Logger, c.opts...)
			if err != nil {
				return c.report(err)
			}

			code, err := m.Minify(cmd.Context(), args[0], output)
			if err != nil {
				return c.report(err)
			}
			if output == "" {
				fmt.Fprint(c.out, code)
				return nil
			}
			printSuccess(c.out, "Minified %s %s", args[0], StyleDim.Render(formatBytes(int64(len(code)))))
			printFile(c.out, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
