package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand(project *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the esbuild binary cache",
	}

	cmd.AddCommand(c.cacheClearCommand(project))
	cmd.AddCommand(c.cachePathCommand(project))

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached esbuild binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project)
			if err != nil {
				return c.report(err)
			}
			m, err := c.newManager(cfg)
			if err != nil {
				return c.report(err)
			}

			count, err := m.Clear()
			if err != nil {
				return c.report(err)
			}
			if count == 0 {
				printInfo(c.out, "Cache is empty")
				return nil
			}
			printSuccess(c.out, "Cleared %d cached binaries", count)
			printDetail(c.out, "Directory: %s", m.BinDir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the esbuild binary path for the pinned version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project)
			if err != nil {
				return c.report(err)
			}
			m, err := c.newManager(cfg)
			if err != nil {
				return c.report(err)
			}
			fmt.Fprintln(c.out, m.CachedPath())
			return nil
		},
	}
}
