package cli

import (
	"github.com/spf13/cobra"

	"github.com/starelements/starelements/pkg/lock"
)

// lockCommand creates the lock management command.
func (c *CLI) lockCommand(project *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect starelements.lock",
	}
	cmd.AddCommand(c.lockVerifyCommand(project))
	return cmd
}

// lockVerifyCommand creates the "lock verify" subcommand.
func (c *CLI) lockVerifyCommand(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check bundles on disk against their recorded hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project)
			if err != nil {
				return c.report(err)
			}
			lf, err := lock.Read(cfg.LockFile)
			if err != nil {
				return c.report(err)
			}
			if len(lf.Packages) == 0 {
				printInfo(c.out, "No packages locked in %s", cfg.LockFile)
				return nil
			}

			drifts, err := lock.Verify(lf, cfg.OutputDir)
			if err != nil {
				return c.report(err)
			}
			if len(drifts) == 0 {
				printSuccess(c.out, "%d bundle(s) match %s", len(lf.Packages), cfg.LockFile)
				return nil
			}

			for _, d := range drifts {
				switch d.Kind {
				case lock.DriftMissing:
					printError(c.out, "%s: bundle missing", d.Name)
				default:
					printError(c.out, "%s: bundle modified", d.Name)
					printDetail(c.out, "expected %s", d.Expected)
					printDetail(c.out, "actual   %s", d.Actual)
				}
				printFile(c.out, d.Path)
			}
			printWarning(c.out, "%d of %d bundle(s) drifted; run %s bundle to rebuild", len(drifts), len(lf.Packages), appName)
			return ErrReported
		},
	}
}
