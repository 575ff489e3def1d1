package main

import (
	"github.com/spf13/cobra"

	"rvpacker/internal/runner"
)

func newPurgeCommand(ctx *commandContext) *cobra.Command {
	var pf processFlags
	var createIgnore bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove stale lines from the translation files",
		Long: `Remove translation lines whose source text no longer occurs in the game's
data files, along with lines that never received a translation. With
--create-ignore the removed sources are recorded in the ignore file so a
later append read does not bring them back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, flags, err := pf.parse()
			if err != nil {
				return err
			}
			r, err := ctx.newRunner()
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Purge(runner.PurgeOptions{
				Flags:        flags,
				CreateIgnore: createIgnore,
			}); err != nil {
				return err
			}
			ctx.reportElapsed(cmd.OutOrStdout(), r)
			return nil
		},
	}

	pf.register(cmd, false)
	cmd.Flags().BoolVarP(&createIgnore, "create-ignore", "c", false, "Record purged sources in the ignore file")

	return cmd
}
