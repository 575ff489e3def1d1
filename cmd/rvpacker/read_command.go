package main

import (
	"github.com/spf13/cobra"

	"rvpacker/internal/runner"
)

func newReadCommand(ctx *commandContext) *cobra.Command {
	var pf processFlags
	var silent bool
	var ignore bool

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Extract game text into the translation directory",
		Long: `Extract all translatable text from the game's data files into per-category
translation files under <output>/translation. The default mode refuses to
run when translation files already exist; append merges newly added text
into them, and force rewrites them from scratch after confirmation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, flags, err := pf.parse()
			if err != nil {
				return err
			}
			r, err := ctx.newRunner()
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Read(runner.ReadOptions{
				Mode:   mode,
				Flags:  flags,
				Silent: silent,
				Ignore: ignore,
			}); err != nil {
				return err
			}
			ctx.reportElapsed(cmd.OutOrStdout(), r)
			return nil
		},
	}

	pf.register(cmd, true)
	cmd.Flags().BoolVarP(&ignore, "ignore", "I", false, "Skip lines listed in the ignore file when appending")
	cmd.Flags().BoolVarP(&silent, "silent", "S", false, "Suppress the force-mode confirmation prompt")
	_ = cmd.Flags().MarkHidden("silent")

	return cmd
}
