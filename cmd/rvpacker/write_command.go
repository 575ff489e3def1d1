package main

import (
	"github.com/spf13/cobra"
)

func newWriteCommand(ctx *commandContext) *cobra.Command {
	var pf processFlags

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Rebuild game files with translations applied",
		Long: `Rebuild the game's data files under <output>/output, substituting every
extracted line with its translation from the translation directory. Lines
without a translation keep their original text.`,
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

			if err := r.Write(flags); err != nil {
				return err
			}
			ctx.reportElapsed(cmd.OutOrStdout(), r)
			return nil
		},
	}

	pf.register(cmd, false)

	return cmd
}
