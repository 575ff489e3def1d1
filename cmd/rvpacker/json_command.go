package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rvpacker/internal/gamedata"
)

func newJSONCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Manage JSON representations of legacy engine data files",
	}
	cmd.AddCommand(newJSONGenerateCommand(ctx))
	cmd.AddCommand(newJSONWriteCommand(ctx))
	return cmd
}

func newJSONGenerateCommand(ctx *commandContext) *cobra.Command {
	var readMode string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Decode legacy data files into a json directory",
		Long: `Decode every XP/VX/VX Ace data file into an editable JSON representation
under <input>/json. Existing representations are kept unless a force read
mode is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := gamedata.ParseReadMode(readMode)
			if err != nil {
				return fmt.Errorf("--read-mode: %w", err)
			}
			r, err := ctx.newRunner()
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.JSONGenerate(mode.IsForce()); err != nil {
				return err
			}
			ctx.reportElapsed(cmd.OutOrStdout(), r)
			return nil
		},
	}

	cmd.Flags().StringVarP(&readMode, "read-mode", "r", "default", "Force mode regenerates existing representations")

	return cmd
}

func newJSONWriteCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Encode the json directory back into native data files",
		Long: `Encode every representation in <input>/json back into the engine's native
data format under <input>/json-output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.newRunner()
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.JSONWrite(); err != nil {
				return err
			}
			ctx.reportElapsed(cmd.OutOrStdout(), r)
			return nil
		},
	}
	return cmd
}
