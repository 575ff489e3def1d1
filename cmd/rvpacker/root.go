package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var inputFlag string
	var outputFlag string
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&inputFlag, &outputFlag, &configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:           "rvpacker",
		Short:         "Extract and rebuild RPG Maker game text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&inputFlag, "input-dir", "i", "", "Game root directory (default: working directory)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output-dir", "o", "", "Output directory (default: input directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: console, json")

	rootCmd.AddCommand(newReadCommand(ctx))
	rootCmd.AddCommand(newWriteCommand(ctx))
	rootCmd.AddCommand(newPurgeCommand(ctx))
	rootCmd.AddCommand(newJSONCommand(ctx))
	rootCmd.AddCommand(newAssetCommand(ctx))

	return rootCmd
}
