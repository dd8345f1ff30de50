package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var dataDirFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag, &dataDirFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:           "rehearsal",
		Short:         "Manage rehearsal shows, tracks, and markers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return ctx.ensure()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output and log to stderr")

	for _, cmd := range newShowCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newTrackCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newMarkerCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
