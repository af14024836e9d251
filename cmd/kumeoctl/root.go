// ABOUTME: Root cobra command for kumeoctl with the persistent flag set.
// ABOUTME: Wires subcommands and the shared command context together.

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var socketFlag string
	var configFlag string
	var timeoutFlag string
	var verboseFlag bool

	ctx := newCommandContext(&socketFlag, &configFlag, &timeoutFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "kumeoctl",
		Short:         "Talk to a local Kumeo runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&socketFlag, "socket", "", "Path to the runtime socket")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&timeoutFlag, "timeout", "", "Request timeout, e.g. 10s")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newPingCommand(ctx))
	rootCmd.AddCommand(newAgentsCommand(ctx))
	rootCmd.AddCommand(newGetCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))

	return rootCmd
}
