// ABOUTME: Implements `kumeoctl ping` for checking runtime liveness.
// ABOUTME: Reports the round-trip time of one or more ping exchanges.

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/kumeo-client/client"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping the runtime and report round-trip time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			return ctx.withClient(cmd.Context(), func(rc *client.RuntimeClient) error {
				green := color.New(color.FgGreen)
				for i := 0; i < count; i++ {
					rtt, err := rc.Ping(cmd.Context())
					if err != nil {
						return fmt.Errorf("ping: %w", err)
					}
					green.Print("✓ ")
					fmt.Printf("runtime at %s answered in %s\n", rc.SocketPath(), rtt.Round(time.Microsecond))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of pings to send")
	return cmd
}
