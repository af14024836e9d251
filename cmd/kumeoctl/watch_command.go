// ABOUTME: Implements `kumeoctl watch` for streaming runtime events to the terminal.
// ABOUTME: Subscribes to EVENT and COMMAND envelopes until interrupted.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/kumeo-client/client"
	"github.com/2389/kumeo-client/protocol"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream events and commands from the runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withClient(sigCtx, func(rc *client.RuntimeClient) error {
				rc.RegisterHandler(protocol.TypeEvent, printEnvelope("event", color.New(color.FgCyan)))
				rc.RegisterHandler(protocol.TypeCommand, printEnvelope("command", color.New(color.FgYellow)))

				fmt.Printf("watching %s (ctrl-c to stop)\n", rc.SocketPath())
				<-sigCtx.Done()
				return nil
			})
		},
	}
}

func printEnvelope(kind string, c *color.Color) client.Handler {
	return func(_ context.Context, msg *protocol.Message) error {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			payload = []byte(fmt.Sprintf("%v", msg.Payload))
		}

		sec := int64(msg.Timestamp)
		nsec := int64((msg.Timestamp - float64(sec)) * float64(time.Second))
		stamp := time.Unix(sec, nsec).Format("15:04:05")

		c.Printf("%s %s ", stamp, kind)
		fmt.Printf("%s\n", payload)
		return nil
	}
}
