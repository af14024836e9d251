// ABOUTME: Implements `kumeoctl get` for fetching a resource from the runtime.
// ABOUTME: Accepts a resource type, optional id, and repeated key=value parameters.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/kumeo-client/client"
	"github.com/2389/kumeo-client/protocol"
)

func newGetCommand(ctx *commandContext) *cobra.Command {
	var resourceID string
	var params []string

	cmd := &cobra.Command{
		Use:   "get <resource-type> [resource-id]",
		Short: "Fetch a resource from the runtime",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := parseParams(params)
			if err != nil {
				return err
			}
			id := resourceID
			if len(args) > 1 {
				id = args[1]
			}

			return ctx.withClient(cmd.Context(), func(rc *client.RuntimeClient) error {
				resource, err := rc.GetResource(cmd.Context(), &protocol.ResourceRequest{
					ResourceType: args[0],
					ResourceID:   id,
					Parameters:   parameters,
				})
				if err != nil {
					return fmt.Errorf("fetching %s: %w", args[0], err)
				}

				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resource)
			})
		},
	}

	cmd.Flags().StringVar(&resourceID, "id", "", "Resource identifier")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Request parameter as key=value (repeatable)")
	return cmd
}

func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	parameters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		parameters[key] = value
	}
	return parameters, nil
}
