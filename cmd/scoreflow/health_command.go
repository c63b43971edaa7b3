package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show daemon health and engine availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:        %s\n", health.Status)
			fmt.Fprintf(out, "Timestamp:     %s\n", health.Timestamp)
			fmt.Fprintf(out, "OMR engine:    %s\n", availability(health.ServiceAvailability.OMREngine))
			fmt.Fprintf(out, "Render engine: %s\n", availability(health.ServiceAvailability.RenderEngine))
			return nil
		},
	}
}

func availability(available bool) string {
	if available {
		return "available"
	}
	return "unavailable (placeholder output)"
}
