package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scoreflow/internal/api"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent processing sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.Sessions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}
			if isTerminal(out) {
				fmt.Fprintln(out, renderSessionsTable(resp.Sessions))
				return nil
			}
			for _, s := range resp.Sessions {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", s.ID, s.ScoreID, s.Status, s.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to list")
	return cmd
}

func renderSessionsTable(sessions []api.SessionSummary) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		detail := s.ErrorMessage
		if detail == "" {
			detail = s.ReleaseAfter
		}
		rows = append(rows, []string{
			shortID(s.ID),
			s.ScoreID,
			s.Status,
			s.CreatedAt,
			detail,
		})
	}
	return renderTable(
		[]string{"Session", "Score", "Status", "Created", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func shortID(id string) string {
	if len(id) > 13 {
		return id[:13]
	}
	return id
}
