package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/goatkit/kamdesk/internal/history"
	"github.com/goatkit/kamdesk/internal/tickets"
)

func newTrackCmd(a *app) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "track <token>",
		Short: "Follow a ticket with its tracking link, no sign-in needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := tickets.NewTrackView(a.client, a.hub, a.logger)
			defer v.Close()

			token := trackingToken(args[0])
			if err := v.Load(cmd.Context(), token); err != nil {
				return err
			}
			if cmd.Flags().Changed("comment") {
				if _, err := v.AddComment(cmd.Context(), comment); err != nil {
					return shown(err)
				}
			}
			t, _ := v.Ticket()
			return a.printer.Ticket(t, v.Comments(), nil, history.AudienceTracker)
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "add a comment before showing the ticket")
	return cmd
}

// trackingToken accepts a bare token or a full tracking link.
func trackingToken(arg string) string {
	arg = strings.TrimRight(strings.TrimSpace(arg), "/")
	if i := strings.LastIndex(arg, "/"); i >= 0 {
		return arg[i+1:]
	}
	return arg
}
