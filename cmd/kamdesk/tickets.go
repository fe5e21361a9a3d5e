package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/forms"
	"github.com/goatkit/kamdesk/internal/history"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/tickets"
)

func newTicketsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket"},
		Short:   "List and work on tickets",
	}
	cmd.AddCommand(newTicketsListCmd(a))
	cmd.AddCommand(newTicketsShowCmd(a))
	cmd.AddCommand(newTicketsAssignCmd(a))
	cmd.AddCommand(newTicketsStatusCmd(a))
	cmd.AddCommand(newTicketsCommentCmd(a))
	cmd.AddCommand(newTicketsDeleteCmd(a))
	cmd.AddCommand(newTicketsCreateCmd(a))
	cmd.AddCommand(newTicketsMineCmd(a))
	return cmd
}

// openList mounts the ticket list for the signed-in user.
func (a *app) openList(ctx context.Context) (*tickets.ListView, *models.Session, error) {
	s, err := a.requireSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	v := tickets.NewListView(a.client,
		tickets.WithNotifier(a.hub),
		tickets.WithLogger(a.logger),
		tickets.WithMetrics(a.metrics),
	)
	if err := v.Load(ctx); err != nil {
		return nil, nil, shown(err)
	}
	return v, s, nil
}

// visibleTicket returns a ticket the session is allowed to see in the list.
func visibleTicket(v *tickets.ListView, s *models.Session, id string) (models.Ticket, error) {
	for _, t := range tickets.Visible(v.Tickets(), s) {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, apierrors.New(apierrors.CodeUnknownTicket)
}

func newTicketsListCmd(a *app) *cobra.Command {
	var (
		f    tickets.Filters
		xlsx string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tickets visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, s, err := a.openList(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.SetFilters(f); err != nil {
				return err
			}
			list := v.Visible(s)

			if xlsx != "" {
				return writeFile(xlsx, func(w *os.File) error { return tickets.Export(w, list) })
			}
			return a.printer.Tickets(list)
		},
	}
	cmd.Flags().StringVar(&f.StartDate, "from", "", "only tickets created on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "only tickets created on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Department, "department", "all", "department, or all")
	cmd.Flags().StringVar(&f.Status, "status", "all", "status, or all")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write the list to an Excel workbook instead of printing it")
	return cmd
}

func newTicketsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ticket-id>",
		Short: "Show a ticket with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, s, err := a.openList(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			t, err := visibleTicket(v, s, args[0])
			if err != nil {
				return err
			}
			hints := tickets.HintsFor(t, s)
			return a.printer.Ticket(t, v.Comments(t.ID), &hints, history.AudienceStaff)
		},
	}
}

func newTicketsAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <ticket-id> <user-id|email>",
		Short: "Assign a ticket to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, s, err := a.openList(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if _, err := visibleTicket(v, s, args[0]); err != nil {
				return err
			}
			return shown(v.Assign(cmd.Context(), args[0], a.lookupUser(cmd.Context(), args[1])))
		},
	}
}

// lookupUser resolves an id or email against the user directory. When the
// directory is unavailable the argument is used as the id.
func (a *app) lookupUser(ctx context.Context, key string) models.UserRef {
	key = strings.TrimSpace(key)
	list, err := a.client.ListUsers(ctx)
	if err != nil {
		a.logger.Debug("user directory unavailable", "error", err)
		return models.UserRef{ID: key}
	}
	for _, u := range list {
		if u.ID == key || strings.EqualFold(u.Email, key) {
			return u.Ref()
		}
	}
	return models.UserRef{ID: key}
}

func newTicketsStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <ticket-id> <status>",
		Short: "Change a ticket's status (open, in-progress, resolved, closed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, s, err := a.openList(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if _, err := visibleTicket(v, s, args[0]); err != nil {
				return err
			}
			return shown(v.ChangeStatus(cmd.Context(), args[0], parseStatus(args[1])))
		},
	}
}

// parseStatus accepts a status in any case, with dashes or underscores
// for spaces. Unknown input is returned as-is for the view to reject.
func parseStatus(raw string) models.Status {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(raw))
	for _, s := range models.Statuses {
		if strings.EqualFold(string(s), norm) {
			return s
		}
	}
	return models.Status(raw)
}

func newTicketsCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <ticket-id> <message...>",
		Short: "Reply on a ticket as staff",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, s, err := a.openList(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if _, err := visibleTicket(v, s, args[0]); err != nil {
				return err
			}
			c, err := v.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return shown(err)
			}
			if a.printer.Structured() {
				return a.printer.Value(c)
			}
			return nil
		},
	}
}

func newTicketsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ticket-id>",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, s, err := a.openList(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if _, err := visibleTicket(v, s, args[0]); err != nil {
				return err
			}
			return shown(v.Delete(cmd.Context(), args[0]))
		},
	}
}

func newTicketsCreateCmd(a *app) *cobra.Command {
	var f forms.TicketForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Raise a new ticket",
		Long: "Raise a new ticket. Accommodation issues take --acc-location and --acc-issue;\n" +
			"other categories take --location and --subcategory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.Validate(); err != nil {
				var ve *forms.ValidationError
				if errors.As(err, &ve) {
					for _, fe := range ve.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
					}
				}
				return err
			}
			t, err := a.client.CreateTicket(cmd.Context(), f.Payload())
			if err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Value(t)
			}
			if err := a.printer.Message("Ticket submitted successfully"); err != nil {
				return err
			}
			if t.TrackingToken != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Track it with: kamdesk track %s\n", t.TrackingToken)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.FullName, "name", "", "your full name")
	flags.StringVar(&f.Email, "email", "", "your email address")
	flags.StringVar(&f.Phone, "phone", "", "your phone number")
	flags.StringVar(&f.Department, "department", "", "department: "+strings.Join(forms.Departments(), ", "))
	flags.StringVar(&f.Category, "category", "", "category: "+strings.Join(forms.Categories(), ", "))
	flags.StringVar(&f.StaffLocation, "location", "", "office location")
	flags.StringVar(&f.Subcategory, "subcategory", "", "sub-category of the category")
	flags.StringVar(&f.AccLocation, "acc-location", "", "accommodation location")
	flags.StringVar(&f.AccIssue, "acc-issue", "", "accommodation issue")
	flags.StringVar(&f.Title, "title", "", "short summary")
	flags.StringVar(&f.Details, "details", "", "full description")
	flags.StringVar(&f.ImagePath, "image", "", "optional image to attach")
	return cmd
}

func newTicketsMineCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List tickets raised with an email address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				s, err := a.requireSession(cmd.Context())
				if err != nil {
					return err
				}
				email = s.Email
			}
			list, err := a.client.TicketsByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			return a.printer.Tickets(list)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "requester email (defaults to the signed-in account)")
	return cmd
}

// writeFile creates path and hands it to write, removing it on failure.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
