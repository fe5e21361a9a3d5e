package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/users"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage accounts and roles",
	}
	cmd.AddCommand(newUsersListCmd(a))
	cmd.AddCommand(newUsersPromoteCmd(a))
	cmd.AddCommand(newUsersCreateCmd(a))
	return cmd
}

func (a *app) openUsers(ctx context.Context) (*users.AdminView, *models.Session, error) {
	s, err := a.requireSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	v := users.NewAdminView(a.client,
		users.WithNotifier(a.hub),
		users.WithLogger(a.logger),
		users.WithMetrics(a.metrics),
	)
	return v, s, nil
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with the roles you may give them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, s, err := a.openUsers(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.Load(cmd.Context()); err != nil {
				return shown(err)
			}
			return a.printer.Users(v.Users(), s)
		},
	}
}

func newUsersPromoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <user-id> <role>",
		Short: "Change an account's role (user or admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := a.openUsers(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			// Load first so locked accounts are refused locally.
			if err := v.Load(cmd.Context()); err != nil {
				return shown(err)
			}
			return shown(v.Promote(cmd.Context(), args[0], parseRole(args[1])))
		},
	}
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var in users.NewUser
	var role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := a.openUsers(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if in.Password == "" && in.Name != "" && in.Email != "" {
				if in.Password, err = a.prompt(cmd, "Password: ", true); err != nil {
					return err
				}
			}
			in.Role = parseRole(role)
			u, err := v.Create(cmd.Context(), in)
			if err != nil {
				return shown(err)
			}
			if a.printer.Structured() {
				return a.printer.Value(u)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "role: user or admin")
	return cmd
}

// parseRole accepts "Admin", "super-admin" and the like.
func parseRole(raw string) models.Role {
	return models.Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
}
