package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/render"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = a.prompt(cmd, "Email: ", false); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt(cmd, "Password: ", true); err != nil {
					return err
				}
			}
			msg, err := a.auth.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			return a.printer.Message(msg)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget local credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := a.auth.Logout(cmd.Context())
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Logged out"
			}
			return a.printer.Message(msg)
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Value(s)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", s.Name, s.Email)
			fmt.Fprintf(out, "Role: %s\n", render.RoleLabel(s.Role))
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	var sendReset bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the profile, optionally emailing a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if !sendReset {
				return a.printer.Value(s)
			}
			msg, err := a.client.ForgotPassword(cmd.Context(), s.Email)
			if err != nil {
				return err
			}
			return a.printer.Message(msg)
		},
	}
	cmd.Flags().BoolVar(&sendReset, "reset-password", false, "email a password reset link to this account")
	return cmd
}

func newForgotPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.ForgotPassword(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return a.printer.Message(msg)
		},
	}
}

func newResetPasswordCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt(cmd, "New password: ", true); err != nil {
					return err
				}
			}
			msg, err := a.client.ResetPassword(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			return a.printer.Message(msg)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "new password (prompted when omitted)")
	return cmd
}

// prompt reads one line from the command input. Secrets are read without
// echo when stdin is a terminal.
func (a *app) prompt(cmd *cobra.Command, label string, secret bool) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		if secret {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(b), nil
		}
	}
	if a.input == nil {
		a.input = bufio.NewReader(in)
	}
	line, err := a.input.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", apierrors.NewWithMessage(apierrors.CodeMissingArgument, "Missing "+strings.TrimSuffix(strings.ToLower(label), ": "))
	}
	return line, nil
}
