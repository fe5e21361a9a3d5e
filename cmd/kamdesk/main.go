// Command kamdesk is the terminal client of the KAM helpdesk.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/config"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() (*cobra.Command, *app) {
	v := config.New()
	a := &app{viper: v}

	cmd := &cobra.Command{
		Use:           "kamdesk",
		Short:         "KAM helpdesk client",
		Long:          "kamdesk raises, tracks and manages helpdesk tickets from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.String("api-url", "", "helpdesk API base URL")
	flags.String("state-file", "", "where credentials and preferences are kept")
	flags.StringP("output", "o", "", "output format: table, json or yaml")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Duration("timeout", 0, "per-request timeout (0 keeps the transport default)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write client request metrics to this file on exit")

	for key, name := range map[string]string{
		config.KeyAPIURL:    "api-url",
		config.KeyStateFile: "state-file",
		config.KeyOutput:    "output",
		config.KeyLogLevel:  "log-level",
		config.KeyTimeout:   "timeout",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newProfileCmd(a))
	cmd.AddCommand(newForgotPasswordCmd(a))
	cmd.AddCommand(newResetPasswordCmd(a))
	cmd.AddCommand(newTicketsCmd(a))
	cmd.AddCommand(newTrackCmd(a))
	cmd.AddCommand(newUsersCmd(a))
	cmd.AddCommand(newDashboardCmd(a))
	cmd.AddCommand(newNavCmd(a))
	return cmd, a
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Annotations: map[string]string{
			annotationOffline: "true",
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kamdesk %s (commit: %s)\n", Version, Commit)
		},
	}
}

// execute runs cmd and returns the exit code. Metrics are written whether
// or not the command succeeded.
func execute(cmd *cobra.Command, a *app) int {
	err := cmd.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	} else if cerr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", cerr)
	}
	if err != nil {
		if !alreadyShown(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", describe(err))
		}
		return 1
	}
	return 0
}

// describe turns err into what the user should read.
func describe(err error) string {
	if apierrors.IsCode(err, apierrors.CodeNoSession) || apierrors.IsCode(err, apierrors.CodeUnauthorized) {
		return apierrors.UserMessage(err) + " (run: kamdesk login)"
	}
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func main() {
	os.Exit(execute(newRootCmd()))
}
