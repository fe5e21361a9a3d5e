package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/dashboard"
)

func newDashboardCmd(a *app) *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show ticket and user metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := dashboard.NewView(a.client, a.sessions, a.hub, a.logger)
			defer v.Close()
			r, err := v.Load(cmd.Context())
			if err != nil {
				if apierrors.IsAuth(err) {
					return err
				}
				return shown(err)
			}
			if xlsx != "" {
				return writeFile(xlsx, func(w *os.File) error { return dashboard.Export(w, *r) })
			}
			return a.printer.Dashboard(*r)
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write the report to an Excel workbook instead of printing it")
	return cmd
}
