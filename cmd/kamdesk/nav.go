package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goatkit/kamdesk/internal/ui"
)

func newNavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Show the navigation menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printNav(cmd, a)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pin",
		Short: "Keep the menu expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.nav.SetPinned(true); err != nil {
				return err
			}
			return printNav(cmd, a)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unpin",
		Short: "Collapse the menu to icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.nav.SetPinned(false); err != nil {
				return err
			}
			return printNav(cmd, a)
		},
	})
	return cmd
}

type navView struct {
	Pinned bool         `json:"pinned" yaml:"pinned"`
	Items  []ui.NavItem `json:"items" yaml:"items"`
}

func printNav(cmd *cobra.Command, a *app) error {
	items := a.nav.NavItems()
	if a.printer.Structured() {
		return a.printer.Value(navView{Pinned: a.nav.Pinned(), Items: items})
	}
	out := cmd.OutOrStdout()
	for _, item := range items {
		marker := " "
		if item.Active {
			marker = ">"
		}
		if a.nav.Expanded() {
			fmt.Fprintf(out, "%s %-10s kamdesk %s\n", marker, item.Title, item.Command)
		} else {
			fmt.Fprintf(out, "%s %s\n", marker, item.Title[:1])
		}
	}
	return nil
}
