package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goatkit/kamdesk/internal/auth"
	"github.com/goatkit/kamdesk/internal/client"
	"github.com/goatkit/kamdesk/internal/config"
	"github.com/goatkit/kamdesk/internal/localstore"
	"github.com/goatkit/kamdesk/internal/metrics"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/notifications"
	"github.com/goatkit/kamdesk/internal/render"
	"github.com/goatkit/kamdesk/internal/service"
	"github.com/goatkit/kamdesk/internal/ui"
)

// Commands annotated offline run without config, state or client.
const annotationOffline = "kamdesk/offline"

// app is what every command shares for one invocation.
type app struct {
	viper       *viper.Viper
	configPath  string
	metricsFile string
	input       *bufio.Reader

	cfg      *config.Config
	logger   *slog.Logger
	store    *localstore.Store
	client   *client.Client
	registry *prometheus.Registry
	metrics  *metrics.ClientMetrics
	sessions *service.SessionService
	auth     *service.AuthService
	hub      notifications.Hub
	printer  *render.Printer
	nav      *ui.State
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Annotations[annotationOffline] != "" {
		return nil
	}

	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newCommandLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	store, err := localstore.Open(cfg.StateFile)
	if err != nil {
		return err
	}
	a.store = store

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewClientMetrics(a.registry)
	c, err := client.New(cfg.APIURL,
		client.WithTokenSource(auth.NewTokenSource(store, a.logger)),
		client.WithMetrics(a.metrics),
		client.WithLogger(a.logger),
		client.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return err
	}
	c.SetCookies(store.Cookies(c.BaseURL()))
	a.client = c

	a.sessions = service.NewSessionService(c, a.logger)
	a.auth = service.NewAuthService(c, store, a.logger)
	a.hub = notifications.NewWriterHub(cmd.ErrOrStderr())

	a.printer, err = render.NewPrinter(cmd.OutOrStdout(), cfg.Output, render.WithAPIURL(cfg.APIURL))
	if err != nil {
		return err
	}

	a.nav = ui.NewState(store)
	a.nav.SetActive(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "))

	a.logger.Debug("command started", "command", cmd.CommandPath(), "api_url", cfg.APIURL, "state_file", store.Path())
	return nil
}

func (a *app) close() error {
	if a.registry == nil || a.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// requireSession resolves the signed-in user or fails with a sign-in hint.
func (a *app) requireSession(ctx context.Context) (*models.Session, error) {
	return a.sessions.Require(ctx)
}

// shownError marks a failure the notice hub already printed.
type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return shownError{err: err}
}

func alreadyShown(err error) bool {
	var s shownError
	return errors.As(err, &s)
}
