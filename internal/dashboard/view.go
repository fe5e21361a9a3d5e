// Package dashboard holds the metrics dashboard: loading the aggregates,
// deriving the chart series and exporting them as a workbook.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/notifications"
)

// MetricsAPI fetches the dashboard aggregates.
type MetricsAPI interface {
	DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error)
}

// SessionSource resolves the current session; nil means signed out.
type SessionSource interface {
	Resolve(ctx context.Context) *models.Session
}

// View is the state behind the dashboard page.
type View struct {
	api      MetricsAPI
	sessions SessionSource
	notify   notifications.Hub
	logger   *slog.Logger

	mu     sync.Mutex
	report *Report
	closed bool
}

// NewView creates a dashboard view. hub and logger may be nil.
func NewView(api MetricsAPI, sessions SessionSource, hub notifications.Hub, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{api: api, sessions: sessions, notify: hub, logger: logger}
}

// Load checks for a session, then fetches and derives the report. Without
// a session nothing is fetched and auth:no_session is returned.
func (v *View) Load(ctx context.Context) (*Report, error) {
	if v.sessions.Resolve(ctx) == nil {
		return nil, apierrors.New(apierrors.CodeNoSession)
	}

	m, err := v.api.DashboardMetrics(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, nil
	}
	if err != nil {
		v.report = nil
		v.logger.Warn("load dashboard metrics failed", "error", err)
		notifications.Error(v.notify, apierrors.UserMessage(err))
		return nil, err
	}
	r := Build(*m)
	v.report = &r
	return &r, nil
}

// Report returns the last loaded report, or nil.
func (v *View) Report() *Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report
}

// Close detaches the view; later responses are ignored.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}
