package tickets

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/client"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/notifications"
)

// TrackAPI is the public, credential-free part of the API client.
type TrackAPI interface {
	TrackTicket(ctx context.Context, token string) (*models.Ticket, error)
	AddTrackerComment(ctx context.Context, token, text string) (*client.CommentEnvelope, error)
}

// TrackState is the display state of the tracking page.
type TrackState int

// Tracking states.
const (
	TrackIdle TrackState = iota
	TrackLoading
	TrackFound
	TrackNotFound
)

func (s TrackState) String() string {
	switch s {
	case TrackLoading:
		return "loading"
	case TrackFound:
		return "found"
	case TrackNotFound:
		return "not_found"
	default:
		return "idle"
	}
}

// TrackView is what someone following a ticket through its tracking link
// sees. Every load failure is shown the same way: not found.
type TrackView struct {
	api    TrackAPI
	notify notifications.Hub
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	token    string
	ticket   *models.Ticket
	comments []models.Comment
	state    TrackState
	sending  bool
	closed   bool
}

// NewTrackView creates a tracking view. hub and logger may be nil.
func NewTrackView(api TrackAPI, hub notifications.Hub, logger *slog.Logger) *TrackView {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackView{api: api, notify: hub, logger: logger, now: time.Now}
}

// Load fetches the ticket behind token.
func (v *TrackView) Load(ctx context.Context, token string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.token = token
	v.state = TrackLoading
	v.mu.Unlock()

	t, err := v.api.TrackTicket(ctx, token)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	if err != nil || t == nil {
		v.logger.Debug("tracked ticket unavailable", "error", err)
		v.ticket = nil
		v.comments = nil
		v.state = TrackNotFound
		return apierrors.Wrap(apierrors.CodeTrackingMissing, "", err)
	}
	v.ticket = t
	v.comments = append([]models.Comment{}, t.Comments...)
	v.state = TrackFound
	return nil
}

// Close detaches the view; later responses are ignored.
func (v *TrackView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// State returns the display state.
func (v *TrackView) State() TrackState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Ticket returns the tracked ticket, if found.
func (v *TrackView) Ticket() (models.Ticket, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ticket == nil {
		return models.Ticket{}, false
	}
	return *v.ticket, true
}

// Comments returns the thread.
func (v *TrackView) Comments() []models.Comment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Comment(nil), v.comments...)
}

// Sending reports whether a comment submission is in flight.
func (v *TrackView) Sending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sending
}

// AddComment posts a comment as the tracker and merges the echo.
func (v *TrackView) AddComment(ctx context.Context, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	v.mu.Lock()
	token, found := v.token, v.state == TrackFound
	v.mu.Unlock()

	if text == "" {
		err := apierrors.New(apierrors.CodeEmptyComment)
		notifications.Error(v.notify, err.Message)
		return models.Comment{}, err
	}
	if !found {
		err := apierrors.New(apierrors.CodeTrackingMissing)
		notifications.Error(v.notify, err.Message)
		return models.Comment{}, err
	}

	v.setSending(true)
	env, err := v.api.AddTrackerComment(ctx, token, text)
	v.setSending(false)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return models.Comment{}, nil
	}
	if err != nil {
		v.logger.Warn("tracker comment failed", "error", err)
		notifications.Error(v.notify, apierrors.UserMessage(err))
		return models.Comment{}, err
	}
	v.comments = AppendComment(v.comments, echoed(env, text, models.SenderUser), v.now())
	notifications.Success(v.notify, "Comment sent")
	return v.comments[len(v.comments)-1], nil
}

func (v *TrackView) setSending(b bool) {
	v.mu.Lock()
	v.sending = b
	v.mu.Unlock()
}
