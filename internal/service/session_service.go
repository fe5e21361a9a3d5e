// Package service holds the flows that sit between the API client and the
// views: resolving the current session and signing in or out.
package service

import (
	"context"
	"log/slog"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/models"
)

// UserSource returns the account behind the current credentials.
type UserSource interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// SessionService resolves who is looking at a view.
type SessionService struct {
	users  UserSource
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(users UserSource, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{users: users, logger: logger}
}

// Resolve asks the API for the current user once and derives the role
// flags. Any failure yields nil: callers route to sign-in and never show
// the failure itself.
func (s *SessionService) Resolve(ctx context.Context) *models.Session {
	u, err := s.users.CurrentUser(ctx)
	if err != nil {
		s.logger.Debug("no session", "error", err)
		return nil
	}
	if u == nil || u.ID == "" || !u.Role.Valid() {
		s.logger.Debug("no session: unusable current user payload")
		return nil
	}
	return models.NewSession(*u)
}

// Require is Resolve for callers that cannot continue without a session.
func (s *SessionService) Require(ctx context.Context) (*models.Session, error) {
	if sess := s.Resolve(ctx); sess != nil {
		return sess, nil
	}
	return nil, apierrors.New(apierrors.CodeNoSession)
}
