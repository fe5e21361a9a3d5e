package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goatkit/kamdesk/internal/client"
)

// Authenticator is the part of the API client that signs in and out.
type Authenticator interface {
	BaseURL() string
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	Logout(ctx context.Context) (string, error)
	Cookies() []*http.Cookie
}

// CredentialStore persists credentials between invocations.
type CredentialStore interface {
	SetToken(token string) error
	SetCookies(apiURL string, cookies []*http.Cookie) error
	ClearCredentials(apiURL string) error
}

// AuthService signs in and out and keeps the local credential store in
// step with the server session.
type AuthService struct {
	api    Authenticator
	store  CredentialStore
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(api Authenticator, store CredentialStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: api, store: store, logger: logger}
}

// Login authenticates and persists the session cookie and bearer token.
// It returns the server's greeting.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	cookies := res.Cookies
	if len(cookies) == 0 {
		cookies = s.api.Cookies()
	}
	if err := s.store.SetCookies(s.api.BaseURL(), cookies); err != nil {
		return "", fmt.Errorf("persist session cookie: %w", err)
	}
	// An empty token clears any stale one from a previous login.
	if err := s.store.SetToken(res.Token); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	s.logger.Debug("signed in", "email", email, "cookies", len(cookies), "bearer", res.Token != "")
	return res.Message, nil
}

// Logout ends the server session and always forgets local credentials,
// even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) (string, error) {
	msg, apiErr := s.api.Logout(ctx)
	if apiErr != nil {
		s.logger.Warn("server logout failed; clearing local credentials anyway", "error", apiErr)
	}
	if err := s.store.ClearCredentials(s.api.BaseURL()); err != nil {
		return msg, errors.Join(apiErr, fmt.Errorf("clear credentials: %w", err))
	}
	return msg, apiErr
}
