// Package auth inspects locally stored credentials. Tokens are decoded
// without signature verification: the server is the only party that can
// validate them, the client only reads expiry and identity hints.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for tokens that are not JWTs (opaque tokens).
var ErrNotJWT = errors.New("token is not a JWT")

// TokenInfo holds the unverified claims of a stored token.
type TokenInfo struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token expired at or before now. Tokens
// without an exp claim never expire client-side.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes raw without verifying its signature.
func Inspect(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	var info TokenInfo
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else {
		info.Subject = firstString(claims, "id", "_id", "userId", "user_id")
	}
	info.Email = firstString(claims, "email")
	info.Role = firstString(claims, "role")
	return info, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// TokenStore is where the bearer token lives (the "local storage").
type TokenStore interface {
	Token() string
}

// TokenSource hands the client the bearer token to send. Expired JWTs are
// withheld so the server sees an anonymous request instead of a stale one;
// opaque tokens are passed through untouched.
type TokenSource struct {
	store  TokenStore
	now    func() time.Time
	logger *slog.Logger
}

// NewTokenSource wraps store.
func NewTokenSource(store TokenStore, logger *slog.Logger) *TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenSource{store: store, now: time.Now, logger: logger}
}

// Token returns the token to send, or "".
func (s *TokenSource) Token() string {
	if s == nil || s.store == nil {
		return ""
	}
	raw := s.store.Token()
	if raw == "" {
		return ""
	}
	info, err := Inspect(raw)
	if err != nil {
		return raw
	}
	if info.Expired(s.now()) {
		s.logger.Debug("stored bearer token expired", "expired_at", info.ExpiresAt)
		return ""
	}
	return raw
}
