package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/client"
	"github.com/goatkit/kamdesk/internal/localstore"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/testing/fakeapi"
)

type stubUsers struct {
	user *models.User
	err  error
	hits int
}

func (s *stubUsers) CurrentUser(context.Context) (*models.User, error) {
	s.hits++
	return s.user, s.err
}

func TestSessionService_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		users     *stubUsers
		wantNil   bool
		admin     bool
		superUser bool
	}{
		{"user", &stubUsers{user: &models.User{ID: "u1", Role: models.RoleUser}}, false, false, false},
		{"admin", &stubUsers{user: &models.User{ID: "u2", Role: models.RoleAdmin}}, false, true, false},
		{"super admin", &stubUsers{user: &models.User{ID: "u3", Role: models.RoleSuperAdmin}}, false, true, true},
		{"request error", &stubUsers{err: apierrors.New(apierrors.CodeUnauthorized)}, true, false, false},
		{"network error", &stubUsers{err: errors.New("dial tcp: refused")}, true, false, false},
		{"unknown role", &stubUsers{user: &models.User{ID: "u4", Role: "owner"}}, true, false, false},
		{"missing id", &stubUsers{user: &models.User{Role: models.RoleUser}}, true, false, false},
		{"nil user", &stubUsers{}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSessionService(tt.users, nil)
			sess := svc.Resolve(context.Background())
			assert.Equal(t, 1, tt.users.hits, "resolved exactly once, no retry")
			if tt.wantNil {
				assert.Nil(t, sess)
				return
			}
			require.NotNil(t, sess)
			assert.Equal(t, tt.admin, sess.IsAdmin)
			assert.Equal(t, tt.superUser, sess.IsSuperAdmin)
			assert.True(t, sess.HasRole(tt.users.user.Role))
		})
	}
}

func TestSessionService_Require(t *testing.T) {
	svc := NewSessionService(&stubUsers{err: errors.New("boom")}, nil)
	sess, err := svc.Require(context.Background())
	assert.Nil(t, sess)
	assert.True(t, apierrors.IsCode(err, apierrors.CodeNoSession))
	assert.True(t, apierrors.IsAuth(err))
}

func TestAuthService_LoginLogout(t *testing.T) {
	api := fakeapi.New(t)
	api.AddUser("Ada", "ada@kam.test", "secret1", models.RoleAdmin)

	store, err := localstore.Open(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)
	require.NoError(t, store.SetPref("sidebar:pinned", "true"))

	c, err := client.New(api.URL())
	require.NoError(t, err)
	auth := NewAuthService(c, store, nil)
	ctx := context.Background()

	msg, err := auth.Login(ctx, "ada@kam.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Login successful", msg)
	assert.NotEmpty(t, store.Token())
	require.NotEmpty(t, store.Cookies(api.URL()))

	// A fresh client seeded only from the store is signed in.
	reopened, err := localstore.Open(store.Path())
	require.NoError(t, err)
	c2, err := client.New(api.URL())
	require.NoError(t, err)
	c2.SetCookies(reopened.Cookies(api.URL()))
	sess := NewSessionService(c2, nil).Resolve(ctx)
	require.NotNil(t, sess)
	assert.True(t, sess.IsAdmin)

	msg, err = auth.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Logged out successfully", msg)
	assert.Empty(t, store.Token())
	assert.Empty(t, store.Cookies(api.URL()))
	assert.Equal(t, "true", store.Pref("sidebar:pinned"))
}

func TestAuthService_LogoutClearsEvenOnServerFailure(t *testing.T) {
	api := fakeapi.New(t)
	store, err := localstore.Open(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)
	require.NoError(t, store.SetToken("stale"))
	require.NoError(t, store.SetCookies(api.URL(), []*http.Cookie{{Name: "token", Value: "x", Expires: time.Now().Add(time.Hour)}}))

	c, err := client.New(api.URL())
	require.NoError(t, err)
	api.Fail("POST /api/logout", http.StatusInternalServerError, "nope")

	_, err = NewAuthService(c, store, nil).Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, "nope", apierrors.UserMessage(err))
	assert.Empty(t, store.Token())
	assert.Empty(t, store.Cookies(api.URL()))
}

func TestAuthService_LoginFailureKeepsStore(t *testing.T) {
	api := fakeapi.New(t)
	api.AddUser("Ada", "ada@kam.test", "secret1", models.RoleAdmin)
	store, err := localstore.Open(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)
	require.NoError(t, store.SetToken("previous"))

	c, err := client.New(api.URL())
	require.NoError(t, err)
	_, err = NewAuthService(c, store, nil).Login(context.Background(), "ada@kam.test", "bad")
	assert.True(t, apierrors.IsCode(err, apierrors.CodeLoginFailed))
	assert.Equal(t, "previous", store.Token())
}
