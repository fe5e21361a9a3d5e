// Package users holds the user administration view: the account list,
// role changes and account creation.
package users

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/metrics"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/notifications"
	"github.com/goatkit/kamdesk/internal/ui"
)

// UserAPI is the part of the API client the admin view uses.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	PromoteRole(ctx context.Context, userID string, role models.Role) (*models.PromoteResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

const actionPromote = "promote"

// NewUser is the input of Create.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// AdminView is the state behind the users page.
type AdminView struct {
	api      UserAPI
	notify   notifications.Hub
	logger   *slog.Logger
	metrics  *metrics.ClientMetrics
	inflight *ui.InFlight

	mu      sync.Mutex
	users   []models.User
	loaded  bool
	loadErr error
	closed  bool
}

// Option configures an AdminView.
type Option func(*AdminView)

// WithNotifier sets where notices go.
func WithNotifier(h notifications.Hub) Option {
	return func(v *AdminView) { v.notify = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *AdminView) { v.logger = l }
}

// WithMetrics counts locally rejected actions.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(v *AdminView) { v.metrics = m }
}

// NewAdminView creates an empty admin view.
func NewAdminView(api UserAPI, opts ...Option) *AdminView {
	v := &AdminView{api: api, inflight: ui.NewInFlight()}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Load replaces the account list with the server's.
func (v *AdminView) Load(ctx context.Context) error {
	if v.isClosed() {
		return nil
	}
	users, err := v.api.ListUsers(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	if err != nil {
		v.users = []models.User{}
		v.loaded = false
		v.loadErr = err
		v.logger.Warn("load users failed", "error", err)
		notifications.Error(v.notify, "Failed to load users")
		return err
	}
	v.users = users
	v.loaded = true
	v.loadErr = nil

	ids := make(map[string]bool, len(users))
	for _, u := range users {
		ids[u.ID] = true
	}
	v.inflight.Retain(ids)
	return nil
}

// Close detaches the view; later responses are ignored.
func (v *AdminView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// Users returns the loaded accounts in server order.
func (v *AdminView) Users() []models.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.User(nil), v.users...)
}

// User returns one loaded account.
func (v *AdminView) User(id string) (models.User, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, u := range v.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Loaded reports whether the last load succeeded, and its error otherwise.
func (v *AdminView) Loaded() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded, v.loadErr
}

// Updating reports whether a role change for userID is in flight.
func (v *AdminView) Updating(userID string) bool {
	return v.inflight.Active(actionPromote, userID)
}

// Promote changes the role of a loaded account and reloads the list.
func (v *AdminView) Promote(ctx context.Context, userID string, role models.Role) error {
	if !role.Valid() {
		return v.reject(apierrors.CodeInvalidRole)
	}
	if !CanAssign(role) {
		return v.reject(apierrors.CodeRoleNotAllowed)
	}
	target, ok := v.User(userID)
	if ok && Locked(target) {
		return v.reject(apierrors.CodeRoleLocked)
	}

	end := v.inflight.Begin(actionPromote, userID)
	res, err := v.api.PromoteRole(ctx, userID, role)
	end()
	if err != nil {
		if v.isClosed() {
			return nil
		}
		v.logger.Warn("promote user failed", "user_id", userID, "role", role, "error", err)
		notifications.Error(v.notify, apierrors.UserMessage(err))
		return err
	}
	if v.isClosed() {
		return nil
	}
	v.logger.Debug("user promoted", "user_id", userID, "role", res.User.Role)
	notifications.Success(v.notify, "User role updated")
	return v.Load(ctx)
}

// Create registers an account and, for admin, promotes it right away.
func (v *AdminView) Create(ctx context.Context, in NewUser) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, v.reject(apierrors.CodeInvalidForm)
	}
	if !CanAssign(in.Role) {
		return nil, v.reject(apierrors.CodeRoleNotAllowed)
	}

	u, err := v.api.Register(ctx, models.RegisterRequest{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		v.logger.Warn("create user failed", "email", in.Email, "error", err)
		notifications.Error(v.notify, apierrors.UserMessage(err))
		return nil, err
	}
	if in.Role != models.RoleUser && u.Role != in.Role {
		res, err := v.api.PromoteRole(ctx, u.ID, in.Role)
		if err != nil {
			v.logger.Warn("promote new user failed", "user_id", u.ID, "error", err)
			notifications.Error(v.notify, apierrors.UserMessage(err))
			return u, err
		}
		u.Role = in.Role
		if res.User.Role != "" {
			u.Role = res.User.Role
		}
	}
	notifications.Success(v.notify, "User created successfully")
	return u, nil
}

func (v *AdminView) reject(code string) error {
	err := apierrors.New(code)
	v.metrics.ObservePrecondition(code)
	notifications.Error(v.notify, err.Message)
	return err
}

func (v *AdminView) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
