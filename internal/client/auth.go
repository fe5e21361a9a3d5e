package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/constants"
	"github.com/goatkit/kamdesk/internal/models"
)

// LoginResult is what a successful login hands back for persistence.
type LoginResult struct {
	Message string
	Token   string         // bearer token, when the deployment issues one
	Cookies []*http.Cookie // Set-Cookie of the login response, with expiry
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	resp, err := c.do(ctx, c.rest, opRegister, http.MethodPost, constants.PathRegister, func(r *resty.Request) {
		r.SetBody(req)
	})
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := decode(opRegister, resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.do(ctx, c.rest, opLogin, http.MethodPost, constants.PathLogin, func(r *resty.Request) {
		r.SetBody(models.LoginRequest{Email: email, Password: password})
	})
	if err != nil {
		var apiErr *apierrors.Error
		if errors.As(err, &apiErr) && apiErr.Code == apierrors.CodeUnauthorized {
			apiErr.Code = apierrors.CodeLoginFailed
		}
		return nil, err
	}
	var ack models.MessageResponse
	if err := decode(opLogin, resp, &ack); err != nil {
		return nil, err
	}
	return &LoginResult{Message: ack.Message, Token: ack.Token, Cookies: resp.Cookies()}, nil
}

// Logout ends the server session. The caller clears local credentials.
func (c *Client) Logout(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, c.rest, opLogout, http.MethodPost, constants.PathLogout, func(r *resty.Request) {
		r.SetBody(map[string]string{})
	})
	if err != nil {
		return "", err
	}
	return message(resp), nil
}

// CurrentUser returns the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := c.do(ctx, c.rest, opCurrentUser, http.MethodGet, constants.PathCurrentUser, nil)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := decode(opCurrentUser, resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every account. The API wraps the list as {users: [...]}.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	resp, err := c.do(ctx, c.rest, opListUsers, http.MethodGet, constants.PathUsers, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Users []models.User `json:"users"`
	}
	if err := decode(opListUsers, resp, &body); err != nil {
		return nil, err
	}
	if body.Users == nil {
		return []models.User{}, nil
	}
	return body.Users, nil
}

// PromoteRole changes the role of a user.
func (c *Client) PromoteRole(ctx context.Context, userID string, role models.Role) (*models.PromoteResult, error) {
	resp, err := c.do(ctx, c.rest, opPromote, http.MethodPut, constants.PathPromote, func(r *resty.Request) {
		r.SetPathParam("id", userID).SetBody(map[string]models.Role{"role": role})
	})
	if err != nil {
		return nil, err
	}
	var res models.PromoteResult
	if err := decode(opPromote, resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ForgotPassword asks the server to mail a reset link. No credentials needed.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := c.do(ctx, c.anon, opForgotPassword, http.MethodPost, constants.PathForgotPassword, func(r *resty.Request) {
		r.SetBody(map[string]string{"email": email})
	})
	if err != nil {
		return "", err
	}
	return message(resp), nil
}

// ResetPassword sets a new password using the mailed token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	resp, err := c.do(ctx, c.anon, opResetPassword, http.MethodPost, constants.PathResetPassword, func(r *resty.Request) {
		r.SetPathParam("token", token).SetBody(map[string]string{"password": password})
	})
	if err != nil {
		return "", err
	}
	return message(resp), nil
}
