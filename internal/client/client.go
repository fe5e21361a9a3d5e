// Package client is the typed REST client for the helpdesk API.
//
// Authenticated calls carry both the session cookie (from the cookie jar)
// and a bearer token (from the token source) when one is available. Public
// tracking calls carry neither. The client never retries and imposes no
// timeout unless one is configured.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/constants"
	"github.com/goatkit/kamdesk/internal/metrics"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Client talks to one helpdesk API.
type Client struct {
	baseURL *url.URL
	jar     http.CookieJar
	rest    *resty.Client // credentialed: cookie jar + bearer token
	anon    *resty.Client // public tracking endpoints
	tokens  TokenSource
	metrics *metrics.ClientMetrics
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMetrics records every request on m.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithCookieJar replaces the default public-suffix aware jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}

	c := &Client{baseURL: u}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.jar = jar
	}

	c.rest = resty.New().
		SetBaseURL(u.String()).
		SetCookieJar(c.jar).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.authorize)

	c.anon = resty.New().
		SetBaseURL(u.String()).
		SetCookieJar(nil).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(stampRequestID)

	if c.timeout > 0 {
		c.rest.SetTimeout(c.timeout)
		c.anon.SetTimeout(c.timeout)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Cookies returns the cookies the jar would send to the API.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, typically from persisted state.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) > 0 {
		c.jar.SetCookies(c.baseURL, cookies)
	}
}

func stampRequestID(_ *resty.Client, r *resty.Request) error {
	if r.Header.Get(constants.RequestIDHeader) == "" {
		r.SetHeader(constants.RequestIDHeader, uuid.NewString())
	}
	return nil
}

func (c *Client) authorize(rc *resty.Client, r *resty.Request) error {
	if err := stampRequestID(rc, r); err != nil {
		return err
	}
	if c.tokens == nil {
		return nil
	}
	if tok := c.tokens.Token(); tok != "" {
		r.SetAuthToken(tok)
	}
	return nil
}

// operation is the failure contract of one endpoint: the generic message
// shown on failure and whether the body's message field may replace it.
type operation struct {
	name     string
	fallback string
	useBody  bool
}

var (
	opRegister       = operation{"register", "Failed to create user", true}
	opLogin          = operation{"login", "Login failed", true}
	opLogout         = operation{"logout", "Logout failed", true}
	opCurrentUser    = operation{"current_user", "Not authenticated", false}
	opListUsers      = operation{"list_users", "Failed to fetch users", false}
	opPromote        = operation{"promote_user", "Failed to promote user", true}
	opForgotPassword = operation{"forgot_password", "Failed to send reset email", true}
	opResetPassword  = operation{"reset_password", "Failed to reset password", true}

	opListTickets    = operation{"list_tickets", "Failed to fetch tickets", false}
	opGetTicket      = operation{"get_ticket", "Ticket not found", false}
	opTicketsByEmail = operation{"tickets_by_email", "Failed to fetch tickets", false}
	opCreateTicket   = operation{"create_ticket", "Failed to create ticket", true}
	opAssignTicket   = operation{"assign_ticket", "Failed to assign ticket", false}
	opChangeStatus   = operation{"change_status", "Failed to update status", false}
	opDeleteTicket   = operation{"delete_ticket", "Failed to delete ticket", false}
	opStaffComment   = operation{"add_staff_comment", "Failed to send reply", true}
	opTrackerComment = operation{"add_tracker_comment", "Failed to add comment", true}
	opTrackTicket    = operation{"track_ticket", "Ticket not found or link is invalid.", false}
	opMetrics        = operation{"dashboard_metrics", "Failed to fetch dashboard metrics", true}
)

// do executes one request and classifies the outcome. A non-nil response
// is always a 2xx.
func (c *Client) do(ctx context.Context, rc *resty.Client, op operation, method, path string, prepare func(*resty.Request)) (*resty.Response, error) {
	req := rc.R().SetContext(ctx)
	if prepare != nil {
		prepare(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	took := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	c.metrics.ObserveRequest(op.name, status, took)
	c.logger.Debug("helpdesk api request",
		"operation", op.name,
		"method", method,
		"path", path,
		"status", status,
		"duration", took,
		"request_id", req.Header.Get(constants.RequestIDHeader))

	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeNetwork, op.fallback, fmt.Errorf("%s: %w", op.name, err))
	}
	if !resp.IsSuccess() {
		return nil, apierrors.FromResponse(status, resp.Body(), op.fallback, op.useBody)
	}
	return resp, nil
}

func decode(op operation, resp *resty.Response, v interface{}) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return apierrors.Wrap(apierrors.CodeMalformedBody, "", fmt.Errorf("%s: decode: %w", op.name, err))
	}
	return nil
}

// message returns the acknowledgement message of a 2xx body, if any.
func message(resp *resty.Response) string {
	msg, _ := apierrors.ExtractMessage(resp.Body())
	return msg
}
