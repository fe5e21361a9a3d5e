// Package fakeapi is an in-process helpdesk API for tests. It keeps users
// and tickets in memory, authenticates with signed JWTs sent either as the
// "token" cookie or as a bearer token, and lets tests inject failures, hold
// requests and count calls per route.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/goatkit/kamdesk/internal/models"
)

// EchoMode selects the shape of comment submission responses.
type EchoMode int

// Comment echo shapes.
const (
	EchoNested EchoMode = iota // {"comment": {...}}
	EchoRaw                    // the comment itself
	EchoTicket                 // the whole updated ticket
)

var signingKey = []byte("fakeapi-signing-key")

type failure struct {
	status  int
	message string
}

// Server is a running fake API.
type Server struct {
	mu         sync.Mutex
	users      []*account
	tickets    []*models.Ticket
	resets     map[string]string // reset token -> email
	calls      map[string]int
	failures   map[string]failure
	holds      map[string]chan struct{}
	echo       EchoMode
	omitStamp  bool
	bareAssign bool
	tokenTTL   time.Duration
	seq        int
	now        func() time.Time

	http *httptest.Server
}

type account struct {
	user     models.User
	password string
}

// Option configures a Server.
type Option func(*Server)

// WithEcho sets the comment echo shape.
func WithEcho(mode EchoMode) Option {
	return func(s *Server) { s.echo = mode }
}

// WithoutCommentTimestamps makes comment echoes omit createdAt.
func WithoutCommentTimestamps() Option {
	return func(s *Server) { s.omitStamp = true }
}

// WithBareAssignReply makes assignment replies carry only a message.
func WithBareAssignReply() Option {
	return func(s *Server) { s.bareAssign = true }
}

// WithTokenTTL sets the lifetime of issued tokens (default one hour).
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// New starts a fake API and stops it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		resets:   make(map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		holds:    make(map[string]chan struct{}),
		tokenTTL: time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.http = httptest.NewServer(s.router())
	t.Cleanup(func() {
		s.releaseAll()
		s.http.Close()
	})
	return s
}

// URL is the API root.
func (s *Server) URL() string { return s.http.URL }

// Route keys have the form "METHOD /api/pattern", e.g. "PUT /api/tickets/status/:id".

// Calls returns how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Fail makes route answer status with {"message": message} until Recover.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// Recover clears an injected failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Hold blocks requests to route until the returned release func is called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == ch {
				delete(s.holds, route)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for route, ch := range s.holds {
		close(ch)
		delete(s.holds, route)
	}
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string, role models.Role) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password, role)
}

func (s *Server) addUserLocked(name, email, password string, role models.Role) models.User {
	s.seq++
	u := models.User{ID: fmt.Sprintf("u%d", s.seq), Name: name, Email: email, Role: role}
	s.users = append(s.users, &account{user: u, password: password})
	return u
}

// AddTicket stores t, filling id, tracking token, status and creation time
// when they are empty.
func (s *Server) AddTicket(t models.Ticket) models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if t.ID == "" {
		t.ID = fmt.Sprintf("t%d", s.seq)
	}
	if t.TrackingToken == "" {
		t.TrackingToken = "trk-" + t.ID
	}
	if t.Status == "" {
		t.Status = models.StatusOpen
	}
	if t.CreatedAt == "" {
		t.CreatedAt = models.FormatTimestamp(s.now())
	}
	stored := cloneTicket(t)
	s.tickets = append(s.tickets, &stored)
	return cloneTicket(stored)
}

// Ticket returns a copy of the stored ticket.
func (s *Server) Ticket(id string) (models.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.ticketLocked(id); t != nil {
		return cloneTicket(*t), true
	}
	return models.Ticket{}, false
}

// User returns the stored account with id.
func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.accountByIDLocked(id); a != nil {
		return a.user, true
	}
	return models.User{}, false
}

// IssueToken signs a token for u that expires after ttl (negative ttl
// yields an already expired token).
func (s *Server) IssueToken(u models.User, ttl time.Duration) string {
	now := s.now()
	claims := jwt.MapClaims{
		"id":    u.ID,
		"email": u.Email,
		"role":  string(u.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return tok
}

// IssueResetToken creates a password reset token for email.
func (s *Server) IssueResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	tok := fmt.Sprintf("reset-%d", s.seq)
	s.resets[tok] = email
	return tok
}

func (s *Server) ticketLocked(id string) *models.Ticket {
	for _, t := range s.tickets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Server) ticketByTokenLocked(token string) *models.Ticket {
	for _, t := range s.tickets {
		if t.TrackingToken == token {
			return t
		}
	}
	return nil
}

func (s *Server) accountByIDLocked(id string) *account {
	for _, a := range s.users {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) accountByEmailLocked(email string) *account {
	for _, a := range s.users {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}

func cloneTicket(t models.Ticket) models.Ticket {
	if t.AssignedTo != nil {
		ref := *t.AssignedTo
		t.AssignedTo = &ref
	}
	t.Comments = append([]models.Comment(nil), t.Comments...)
	return t
}

// track counts the call, then applies holds and injected failures.
func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()

		s.mu.Lock()
		s.calls[route]++
		hold := s.holds[route]
		s.mu.Unlock()

		if hold != nil {
			<-hold
		}

		s.mu.Lock()
		f, failing := s.failures[route]
		s.mu.Unlock()
		if failing {
			c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
			return
		}
		c.Next()
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
}
