package tickets

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/client"
	"github.com/goatkit/kamdesk/internal/metrics"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/notifications"
	"github.com/goatkit/kamdesk/internal/ui"
)

// TicketAPI is the part of the API client the list view uses.
type TicketAPI interface {
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	AssignTicket(ctx context.Context, ticketID, userID string) (*client.AssignResult, error)
	ChangeStatus(ctx context.Context, ticketID string, status models.Status) (string, error)
	DeleteTicket(ctx context.Context, ticketID string) (string, error)
	AddStaffComment(ctx context.Context, ticketID, text string) (*client.CommentEnvelope, error)
}

// LoadState is the display state of the ticket collection.
type LoadState int

// Load states.
const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// In-flight action names.
const (
	ActionAssign  = "assign"
	ActionStatus  = "status"
	ActionComment = "comment"
	ActionDelete  = "delete"
)

// ListView is the state behind the ticket list: the loaded tickets, the
// per-ticket expand flags and comment threads, and the active filters.
// Network calls run outside the lock; a response that arrives after Close
// is dropped.
type ListView struct {
	api      TicketAPI
	notify   notifications.Hub
	logger   *slog.Logger
	metrics  *metrics.ClientMetrics
	now      func() time.Time
	inflight *ui.InFlight

	mu       sync.Mutex
	tickets  []models.Ticket
	expanded map[string]bool
	comments map[string][]models.Comment
	filters  Filters
	state    LoadState
	loadErr  error
	closed   bool
}

// ListOption configures a ListView.
type ListOption func(*ListView)

// WithNotifier sets where notices go.
func WithNotifier(h notifications.Hub) ListOption {
	return func(v *ListView) { v.notify = h }
}

// WithLogger sets the logger for failed actions.
func WithLogger(l *slog.Logger) ListOption {
	return func(v *ListView) { v.logger = l }
}

// WithMetrics counts locally rejected actions.
func WithMetrics(m *metrics.ClientMetrics) ListOption {
	return func(v *ListView) { v.metrics = m }
}

// WithClock overrides the time used to stamp comments.
func WithClock(now func() time.Time) ListOption {
	return func(v *ListView) { v.now = now }
}

// NewListView creates an empty, idle list view.
func NewListView(api TicketAPI, opts ...ListOption) *ListView {
	v := &ListView{
		api:      api,
		now:      time.Now,
		inflight: ui.NewInFlight(),
		expanded: make(map[string]bool),
		comments: make(map[string][]models.Comment),
		filters:  DefaultFilters(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Load replaces the collection with the server's. Every ticket starts
// expanded, comment threads are re-read from the tickets, and per-row
// state of tickets that disappeared is pruned. On failure the collection
// is emptied and the state is StateFailed; in-flight flags are kept.
func (v *ListView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.state = StateLoading
	v.mu.Unlock()

	tickets, err := v.api.ListTickets(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}

	if err != nil {
		v.tickets = []models.Ticket{}
		v.expanded = make(map[string]bool)
		v.comments = make(map[string][]models.Comment)
		v.state = StateFailed
		v.loadErr = err
		v.logger.Warn("load tickets failed", "error", err)
		notifications.Error(v.notify, apierrors.UserMessage(err))
		return err
	}

	ids := make(map[string]bool, len(tickets))
	v.expanded = make(map[string]bool, len(tickets))
	v.comments = make(map[string][]models.Comment, len(tickets))
	for _, t := range tickets {
		ids[t.ID] = true
		v.expanded[t.ID] = true
		v.comments[t.ID] = append([]models.Comment{}, t.Comments...)
	}
	v.tickets = tickets
	v.inflight.Retain(ids)
	v.state = StateLoaded
	v.loadErr = nil
	return nil
}

// Close detaches the view; later responses are ignored.
func (v *ListView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// State returns the load state and, when failed, the load error.
func (v *ListView) State() (LoadState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.loadErr
}

// Tickets returns the loaded collection in server order.
func (v *ListView) Tickets() []models.Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Ticket(nil), v.tickets...)
}

// Ticket returns one loaded ticket.
func (v *ListView) Ticket(id string) (models.Ticket, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t := v.findLocked(id)
	if t == nil {
		return models.Ticket{}, false
	}
	return *t, true
}

// Toggle flips the expand flag of a loaded ticket and returns the new value.
func (v *ListView) Toggle(id string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.findLocked(id) == nil {
		return false, apierrors.New(apierrors.CodeUnknownTicket)
	}
	v.expanded[id] = !v.expanded[id]
	return v.expanded[id], nil
}

// Expanded reports whether a ticket is expanded.
func (v *ListView) Expanded(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded[id]
}

// Comments returns the thread of a ticket.
func (v *ListView) Comments(id string) []models.Comment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Comment(nil), v.comments[id]...)
}

// SetFilters validates and applies f.
func (v *ListView) SetFilters(f Filters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = f.Normalize()
	return nil
}

// Filters returns the active filters.
func (v *ListView) Filters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// Filtered applies the active filters to the loaded collection.
func (v *ListView) Filtered() []models.Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Filter(v.tickets, v.filters)
}

// Visible is Filtered narrowed to what s may see.
func (v *ListView) Visible(s *models.Session) []models.Ticket {
	return Visible(v.Filtered(), s)
}

// DepartmentOptions lists the departments present in the loaded set.
func (v *ListView) DepartmentOptions() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return uniqueValues(v.tickets, func(t models.Ticket) string { return t.Department })
}

// StatusOptions lists the statuses present in the loaded set.
func (v *ListView) StatusOptions() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return uniqueValues(v.tickets, func(t models.Ticket) string { return string(t.Status) })
}

// Busy reports whether an action is running on ticket id.
func (v *ListView) Busy(id string) bool {
	return v.inflight.Busy(id)
}

// Pending lists the running actions.
func (v *ListView) Pending() []ui.Op {
	return v.inflight.Pending()
}

// Assign assigns a ticket and patches in the assignee the server
// returns. A reply without the assignee triggers a reload instead.
// Re-assigning to the current assignee only posts an informational notice.
func (v *ListView) Assign(ctx context.Context, ticketID string, assignee models.UserRef) error {
	if assignee.ID == "" {
		return v.reject(apierrors.CodeNoUserSelected)
	}
	v.mu.Lock()
	t := v.findLocked(ticketID)
	var current string
	if t != nil {
		current = t.AssigneeID()
	}
	v.mu.Unlock()
	if t == nil {
		return v.reject(apierrors.CodeUnknownTicket)
	}
	if current == assignee.ID {
		v.metrics.ObservePrecondition(apierrors.CodeAlreadyAssigned)
		notifications.Info(v.notify, apierrors.Registry.Message(apierrors.CodeAlreadyAssigned))
		return nil
	}

	end := v.inflight.Begin(ActionAssign, ticketID)
	defer end()
	res, err := v.api.AssignTicket(ctx, ticketID, assignee.ID)
	if err != nil {
		return v.failed(ActionAssign, ticketID, err)
	}

	// Patch only with what the server recorded; otherwise re-read the list.
	ref, ok := res.Assignee()
	if !ok || ref.ID != assignee.ID {
		v.mu.Lock()
		closed := v.closed
		v.mu.Unlock()
		if closed {
			return nil
		}
		v.logger.Debug("assignment reply without assignee, reloading", "ticket_id", ticketID)
		if err := v.Load(ctx); err != nil {
			return err
		}
		v.assigned(current)
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.tickets, _ = ApplyAssignment(v.tickets, ticketID, ref)
	v.logger.Debug("ticket assigned", "ticket_id", ticketID, "user_id", ref.ID, "server_message", res.Message)
	v.assigned(current)
	return nil
}

func (v *ListView) assigned(previous string) {
	if previous == "" {
		notifications.Success(v.notify, "Ticket assigned successfully!")
	} else {
		notifications.Success(v.notify, "Ticket reassigned successfully!")
	}
}

// ChangeStatus sets a ticket's status and patches it in place.
func (v *ListView) ChangeStatus(ctx context.Context, ticketID string, status models.Status) error {
	if !status.Valid() {
		return v.reject(apierrors.CodeInvalidStatus)
	}
	if _, ok := v.Ticket(ticketID); !ok {
		return v.reject(apierrors.CodeUnknownTicket)
	}

	end := v.inflight.Begin(ActionStatus, ticketID)
	defer end()
	msg, err := v.api.ChangeStatus(ctx, ticketID, status)
	if err != nil {
		return v.failed(ActionStatus, ticketID, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.tickets, _ = ApplyStatusChange(v.tickets, ticketID, status)
	if msg == "" {
		msg = "Status updated"
	}
	notifications.Success(v.notify, msg)
	return nil
}

// Delete removes a ticket and its per-row state.
func (v *ListView) Delete(ctx context.Context, ticketID string) error {
	if _, ok := v.Ticket(ticketID); !ok {
		return v.reject(apierrors.CodeUnknownTicket)
	}

	end := v.inflight.Begin(ActionDelete, ticketID)
	msg, err := v.api.DeleteTicket(ctx, ticketID)
	end()
	if err != nil {
		return v.failed(ActionDelete, ticketID, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.tickets, _ = RemoveTicket(v.tickets, ticketID)
	delete(v.expanded, ticketID)
	delete(v.comments, ticketID)
	ids := make(map[string]bool, len(v.tickets))
	for _, t := range v.tickets {
		ids[t.ID] = true
	}
	v.inflight.Retain(ids)
	if msg == "" {
		msg = "Ticket deleted"
	}
	notifications.Success(v.notify, msg)
	return nil
}

// AddComment posts a staff comment and merges the echo into the thread.
func (v *ListView) AddComment(ctx context.Context, ticketID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, v.reject(apierrors.CodeEmptyComment)
	}
	if _, ok := v.Ticket(ticketID); !ok {
		return models.Comment{}, v.reject(apierrors.CodeUnknownTicket)
	}

	end := v.inflight.Begin(ActionComment, ticketID)
	defer end()
	env, err := v.api.AddStaffComment(ctx, ticketID, text)
	if err != nil {
		return models.Comment{}, v.failed(ActionComment, ticketID, err)
	}
	c := echoed(env, text, models.SenderStaff)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return c, nil
	}
	thread := AppendComment(v.comments[ticketID], c, v.now())
	v.comments[ticketID] = thread
	notifications.Success(v.notify, "Comment added")
	return thread[len(thread)-1], nil
}

func (v *ListView) findLocked(id string) *models.Ticket {
	for i := range v.tickets {
		if v.tickets[i].ID == id {
			return &v.tickets[i]
		}
	}
	return nil
}

// reject reports a local precondition failure; nothing is sent.
func (v *ListView) reject(code string) error {
	err := apierrors.New(code)
	v.metrics.ObservePrecondition(code)
	notifications.Error(v.notify, err.Message)
	return err
}

// failed reports a request failure unless the view is already closed.
func (v *ListView) failed(action, ticketID string, err error) error {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return nil
	}
	v.logger.Warn("ticket action failed", "action", action, "ticket_id", ticketID, "error", err)
	notifications.Error(v.notify, apierrors.UserMessage(err))
	return err
}

// echoed turns a submission echo into the comment to merge, falling back
// to the submitted text and sender type when the echo leaves them out.
func echoed(env *client.CommentEnvelope, text string, sender models.SenderType) models.Comment {
	var c models.Comment
	if env != nil {
		c = env.Comment
	}
	if c.Message == "" {
		c.Message = text
	}
	if c.SenderType == "" {
		c.SenderType = sender
	}
	return c
}

func uniqueValues(tickets []models.Ticket, key func(models.Ticket) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tickets {
		k := key(t)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
