// Package render prints view state for the terminal: styled tables for
// people, JSON or YAML for scripts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/goatkit/kamdesk/internal/config"
	"github.com/goatkit/kamdesk/internal/dashboard"
	"github.com/goatkit/kamdesk/internal/history"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/tickets"
	"github.com/goatkit/kamdesk/internal/users"
)

// Printer writes views to w in one output format.
type Printer struct {
	w      io.Writer
	format string
	apiURL string
	now    func() time.Time
	loc    *time.Location
	theme  theme
}

// Option configures a Printer.
type Option func(*Printer)

// WithAPIURL sets the base URL image paths are resolved against.
func WithAPIURL(u string) Option {
	return func(p *Printer) { p.apiURL = u }
}

// WithClock sets the reference time for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Printer) { p.now = now }
}

// WithLocation sets the zone absolute timestamps are printed in.
func WithLocation(loc *time.Location) Option {
	return func(p *Printer) { p.loc = loc }
}

// NewPrinter creates a printer for format (table, json or yaml).
func NewPrinter(w io.Writer, format string, opts ...Option) (*Printer, error) {
	switch format {
	case "":
		format = config.OutputTable
	case config.OutputTable, config.OutputJSON, config.OutputYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	p := &Printer{w: w, format: format, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(p)
	}
	p.theme = newTheme(lipgloss.NewRenderer(w))
	return p, nil
}

// Structured reports whether the printer emits JSON or YAML.
func (p *Printer) Structured() bool {
	return p.format != config.OutputTable
}

// Value writes v as JSON or YAML. In table mode it falls back to YAML.
func (p *Printer) Value(v interface{}) error {
	if p.format == config.OutputJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Message prints a one-line acknowledgement.
func (p *Printer) Message(msg string) error {
	if p.Structured() {
		return p.Value(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, p.theme.success.Render(Clean(msg)))
	return err
}

// Tickets prints a ticket list.
func (p *Printer) Tickets(list []models.Ticket) error {
	if p.Structured() {
		if list == nil {
			list = []models.Ticket{}
		}
		return p.Value(list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(p.w, p.theme.faint.Render("No tickets found"))
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{
			t.ID,
			Clean(t.Title),
			t.Department,
			p.theme.status(t.Status),
			Assignee(t),
			tickets.DisplayDate(t.CreatedAt),
			strconv.Itoa(len(t.Comments)),
		})
	}
	return p.table([]string{"ID", "Title", "Department", "Status", "Assigned", "Created", "Comments"}, rows)
}

// TicketDetail is the expanded view of one ticket.
type TicketDetail struct {
	Ticket   models.Ticket    `json:"ticket" yaml:"ticket"`
	Comments []models.Comment `json:"comments" yaml:"comments"`
	Hints    *tickets.Hints   `json:"actions,omitempty" yaml:"actions,omitempty"`
	ImageURL string           `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// Ticket prints one ticket with its thread. hints is nil on the tracking page.
func (p *Printer) Ticket(t models.Ticket, comments []models.Comment, hints *tickets.Hints, audience history.Audience) error {
	img := ImageURL(p.apiURL, t.Image)
	if p.Structured() {
		if comments == nil {
			comments = []models.Comment{}
		}
		return p.Value(TicketDetail{Ticket: t, Comments: comments, Hints: hints, ImageURL: img})
	}

	var b strings.Builder
	b.WriteString(p.theme.heading.Render(Clean(t.Title)))
	b.WriteString("  " + p.theme.status(t.Status) + "\n")
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(p.theme.label.Render(label+":") + " " + value + "\n")
	}
	field("ID", t.ID)
	field("Department", t.Department)
	field("Category", strings.Trim(t.Category+" / "+t.SubCategory, " /"))
	field("Location", t.Location)
	field("Requester", strings.TrimSpace(t.FullName+" "+angle(t.Email)))
	field("Phone", t.Phone)
	field("Assigned", Assignee(t))
	field("Created", tickets.DisplayDate(t.CreatedAt))
	field("Image", img)
	if d := Clean(t.Description); d != "" {
		b.WriteString("\n" + d + "\n")
	}
	if hints != nil {
		b.WriteString("\n" + p.theme.faint.Render("Actions: "+hintList(*hints)) + "\n")
	}

	b.WriteString("\n" + p.theme.heading.Render("Comments") + "\n")
	entries := history.Thread(comments, audience, p.loc)
	if len(entries) == 0 {
		b.WriteString(p.theme.faint.Render("No comments yet") + "\n")
	}
	for _, e := range entries {
		author := p.theme.user.Render(e.Author)
		if e.Staff {
			author = p.theme.staff.Render(e.Author)
		}
		when := e.When
		if !e.At.IsZero() {
			when += " (" + since(e.At, p.now()) + ")"
		}
		b.WriteString(author + " " + p.theme.faint.Render(when) + "\n  " + Clean(e.Message) + "\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// UserRow is one line of the users table in structured output.
type UserRow struct {
	models.User `yaml:",inline"`
	Locked      bool          `json:"locked" yaml:"locked"`
	Allowed     []models.Role `json:"allowed_roles" yaml:"allowed_roles"`
}

// Users prints accounts with the roles actor may assign to each.
func (p *Printer) Users(list []models.User, actor *models.Session) error {
	if p.Structured() {
		out := make([]UserRow, 0, len(list))
		for _, u := range list {
			allowed := users.AllowedRoles(actor, u)
			if allowed == nil {
				allowed = []models.Role{}
			}
			out = append(out, UserRow{User: u, Locked: users.Locked(u), Allowed: allowed})
		}
		return p.Value(out)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(p.w, p.theme.faint.Render("No users found"))
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, u := range list {
		change := "Cannot modify"
		if !users.Locked(u) {
			labels := []string{}
			for _, r := range users.AllowedRoles(actor, u) {
				labels = append(labels, RoleLabel(r))
			}
			change = strings.Join(labels, ", ")
		}
		rows = append(rows, []string{u.ID, Clean(u.Name), u.Email, RoleLabel(u.Role), change})
	}
	return p.table([]string{"ID", "Name", "Email", "Role", "Change to"}, rows)
}

// Dashboard prints the dashboard report.
func (p *Printer) Dashboard(r dashboard.Report) error {
	if p.Structured() {
		return p.Value(r)
	}
	s := r.Summary
	var b strings.Builder
	b.WriteString(p.theme.heading.Render("Overview of recent helpdesk activity") + "\n")
	fmt.Fprintf(&b, "Total Tickets %d · Open %d · In Progress %d · Resolved %d · Closed %d\n",
		s.TotalTickets, s.Open, s.InProgress, s.Resolved, s.Closed)
	fmt.Fprintf(&b, "Total Users %d · Admins %d · Super Admins %d\n\n", s.TotalUsers, s.TotalAdmins, s.TotalSuperAdmins)
	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return err
	}

	sections := []struct {
		title  string
		label  string
		points []dashboard.Point
		share  bool
	}{
		{"Ticket Status Distribution", "Status", r.Status, false},
		{"Tickets by Department", "Department", r.Departments, true},
		{"Tickets by Category", "Category", r.Categories, true},
		{"Tickets with Most Comments", "Ticket", r.MostComments, false},
	}
	for _, sec := range sections {
		if _, err := fmt.Fprintln(p.w, p.theme.heading.Render(sec.title)); err != nil {
			return err
		}
		header := []string{sec.label, "Count"}
		if sec.share {
			header = append(header, "Share")
		}
		rows := make([][]string, 0, len(sec.points))
		for _, pt := range sec.points {
			row := []string{pt.Label, strconv.Itoa(pt.Count)}
			if sec.share {
				row = append(row, strconv.FormatFloat(pt.Share, 'f', 1, 64)+"%")
			}
			rows = append(rows, row)
		}
		if err := p.table(header, rows); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) table(header []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.theme.faint).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.theme.header
			}
			return p.theme.cell
		})
	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

func hintList(h tickets.Hints) string {
	var out []string
	if h.CanComment {
		out = append(out, "comment")
	}
	if h.CanChangeStatus {
		out = append(out, "status")
	}
	if h.CanAssign {
		out = append(out, "assign")
	}
	if h.CanDelete {
		out = append(out, "delete")
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ", ")
}

func angle(email string) string {
	if email == "" {
		return ""
	}
	return "<" + email + ">"
}
