package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goatkit/kamdesk/internal/constants"
	"github.com/goatkit/kamdesk/internal/dashboard"
	"github.com/goatkit/kamdesk/internal/history"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/tickets"
)

var refTime = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

func newPrinter(t *testing.T, format string) (*Printer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, format,
		WithAPIURL("http://api.kam.test/"),
		WithClock(func() time.Time { return refTime }),
		WithLocation(time.UTC))
	require.NoError(t, err)
	return p, &buf
}

func sampleTicket() models.Ticket {
	return models.Ticket{
		ID:          "t1",
		Title:       "<b>Printer</b> jammed",
		Description: "<script>alert(1)</script>Paper stuck &amp; smoking",
		Department:  "IT",
		Category:    "Office Issue",
		SubCategory: "Electrical",
		Status:      models.StatusInProgress,
		CreatedAt:   "2024-05-01T09:00:00Z",
		FullName:    "Ada Obi",
		Email:       "ada@kam.test",
		Image:       "/uploads/p.png",
		AssignedTo:  &models.UserRef{ID: "u2", Name: "Bo"},
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Printer jammed", Clean("<b>Printer</b>\n  jammed"))
	assert.Equal(t, "a & b", Clean("a &amp; b"))
	assert.Equal(t, "", Clean("<script>x</script>"))
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Super Admin", RoleLabel(models.RoleSuperAdmin))
	assert.Equal(t, "Admin", RoleLabel(models.RoleAdmin))
	assert.Equal(t, constants.MissingValueLabel, RoleLabel(""))
}

func TestAgo(t *testing.T) {
	got := Ago("2024-05-02T09:00:00Z", refTime)
	assert.Contains(t, got, "hours")
	assert.True(t, strings.HasSuffix(got, "ago"), got)
	assert.Equal(t, history.MissingTimestamp, Ago("", refTime))
}

func TestImageURL(t *testing.T) {
	tests := []struct{ base, image, want string }{
		{"http://api", "/uploads/a.png", "http://api/uploads/a.png"},
		{"http://api/", "uploads/a.png", "http://api/uploads/a.png"},
		{"http://api", "https://cdn/a.png", "https://cdn/a.png"},
		{"http://api", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageURL(tt.base, tt.image), tt.image)
	}
}

func TestNewPrinter_UnknownFormat(t *testing.T) {
	_, err := NewPrinter(&bytes.Buffer{}, "xml")
	assert.Error(t, err)
}

func TestPrinter_TicketsTable(t *testing.T) {
	p, buf := newPrinter(t, "table")
	unassigned := models.Ticket{ID: "t2", Title: "VPN", Department: "HR", Status: models.StatusOpen}
	require.NoError(t, p.Tickets([]models.Ticket{sampleTicket(), unassigned}))

	out := buf.String()
	for _, want := range []string{"ID", "Title", "Printer jammed", "In Progress", "Bo", "2024-05-01", "Unassigned", "—"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "<b>")
}

func TestPrinter_TicketsStructured(t *testing.T) {
	p, buf := newPrinter(t, "json")
	require.NoError(t, p.Tickets(nil))
	assert.JSONEq(t, "[]", buf.String())

	p, buf = newPrinter(t, "yaml")
	require.NoError(t, p.Tickets([]models.Ticket{sampleTicket()}))
	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0]["id"])
	assert.Equal(t, "In Progress", got[0]["status"])
}

func TestPrinter_TicketDetail(t *testing.T) {
	comments := []models.Comment{
		{ID: "c1", SenderType: models.SenderUser, Message: "any news?", CreatedAt: "2024-05-02T10:00:00Z"},
		{ID: "c2", SenderType: models.SenderStaff, Sender: &models.CommentSender{Name: "Bo"}, Message: "<i>today</i>"},
	}

	t.Run("tracker view", func(t *testing.T) {
		p, buf := newPrinter(t, "table")
		require.NoError(t, p.Ticket(sampleTicket(), comments, nil, history.AudienceTracker))
		out := buf.String()
		assert.Contains(t, out, "Paper stuck & smoking")
		assert.NotContains(t, out, "alert")
		assert.Contains(t, out, "http://api.kam.test/uploads/p.png")
		assert.Contains(t, out, "You 2024-05-02 10:00")
		assert.Contains(t, out, "Bo —")
		assert.Contains(t, out, "today")
		assert.NotContains(t, out, "Actions:")
	})

	t.Run("staff view with hints", func(t *testing.T) {
		p, buf := newPrinter(t, "table")
		hints := tickets.Hints{CanComment: true, CanChangeStatus: true}
		require.NoError(t, p.Ticket(sampleTicket(), nil, &hints, history.AudienceStaff))
		out := buf.String()
		assert.Contains(t, out, "Actions: comment, status")
		assert.Contains(t, out, "No comments yet")
	})

	t.Run("json", func(t *testing.T) {
		p, buf := newPrinter(t, "json")
		hints := tickets.Hints{CanAssign: true}
		require.NoError(t, p.Ticket(sampleTicket(), comments, &hints, history.AudienceStaff))
		var got struct {
			Ticket   models.Ticket    `json:"ticket"`
			Comments []models.Comment `json:"comments"`
			Actions  map[string]bool  `json:"actions"`
			ImageURL string           `json:"image_url"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "t1", got.Ticket.ID)
		assert.Len(t, got.Comments, 2)
		assert.True(t, got.Actions["can_assign"])
		assert.Equal(t, "http://api.kam.test/uploads/p.png", got.ImageURL)
	})
}

func TestPrinter_Users(t *testing.T) {
	list := []models.User{
		{ID: "u1", Name: "Root", Email: "root@kam.test", Role: models.RoleSuperAdmin},
		{ID: "u2", Name: "Bo", Email: "bo@kam.test", Role: models.RoleUser},
	}
	actor := models.NewSession(models.User{ID: "u1", Role: models.RoleSuperAdmin})

	p, buf := newPrinter(t, "table")
	require.NoError(t, p.Users(list, actor))
	out := buf.String()
	assert.Contains(t, out, "Super Admin")
	assert.Contains(t, out, "Cannot modify")
	assert.Contains(t, out, "User, Admin")

	p, buf = newPrinter(t, "json")
	require.NoError(t, p.Users(list, actor))
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, true, rows[0]["locked"])
	assert.Equal(t, "u2", rows[1]["_id"])
	assert.Equal(t, []interface{}{"user", "admin"}, rows[1]["allowed_roles"])
}

func TestPrinter_Dashboard(t *testing.T) {
	r := dashboard.Report{
		Summary:     dashboard.Summary{TotalTickets: 3, Open: 2, TotalUsers: 4},
		Status:      dashboard.StatusSeries(models.TicketMetrics{OpenTickets: 2, ClosedTickets: 1}),
		Departments: []dashboard.Point{{Label: "IT", Count: 2, Share: 66.7}},
	}
	p, buf := newPrinter(t, "table")
	require.NoError(t, p.Dashboard(r))
	out := buf.String()
	assert.Contains(t, out, "Total Tickets 3")
	assert.Contains(t, out, "Tickets by Department")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "Closed")
}

func TestPrinter_Message(t *testing.T) {
	p, buf := newPrinter(t, "table")
	require.NoError(t, p.Message("Ticket deleted successfully"))
	assert.Equal(t, "Ticket deleted successfully\n", buf.String())

	p, buf = newPrinter(t, "json")
	require.NoError(t, p.Message("ok"))
	assert.JSONEq(t, `{"message":"ok"}`, buf.String())
}
