package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/render"
	"github.com/goatkit/kamdesk/internal/testing/fakeapi"
	"github.com/goatkit/kamdesk/internal/tickets"
)

type cli struct {
	t     *testing.T
	srv   *fakeapi.Server
	dir   string
	state string
}

type result struct {
	stdout string
	stderr string
	code   int
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{"KAMDESK_API_URL", "KAMDESK_OUTPUT", "KAMDESK_LOG_LEVEL", "KAMDESK_STATE_FILE", "KAMDESK_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return &cli{t: t, srv: fakeapi.New(t), dir: dir, state: filepath.Join(dir, "state.yaml")}
}

func (c *cli) run(args ...string) result {
	c.t.Helper()
	return c.runWithInput("", args...)
}

func (c *cli) runWithInput(stdin string, args ...string) result {
	c.t.Helper()
	cmd, a := newRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api-url", c.srv.URL(), "--state-file", c.state}, args...))
	code := execute(cmd, a)
	return result{stdout: out.String(), stderr: errb.String(), code: code}
}

func (c *cli) login(email string) {
	c.t.Helper()
	r := c.run("login", "--email", email, "--password", "secret")
	require.Equal(c.t, 0, r.code, r.stderr)
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	r := c.run("version")
	assert.Equal(t, 0, r.code)
	assert.Equal(t, "kamdesk dev (commit: none)\n", r.stdout)
}

func TestLoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleAdmin)

	r := c.run("login", "--email", "ada@example.com", "--password", "secret")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Login successful")

	r = c.run("whoami")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Ada <ada@example.com>")
	assert.Contains(t, r.stdout, "Role: Admin")

	r = c.run("logout")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Logged out successfully")

	r = c.run("whoami")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Please sign in to continue")
}

func TestLogin_PasswordFromInput(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleUser)

	r := c.runWithInput("secret\n", "login", "--email", "ada@example.com")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Login successful")
}

func TestLogin_Failure(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleUser)

	r := c.run("login", "--email", "ada@example.com", "--password", "wrong")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Invalid email or password")
}

func TestTickets_Workflow(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Root", "root@example.com", "secret", models.RoleSuperAdmin)
	bo := c.srv.AddUser("Bo", "bo@example.com", "secret", models.RoleUser)
	tk := c.srv.AddTicket(models.Ticket{Title: "Printer jammed", Description: "Paper stuck", Department: "IT"})
	c.srv.AddTicket(models.Ticket{Title: "Payslip", Description: "Missing", Department: "HR"})
	c.login("root@example.com")

	r := c.run("tickets", "list")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Printer jammed")
	assert.Contains(t, r.stdout, "Payslip")

	r = c.run("tickets", "list", "--department", "IT", "-o", "json")
	require.Equal(t, 0, r.code, r.stderr)
	var listed []models.Ticket
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, tk.ID, listed[0].ID)

	t.Run("status", func(t *testing.T) {
		r := c.run("tickets", "status", tk.ID, "in-progress")
		require.Equal(t, 0, r.code, r.stderr)
		got, _ := c.srv.Ticket(tk.ID)
		assert.Equal(t, models.StatusInProgress, got.Status)
	})

	t.Run("unknown status is refused locally", func(t *testing.T) {
		before := c.srv.Calls("PUT /api/tickets/status/:id")
		r := c.run("tickets", "status", tk.ID, "pending")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stderr, "Unknown ticket status")
		assert.Equal(t, before, c.srv.Calls("PUT /api/tickets/status/:id"))
	})

	t.Run("assign by email", func(t *testing.T) {
		r := c.run("tickets", "assign", tk.ID, "bo@example.com")
		require.Equal(t, 0, r.code, r.stderr)
		assert.Contains(t, r.stderr, "Ticket assigned successfully!")
		got, _ := c.srv.Ticket(tk.ID)
		require.NotNil(t, got.AssignedTo)
		assert.Equal(t, bo.ID, got.AssignedTo.ID)
	})

	t.Run("comment", func(t *testing.T) {
		r := c.run("tickets", "comment", tk.ID, "On", "it")
		require.Equal(t, 0, r.code, r.stderr)
		got, _ := c.srv.Ticket(tk.ID)
		require.NotEmpty(t, got.Comments)
		assert.Equal(t, "On it", got.Comments[len(got.Comments)-1].Message)
	})

	t.Run("show", func(t *testing.T) {
		r := c.run("tickets", "show", tk.ID)
		require.Equal(t, 0, r.code, r.stderr)
		assert.Contains(t, r.stdout, "Printer jammed")
		assert.Contains(t, r.stdout, "On it")
		assert.Contains(t, r.stdout, "Bo")
	})

	t.Run("delete", func(t *testing.T) {
		r := c.run("tickets", "delete", tk.ID)
		require.Equal(t, 0, r.code, r.stderr)
		_, ok := c.srv.Ticket(tk.ID)
		assert.False(t, ok)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		r := c.run("tickets", "show", "nope")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stderr, "Ticket is not loaded")
	})
}

func TestTickets_ListHidesOthersTicketsFromUsers(t *testing.T) {
	c := newCLI(t)
	bo := c.srv.AddUser("Bo", "bo@example.com", "secret", models.RoleUser)
	c.srv.AddTicket(models.Ticket{Title: "Mine", Description: "x", Department: "IT", AssignedTo: &models.UserRef{ID: bo.ID, Name: bo.Name}})
	c.srv.AddTicket(models.Ticket{Title: "Theirs", Description: "x", Department: "IT"})
	c.login("bo@example.com")

	r := c.run("tickets", "list")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Mine")
	assert.NotContains(t, r.stdout, "Theirs")
}

func TestTickets_ListBadDate(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Root", "root@example.com", "secret", models.RoleSuperAdmin)
	c.login("root@example.com")

	r := c.run("tickets", "list", "--from", "05/01/2024")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "YYYY-MM-DD")
}

func TestTickets_ListXLSX(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Root", "root@example.com", "secret", models.RoleSuperAdmin)
	c.srv.AddTicket(models.Ticket{Title: "Printer jammed", Description: "x", Department: "IT"})
	c.login("root@example.com")

	path := filepath.Join(c.dir, "tickets.xlsx")
	r := c.run("tickets", "list", "--xlsx", path)
	require.Equal(t, 0, r.code, r.stderr)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(tickets.ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Printer jammed", rows[1][1])
}

func TestTickets_Create(t *testing.T) {
	c := newCLI(t)

	t.Run("invalid form sends nothing", func(t *testing.T) {
		r := c.run("tickets", "create", "--title", "Leak")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stderr, "Please fill in all required fields")
		assert.Contains(t, r.stderr, "email")
		assert.Equal(t, 0, c.srv.Calls("POST /api/tickets"))
	})

	t.Run("submitted", func(t *testing.T) {
		r := c.run("tickets", "create",
			"--name", "Ada Obi",
			"--email", "ada@example.com",
			"--phone", "+234 800 000 0000",
			"--department", "Admin",
			"--category", "Office Issue",
			"--location", "KAM HQ",
			"--subcategory", "Electrical",
			"--title", "Socket sparks",
			"--details", "Second floor, by the window",
		)
		require.Equal(t, 0, r.code, r.stderr)
		assert.Contains(t, r.stdout, "Ticket submitted successfully")
		assert.Contains(t, r.stdout, "kamdesk track trk-")
		assert.Equal(t, 1, c.srv.Calls("POST /api/tickets"))
	})
}

func TestTickets_Mine(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleUser)
	c.srv.AddTicket(models.Ticket{Title: "Raised by Ada", Description: "x", Department: "IT", Email: "ada@example.com"})
	c.srv.AddTicket(models.Ticket{Title: "Raised by Bo", Description: "x", Department: "IT", Email: "bo@example.com"})
	c.login("ada@example.com")

	r := c.run("tickets", "mine")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Raised by Ada")
	assert.NotContains(t, r.stdout, "Raised by Bo")
}

func TestTrack(t *testing.T) {
	c := newCLI(t)
	tk := c.srv.AddTicket(models.Ticket{Title: "Broken chair", Description: "x", Department: "HR"})

	r := c.run("track", c.srv.URL()+"/track/"+tk.TrackingToken, "--comment", "Any update?")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Broken chair")
	assert.Contains(t, r.stdout, "Any update?")
	assert.Contains(t, r.stdout, "You")
	assert.Contains(t, r.stderr, "Comment sent")

	r = c.run("track", "bogus")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Ticket not found or link is invalid.")
}

func TestUsers(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Root", "root@example.com", "secret", models.RoleSuperAdmin)
	bo := c.srv.AddUser("Bo", "bo@example.com", "secret", models.RoleUser)
	c.login("root@example.com")

	r := c.run("users", "list")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Cannot modify")
	assert.Contains(t, r.stdout, "User, Admin")

	r = c.run("users", "list", "-o", "json")
	require.Equal(t, 0, r.code, r.stderr)
	var rows []render.UserRow
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rows))
	assert.Len(t, rows, 2)

	r = c.run("users", "promote", bo.ID, "Admin")
	require.Equal(t, 0, r.code, r.stderr)
	got, _ := c.srv.User(bo.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)

	r = c.run("users", "promote", bo.ID, "super-admin")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "You are not allowed to assign this role")

	r = c.run("users", "create", "--name", "Cy", "--email", "cy@example.com", "--password", "secret", "--role", "admin", "-o", "json")
	require.Equal(t, 0, r.code, r.stderr)
	var created models.User
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &created))
	assert.Equal(t, models.RoleAdmin, created.Role)
	stored, ok := c.srv.User(created.ID)
	require.True(t, ok)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestDashboard(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleAdmin)
	c.srv.AddTicket(models.Ticket{Title: "a", Description: "x", Department: "IT"})
	c.srv.AddTicket(models.Ticket{Title: "b", Description: "x", Department: "HR", Status: models.StatusClosed})

	r := c.run("dashboard")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Please sign in to continue")

	c.login("ada@example.com")
	r = c.run("dashboard")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Total Tickets 2")
	assert.Contains(t, r.stdout, "Tickets by Department")

	path := filepath.Join(c.dir, "dashboard.xlsx")
	r = c.run("dashboard", "--xlsx", path)
	require.Equal(t, 0, r.code, r.stderr)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Departments")
}

func TestNav_PinIsRemembered(t *testing.T) {
	c := newCLI(t)

	r := c.run("nav")
	require.Equal(t, 0, r.code, r.stderr)
	assert.NotContains(t, r.stdout, "kamdesk dashboard")

	r = c.run("nav", "pin")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "kamdesk dashboard")

	r = c.run("nav", "-o", "json")
	require.Equal(t, 0, r.code, r.stderr)
	var v navView
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &v))
	assert.True(t, v.Pinned)
	assert.Len(t, v.Items, 3)
}

func TestMetricsFile(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleUser)
	path := filepath.Join(c.dir, "client.prom")

	r := c.run("login", "--email", "ada@example.com", "--password", "secret", "--metrics-file", path)
	require.Equal(t, 0, r.code, r.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kamdesk_client_requests_total")
	assert.Contains(t, string(data), `operation="login"`)
}

func TestMetricsFileWrittenOnFailure(t *testing.T) {
	c := newCLI(t)
	c.srv.AddUser("Ada", "ada@example.com", "secret", models.RoleUser)
	path := filepath.Join(c.dir, "client.prom")

	r := c.run("login", "--email", "ada@example.com", "--password", "wrong", "--metrics-file", path)
	require.Equal(t, 1, r.code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `operation="login"`)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.Status
	}{
		{"open", models.StatusOpen},
		{"In Progress", models.StatusInProgress},
		{"in-progress", models.StatusInProgress},
		{"in_progress", models.StatusInProgress},
		{"RESOLVED", models.StatusResolved},
		{"pending", models.Status("pending")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStatus(tt.in))
		})
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, parseRole(" Admin "))
	assert.Equal(t, models.RoleSuperAdmin, parseRole("super-admin"))
	assert.Equal(t, models.RoleUser, parseRole("user"))
}

func TestTrackingToken(t *testing.T) {
	assert.Equal(t, "abc", trackingToken("abc"))
	assert.Equal(t, "abc", trackingToken("https://help.example.com/track/abc/"))
}
