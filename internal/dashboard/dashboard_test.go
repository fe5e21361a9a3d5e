package dashboard

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/client"
	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/notifications"
	"github.com/goatkit/kamdesk/internal/service"
	"github.com/goatkit/kamdesk/internal/testing/fakeapi"
)

type fixedSession struct{ s *models.Session }

func (f fixedSession) Resolve(context.Context) *models.Session { return f.s }

func TestBuild(t *testing.T) {
	m := models.DashboardMetrics{
		Tickets: models.TicketMetrics{
			TotalTickets: 4, OpenTickets: 2, InProgressTickets: 1, ClosedTickets: 1,
			TicketsByDepartment: []models.CountBucket{
				{ID: "IT", Count: float64(3)},
				{ID: nil, Count: float64(1)},
			},
			TicketsByCategory: []models.CountBucket{{ID: "  ", Count: "2"}},
			TicketsWithComments: []models.CommentCount{
				{ID: "t1", TotalComments: float64(1)},
				{ID: "t2", TotalComments: float64(5)},
				{ID: "t3", TotalComments: float64(1)},
			},
		},
		Users: models.UserMetrics{TotalUsers: 3, TotalAdmins: 1, TotalSuperAdmins: 1},
	}

	r := Build(m)
	assert.Equal(t, 4, r.Summary.TotalTickets)
	assert.Equal(t, 3, r.Summary.TotalUsers)
	assert.Equal(t, []Point{
		{Label: "Open", Count: 2},
		{Label: "In Progress", Count: 1},
		{Label: "Resolved", Count: 0},
		{Label: "Closed", Count: 1},
	}, r.Status)
	assert.Equal(t, []Point{
		{Label: "IT", Count: 3, Share: 75},
		{Label: Unspecified, Count: 1, Share: 25},
	}, r.Departments)
	assert.Equal(t, []Point{{Label: Unspecified, Count: 2, Share: 100}}, r.Categories)
	assert.Equal(t, []string{"t2", "t1", "t3"}, labels(r.MostComments))
}

func TestWithShares_Rounding(t *testing.T) {
	got := withShares([]Point{{Count: 1}, {Count: 2}})
	assert.Equal(t, 33.3, got[0].Share)
	assert.Equal(t, 66.7, got[1].Share)
	assert.Empty(t, withShares(nil))
	assert.Zero(t, withShares([]Point{{Count: 0}})[0].Share)
}

func TestView_RequiresSession(t *testing.T) {
	api := fakeapi.New(t)
	c, err := client.New(api.URL())
	require.NoError(t, err)

	v := NewView(c, fixedSession{}, nil, nil)
	_, err = v.Load(context.Background())
	assert.True(t, apierrors.IsCode(err, apierrors.CodeNoSession))
	assert.Zero(t, api.Calls("GET /api/metrics"))
}

func TestView_LoadAgainstServer(t *testing.T) {
	api := fakeapi.New(t)
	admin := api.AddUser("Ada", "ada@kam.test", "secret", models.RoleAdmin)
	api.AddTicket(models.Ticket{Title: "a", Department: "IT", Category: "Hardware"})
	api.AddTicket(models.Ticket{Title: "b", Department: "IT"})
	api.AddTicket(models.Ticket{Title: "c", Department: "HR", Comments: []models.Comment{{ID: "c1"}, {ID: "c2"}}})

	c, err := client.New(api.URL())
	require.NoError(t, err)
	_, err = c.Login(context.Background(), admin.Email, "secret")
	require.NoError(t, err)

	v := NewView(c, service.NewSessionService(c, nil), nil, nil)
	r, err := v.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, r.Summary.TotalTickets)
	assert.Equal(t, 3, r.Summary.Open)
	assert.Equal(t, []Point{{Label: "IT", Count: 2, Share: 66.7}, {Label: "HR", Count: 1, Share: 33.3}}, r.Departments)
	assert.Equal(t, []string{"Hardware", Unspecified}, labels(r.Categories))
	require.Len(t, r.MostComments, 1)
	assert.Equal(t, 2, r.MostComments[0].Count)
	assert.Equal(t, r, v.Report())
}

func TestView_LoadFailureUsesServerMessage(t *testing.T) {
	api := fakeapi.New(t)
	api.Fail("GET /api/metrics", http.StatusInternalServerError, "Aggregation timed out")
	c, err := client.New(api.URL())
	require.NoError(t, err)

	hub := notifications.NewMemoryHub()
	v := NewView(c, fixedSession{s: models.NewSession(models.User{ID: "u1", Role: models.RoleAdmin})}, hub, nil)
	_, err = v.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, v.Report())
	n, _ := hub.Last()
	assert.Equal(t, "Aggregation timed out", n.Message)
}

func TestExport(t *testing.T) {
	r := Report{
		Summary:      Summary{TotalTickets: 3, Open: 2, TotalUsers: 5},
		Departments:  []Point{{Label: "IT", Count: 2, Share: 66.7}, {Label: "HR", Count: 1, Share: 33.3}},
		Categories:   []Point{{Label: Unspecified, Count: 3, Share: 100}},
		MostComments: []Point{{Label: "t1", Count: 4}},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetDepartments, SheetCategories, SheetComments}, f.GetSheetList())

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Tickets", "3"}, rows[1])

	rows, err = f.GetRows(SheetDepartments)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Department", "Count", "Share %"},
		{"IT", "2", "66.7"},
		{"HR", "1", "33.3"},
	}, rows)

	rows, err = f.GetRows(SheetComments)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ticket", "Count"}, {"t1", "4"}}, rows)
}

func labels(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}
