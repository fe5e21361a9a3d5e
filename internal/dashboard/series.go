package dashboard

import (
	"math"
	"sort"

	"github.com/goatkit/kamdesk/internal/convert"
	"github.com/goatkit/kamdesk/internal/models"
)

// Unspecified labels buckets the API grouped under a null or blank key.
const Unspecified = "Unspecified"

// Point is one labelled value of a chart series. Share is the percentage
// of the series total, rounded to one decimal.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Count int     `json:"count" yaml:"count"`
	Share float64 `json:"share,omitempty" yaml:"share,omitempty"`
}

// Summary is the headline numbers of the dashboard.
type Summary struct {
	TotalTickets     int `json:"total_tickets" yaml:"total_tickets"`
	Open             int `json:"open" yaml:"open"`
	InProgress       int `json:"in_progress" yaml:"in_progress"`
	Resolved         int `json:"resolved" yaml:"resolved"`
	Closed           int `json:"closed" yaml:"closed"`
	TotalUsers       int `json:"total_users" yaml:"total_users"`
	TotalAdmins      int `json:"total_admins" yaml:"total_admins"`
	TotalSuperAdmins int `json:"total_super_admins" yaml:"total_super_admins"`
}

// Report is everything the dashboard shows, derived from one metrics payload.
type Report struct {
	Summary      Summary `json:"summary" yaml:"summary"`
	Status       []Point `json:"status" yaml:"status"`
	Departments  []Point `json:"departments" yaml:"departments"`
	Categories   []Point `json:"categories" yaml:"categories"`
	MostComments []Point `json:"most_comments" yaml:"most_comments"`
}

// Build derives the dashboard report from m.
func Build(m models.DashboardMetrics) Report {
	t, u := m.Tickets, m.Users
	return Report{
		Summary: Summary{
			TotalTickets:     t.TotalTickets,
			Open:             t.OpenTickets,
			InProgress:       t.InProgressTickets,
			Resolved:         t.ResolvedTickets,
			Closed:           t.ClosedTickets,
			TotalUsers:       u.TotalUsers,
			TotalAdmins:      u.TotalAdmins,
			TotalSuperAdmins: u.TotalSuperAdmins,
		},
		Status:       StatusSeries(t),
		Departments:  withShares(buckets(t.TicketsByDepartment)),
		Categories:   withShares(buckets(t.TicketsByCategory)),
		MostComments: MostCommented(t.TicketsWithComments),
	}
}

// StatusSeries is the status breakdown in lifecycle order.
func StatusSeries(t models.TicketMetrics) []Point {
	return []Point{
		{Label: string(models.StatusOpen), Count: t.OpenTickets},
		{Label: string(models.StatusInProgress), Count: t.InProgressTickets},
		{Label: string(models.StatusResolved), Count: t.ResolvedTickets},
		{Label: string(models.StatusClosed), Count: t.ClosedTickets},
	}
}

// MostCommented orders tickets by comment count, highest first. Ties keep
// server order.
func MostCommented(in []models.CommentCount) []Point {
	out := make([]Point, 0, len(in))
	for _, c := range in {
		out = append(out, Point{
			Label: convert.ToString(c.ID, Unspecified),
			Count: convert.ToInt(c.TotalComments, 0),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func buckets(in []models.CountBucket) []Point {
	out := make([]Point, 0, len(in))
	for _, b := range in {
		out = append(out, Point{
			Label: convert.ToString(b.ID, Unspecified),
			Count: convert.ToInt(b.Count, 0),
		})
	}
	return out
}

func withShares(points []Point) []Point {
	total := 0
	for _, p := range points {
		total += p.Count
	}
	if total == 0 {
		return points
	}
	for i := range points {
		points[i].Share = math.Round(float64(points[i].Count)*1000/float64(total)) / 10
	}
	return points
}
