package models

// CountBucket is one row of a grouped count. ID is whatever the API grouped
// by and may be null or non-string.
type CountBucket struct {
	ID    interface{} `json:"_id"`
	Count interface{} `json:"count"`
}

// CommentCount is the number of comments on one ticket.
type CommentCount struct {
	ID            interface{} `json:"_id"`
	TotalComments interface{} `json:"totalComments"`
}

// TicketMetrics holds the ticket aggregates of the dashboard.
type TicketMetrics struct {
	TotalTickets        int            `json:"totalTickets"`
	OpenTickets         int            `json:"openTickets"`
	InProgressTickets   int            `json:"inProgressTickets"`
	ResolvedTickets     int            `json:"resolvedTickets"`
	ClosedTickets       int            `json:"closedTickets"`
	TicketsWithComments []CommentCount `json:"ticketsWithComments"`
	TicketsByDepartment []CountBucket  `json:"ticketsByDepartment"`
	TicketsByCategory   []CountBucket  `json:"ticketsByCategory"`
}

// UserMetrics holds the account aggregates of the dashboard.
type UserMetrics struct {
	TotalUsers       int `json:"totalUsers"`
	TotalAdmins      int `json:"totalAdmins"`
	TotalSuperAdmins int `json:"totalSuperAdmins"`
}

// DashboardMetrics is the body of GET /api/metrics.
type DashboardMetrics struct {
	Tickets TicketMetrics `json:"tickets"`
	Users   UserMetrics   `json:"users"`
}
