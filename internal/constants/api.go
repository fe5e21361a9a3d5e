// Package constants holds the API routes and client defaults shared across packages.
package constants

// API routes, relative to the configured API URL.
const (
	PathRegister       = "/api/register"
	PathLogin          = "/api/login"
	PathLogout         = "/api/logout"
	PathCurrentUser    = "/api/user"
	PathUsers          = "/api/users"
	PathPromote        = "/api/promote/{id}"
	PathForgotPassword = "/api/forgot-password"
	PathResetPassword  = "/api/reset-password/{token}"

	PathTickets          = "/api/tickets"
	PathTicket           = "/api/tickets/{id}"
	PathTicketsByEmail   = "/api/tickets/email/{email}"
	PathAssignTicket     = "/api/tickets/assign/{id}"
	PathTicketStatus     = "/api/tickets/status/{id}"
	PathStaffComment     = "/api/tickets/{id}/comment"
	PathTrackTicket      = "/api/tickets/track/{token}"
	PathTrackerComment   = "/api/tickets/track/{token}/comment"
	PathDashboardMetrics = "/api/metrics"
)

// Client defaults.
const (
	DefaultAPIURL    = "http://localhost:8081"
	DefaultOutput    = "table"
	DefaultLogLevel  = "info"
	RequestIDHeader  = "X-Request-ID"
	AuthCookieName   = "token"
	FilterAll        = "all"
)

// Placeholders for values that are absent.
const (
	MissingValueLabel = "—"
	MissingDateLabel  = MissingValueLabel
)

// Local storage keys.
const (
	PrefSidebarPinned = "sidebar:pinned"
)
