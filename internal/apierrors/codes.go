// Package apierrors provides the client's error taxonomy.
// All codes are namespaced (e.g., "auth:no_session", "precondition:empty_comment").
package apierrors

import "net/http"

// Authentication: never shown as an error banner, always routed to sign-in.
const (
	CodeNoSession    = "auth:no_session"
	CodeUnauthorized = "auth:unauthorized"
	CodeLoginFailed  = "auth:login_failed"
)

// Remote request failures carrying a user-facing message.
const (
	CodeRequestFailed   = "request:failed"
	CodeNetwork         = "request:network"
	CodeMalformedBody   = "request:malformed_body"
	CodeNotFound        = "request:not_found"
	CodeTicketsLoad     = "request:tickets_load_failed"
	CodeTrackingMissing = "request:tracking_not_found"
)

// Local precondition failures; no request is sent.
const (
	CodeEmptyComment     = "precondition:empty_comment"
	CodeNoUserSelected   = "precondition:no_user_selected"
	CodeAlreadyAssigned  = "precondition:already_assigned"
	CodeInvalidStatus    = "precondition:invalid_status"
	CodeInvalidRole      = "precondition:invalid_role"
	CodeRoleLocked       = "precondition:role_locked"
	CodeRoleNotAllowed   = "precondition:role_not_allowed"
	CodeInvalidForm      = "precondition:invalid_form"
	CodeUnknownTicket    = "precondition:unknown_ticket"
	CodeMissingArgument  = "precondition:missing_argument"
	CodeInvalidDateRange = "precondition:invalid_date_range"
)

// coreErrors defines every client error code with its default message and the
// HTTP status it usually corresponds to (0 for purely local failures).
var coreErrors = []ErrorCode{
	{Code: CodeNoSession, Message: "Please sign in to continue", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeUnauthorized, Message: "Authentication required", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeLoginFailed, Message: "Login failed", HTTPStatus: http.StatusUnauthorized},

	{Code: CodeRequestFailed, Message: "Request failed", HTTPStatus: http.StatusBadRequest},
	{Code: CodeNetwork, Message: "Could not reach the helpdesk server", HTTPStatus: http.StatusServiceUnavailable},
	{Code: CodeMalformedBody, Message: "Unexpected response from the helpdesk server", HTTPStatus: http.StatusBadGateway},
	{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound},
	{Code: CodeTicketsLoad, Message: "Failed to load tickets", HTTPStatus: http.StatusInternalServerError},
	{Code: CodeTrackingMissing, Message: "Ticket not found or link is invalid.", HTTPStatus: http.StatusNotFound},

	{Code: CodeEmptyComment, Message: "Comment cannot be empty"},
	{Code: CodeNoUserSelected, Message: "Please select a user"},
	{Code: CodeAlreadyAssigned, Message: "Ticket is already assigned to this user"},
	{Code: CodeInvalidStatus, Message: "Unknown ticket status"},
	{Code: CodeInvalidRole, Message: "Unknown role"},
	{Code: CodeRoleLocked, Message: "Cannot modify"},
	{Code: CodeRoleNotAllowed, Message: "You are not allowed to assign this role"},
	{Code: CodeInvalidForm, Message: "Please fill in all required fields"},
	{Code: CodeUnknownTicket, Message: "Ticket is not loaded"},
	{Code: CodeMissingArgument, Message: "Missing required argument"},
	{Code: CodeInvalidDateRange, Message: "Dates must use the YYYY-MM-DD format"},
}

func init() {
	for _, e := range coreErrors {
		Registry.Register(e)
	}
}
