package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/constants"
	"github.com/goatkit/kamdesk/internal/models"
)

// ListTickets returns every ticket the caller may read, comments included.
func (c *Client) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	resp, err := c.do(ctx, c.rest, opListTickets, http.MethodGet, constants.PathTickets, nil)
	if err != nil {
		return nil, err
	}
	return decodeTicketList(opListTickets, resp)
}

// GetTicket returns one ticket by id.
func (c *Client) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	resp, err := c.do(ctx, c.rest, opGetTicket, http.MethodGet, constants.PathTicket, func(r *resty.Request) {
		r.SetPathParam("id", id)
	})
	if err != nil {
		return nil, err
	}
	return decodeTicket(opGetTicket, resp)
}

// TicketsByEmail returns the tickets raised from an email address.
func (c *Client) TicketsByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	resp, err := c.do(ctx, c.rest, opTicketsByEmail, http.MethodGet, constants.PathTicketsByEmail, func(r *resty.Request) {
		r.SetPathParam("email", email)
	})
	if err != nil {
		return nil, err
	}
	return decodeTicketList(opTicketsByEmail, resp)
}

// CreateTicket submits a new ticket as multipart form data.
func (c *Client) CreateTicket(ctx context.Context, sub models.TicketSubmission) (*models.Ticket, error) {
	resp, err := c.do(ctx, c.rest, opCreateTicket, http.MethodPost, constants.PathTickets, func(r *resty.Request) {
		r.SetMultipartFormData(sub.FormFields())
		if sub.ImagePath != "" {
			r.SetFile("image", sub.ImagePath)
		}
	})
	if err != nil {
		return nil, err
	}
	return decodeTicket(opCreateTicket, resp)
}

// AssignResult is the acknowledgement of an assignment. Ticket is the
// updated ticket when the server sends it back.
type AssignResult struct {
	Message string
	Ticket  *models.Ticket
}

// Assignee returns the assignee the server recorded. ok is false when the
// reply carried no ticket or no assignee name.
func (r *AssignResult) Assignee() (ref models.UserRef, ok bool) {
	if r == nil || r.Ticket == nil || r.Ticket.AssignedTo == nil || r.Ticket.AssignedTo.Name == "" {
		return models.UserRef{}, false
	}
	return *r.Ticket.AssignedTo, true
}

// AssignTicket assigns a ticket to a user.
func (c *Client) AssignTicket(ctx context.Context, ticketID, userID string) (*AssignResult, error) {
	resp, err := c.do(ctx, c.rest, opAssignTicket, http.MethodPut, constants.PathAssignTicket, func(r *resty.Request) {
		r.SetPathParam("id", ticketID).SetBody(map[string]string{"userId": userID})
	})
	if err != nil {
		return nil, err
	}
	res := &AssignResult{Message: message(resp)}
	var wrapped struct {
		Ticket json.RawMessage `json:"ticket"`
	}
	if err := json.Unmarshal(resp.Body(), &wrapped); err == nil && isJSONObject(wrapped.Ticket) {
		var t models.Ticket
		if err := json.Unmarshal(wrapped.Ticket, &t); err == nil {
			res.Ticket = &t
		} else {
			c.logger.Debug("assign reply ticket not decodable", "ticket_id", ticketID, "error", err)
		}
	}
	return res, nil
}

// ChangeStatus sets the status of a ticket and returns the server message.
func (c *Client) ChangeStatus(ctx context.Context, ticketID string, status models.Status) (string, error) {
	resp, err := c.do(ctx, c.rest, opChangeStatus, http.MethodPut, constants.PathTicketStatus, func(r *resty.Request) {
		r.SetPathParam("id", ticketID).SetBody(map[string]models.Status{"status": status})
	})
	if err != nil {
		return "", err
	}
	return message(resp), nil
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, ticketID string) (string, error) {
	resp, err := c.do(ctx, c.rest, opDeleteTicket, http.MethodDelete, constants.PathTicket, func(r *resty.Request) {
		r.SetPathParam("id", ticketID)
	})
	if err != nil {
		return "", err
	}
	return message(resp), nil
}

// AddStaffComment posts a comment as the signed-in staff member.
func (c *Client) AddStaffComment(ctx context.Context, ticketID, text string) (*CommentEnvelope, error) {
	resp, err := c.do(ctx, c.rest, opStaffComment, http.MethodPost, constants.PathStaffComment, func(r *resty.Request) {
		r.SetPathParam("id", ticketID).SetBody(models.CommentRequest{Message: text})
	})
	if err != nil {
		return nil, err
	}
	var env CommentEnvelope
	if err := decode(opStaffComment, resp, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// AddTrackerComment posts a comment through a public tracking link.
func (c *Client) AddTrackerComment(ctx context.Context, token, text string) (*CommentEnvelope, error) {
	resp, err := c.do(ctx, c.anon, opTrackerComment, http.MethodPost, constants.PathTrackerComment, func(r *resty.Request) {
		r.SetPathParam("token", token).SetBody(models.CommentRequest{Message: text})
	})
	if err != nil {
		return nil, err
	}
	var env CommentEnvelope
	if err := decode(opTrackerComment, resp, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// TrackTicket fetches a ticket through its public tracking token.
func (c *Client) TrackTicket(ctx context.Context, token string) (*models.Ticket, error) {
	resp, err := c.do(ctx, c.anon, opTrackTicket, http.MethodGet, constants.PathTrackTicket, func(r *resty.Request) {
		r.SetPathParam("token", token)
	})
	if err != nil {
		return nil, err
	}
	return decodeTicket(opTrackTicket, resp)
}

// DashboardMetrics returns the aggregate counts shown on the dashboard.
func (c *Client) DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	resp, err := c.do(ctx, c.rest, opMetrics, http.MethodGet, constants.PathDashboardMetrics, nil)
	if err != nil {
		return nil, err
	}
	var m models.DashboardMetrics
	if err := decode(opMetrics, resp, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// decodeTicketList accepts a bare array or a {tickets: [...]} wrapper.
func decodeTicketList(op operation, resp *resty.Response) ([]models.Ticket, error) {
	body := bytes.TrimSpace(resp.Body())
	if len(body) > 0 && body[0] == '{' {
		var wrapped struct {
			Tickets []models.Ticket `json:"tickets"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, apierrors.Wrap(apierrors.CodeMalformedBody, "", fmt.Errorf("%s: decode: %w", op.name, err))
		}
		body, _ = json.Marshal(wrapped.Tickets)
	}
	var tickets []models.Ticket
	if err := json.Unmarshal(body, &tickets); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeMalformedBody, "", fmt.Errorf("%s: decode: %w", op.name, err))
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

// decodeTicket accepts a bare ticket or a {ticket: {...}} wrapper.
func decodeTicket(op operation, resp *resty.Response) (*models.Ticket, error) {
	var wrapped struct {
		Ticket json.RawMessage `json:"ticket"`
	}
	body := resp.Body()
	if err := json.Unmarshal(body, &wrapped); err == nil && isJSONObject(wrapped.Ticket) {
		body = wrapped.Ticket
	}
	var t models.Ticket
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeMalformedBody, "", fmt.Errorf("%s: decode: %w", op.name, err))
	}
	return &t, nil
}
