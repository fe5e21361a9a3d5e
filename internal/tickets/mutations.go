package tickets

import "github.com/goatkit/kamdesk/internal/models"

// The appliers reflect a server-confirmed change on a ticket slice. They
// match by id, touch only the named field, and return a new slice; ok is
// false when no ticket has the id.

// ApplyAssignment sets the assignee of ticketID.
func ApplyAssignment(tickets []models.Ticket, ticketID string, assignee models.UserRef) (out []models.Ticket, ok bool) {
	return patch(tickets, ticketID, func(t *models.Ticket) {
		ref := assignee
		t.AssignedTo = &ref
	})
}

// ApplyStatusChange sets the status of ticketID.
func ApplyStatusChange(tickets []models.Ticket, ticketID string, status models.Status) (out []models.Ticket, ok bool) {
	return patch(tickets, ticketID, func(t *models.Ticket) {
		t.Status = status
	})
}

// RemoveTicket drops ticketID.
func RemoveTicket(tickets []models.Ticket, ticketID string) (out []models.Ticket, ok bool) {
	out = make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.ID == ticketID {
			ok = true
			continue
		}
		out = append(out, t)
	}
	return out, ok
}

func patch(tickets []models.Ticket, ticketID string, fn func(*models.Ticket)) ([]models.Ticket, bool) {
	out := make([]models.Ticket, len(tickets))
	copy(out, tickets)
	for i := range out {
		if out[i].ID == ticketID {
			fn(&out[i])
			return out, true
		}
	}
	return out, false
}
