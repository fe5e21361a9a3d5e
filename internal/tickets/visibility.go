package tickets

import "github.com/goatkit/kamdesk/internal/models"

// Visible narrows an already filtered set to what s may see listed: admins
// (super-admins included) see everything, everyone else only the tickets
// assigned to them, and no session sees nothing. This is display
// filtering; the API is the authority on access.
func Visible(filtered []models.Ticket, s *models.Session) []models.Ticket {
	out := make([]models.Ticket, 0, len(filtered))
	if s == nil {
		return out
	}
	if s.IsAdmin {
		return append(out, filtered...)
	}
	for _, t := range filtered {
		if t.IsAssignedTo(s.UserID) {
			out = append(out, t)
		}
	}
	return out
}

// Hints are advisory: they decide which actions to offer, not what the
// API will accept.
type Hints struct {
	CanComment      bool `json:"can_comment" yaml:"can_comment"`
	CanChangeStatus bool `json:"can_change_status" yaml:"can_change_status"`
	CanAssign       bool `json:"can_assign" yaml:"can_assign"`
	CanDelete       bool `json:"can_delete" yaml:"can_delete"`
}

// HintsFor returns the actions to offer s on t.
func HintsFor(t models.Ticket, s *models.Session) Hints {
	if s == nil {
		return Hints{}
	}
	participant := s.IsAdmin || t.IsAssignedTo(s.UserID)
	return Hints{
		CanComment:      participant,
		CanChangeStatus: participant,
		CanAssign:       s.IsSuperAdmin,
		CanDelete:       s.IsSuperAdmin,
	}
}
