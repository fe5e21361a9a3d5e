package models

import "encoding/json"

// Status is the lifecycle state of a ticket. The client enforces no progression.
type Status string

// Ticket statuses accepted by the API.
const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Statuses lists every status in enumeration order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Departments is the closed set of organisational units a ticket can belong to.
var Departments = []string{
	"HR",
	"Audit",
	"Supply Chain",
	"Admin",
	"Production",
	"Finance",
	"Maintenance",
	"IT",
}

// ValidDepartment reports whether d is a known department (case-sensitive).
func ValidDepartment(d string) bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// Ticket is the client's cached copy of a support request.
type Ticket struct {
	ID            string    `json:"_id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	CreatedAt     string    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt     string    `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	FullName      string    `json:"fullName,omitempty" yaml:"full_name,omitempty"`
	Email         string    `json:"email,omitempty" yaml:"email,omitempty"`
	Phone         string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Location      string    `json:"location,omitempty" yaml:"location,omitempty"`
	Department    string    `json:"department" yaml:"department"`
	Category      string    `json:"category,omitempty" yaml:"category,omitempty"`
	SubCategory   string    `json:"subCategory,omitempty" yaml:"sub_category,omitempty"`
	Status        Status    `json:"status" yaml:"status"`
	AssignedTo    *UserRef  `json:"assignedTo,omitempty" yaml:"assigned_to,omitempty"`
	Image         string    `json:"image,omitempty" yaml:"image,omitempty"`
	TrackingToken string    `json:"trackingToken,omitempty" yaml:"tracking_token,omitempty"`
	Comments      []Comment `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// UnmarshalJSON accepts both created_at (list endpoint) and createdAt
// (tracking endpoint) for the creation timestamp.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type plain Ticket
	var aux struct {
		plain
		CreatedAtCamel string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Ticket(aux.plain)
	if t.CreatedAt == "" {
		t.CreatedAt = aux.CreatedAtCamel
	}
	return nil
}

// AssigneeID returns the id of the assigned user, or "" when unassigned.
func (t Ticket) AssigneeID() string {
	if t.AssignedTo == nil {
		return ""
	}
	return t.AssignedTo.ID
}

// IsAssignedTo reports whether the ticket is assigned to userID.
// An unassigned ticket is assigned to nobody, including the empty id.
func (t Ticket) IsAssignedTo(userID string) bool {
	return t.AssignedTo != nil && userID != "" && t.AssignedTo.ID == userID
}

// TicketSubmission is the multipart body of POST /api/tickets.
type TicketSubmission struct {
	FullName    string
	Email       string
	Phone       string
	Location    string
	Department  string
	Category    string
	SubCategory string
	Title       string
	Description string
	ImagePath   string // optional local file uploaded as "image"
}

// FormFields returns the text parts of the multipart body.
func (s TicketSubmission) FormFields() map[string]string {
	return map[string]string{
		"fullName":    s.FullName,
		"email":       s.Email,
		"phone":       s.Phone,
		"location":    s.Location,
		"department":  s.Department,
		"category":    s.Category,
		"subCategory": s.SubCategory,
		"title":       s.Title,
		"description": s.Description,
	}
}
