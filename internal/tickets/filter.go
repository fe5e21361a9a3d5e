// Package tickets holds the ticket list view-model and the pure rules it
// is built from: filtering, visibility, comment merging and mutation
// appliers.
package tickets

import (
	"time"

	"github.com/goatkit/kamdesk/internal/apierrors"
	"github.com/goatkit/kamdesk/internal/constants"
	"github.com/goatkit/kamdesk/internal/models"
)

const isoDateLayout = "2006-01-02"

// Filters narrows the loaded ticket set. Dates are inclusive ISO calendar
// dates; an empty bound is unset. Department and Status take "all" or an
// exact enum value; empty means "all".
type Filters struct {
	StartDate  string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Department string `json:"department" yaml:"department"`
	Status     string `json:"status" yaml:"status"`
}

// DefaultFilters matches every ticket.
func DefaultFilters() Filters {
	return Filters{Department: constants.FilterAll, Status: constants.FilterAll}
}

// Normalize replaces empty department/status with "all".
func (f Filters) Normalize() Filters {
	if f.Department == "" {
		f.Department = constants.FilterAll
	}
	if f.Status == "" {
		f.Status = constants.FilterAll
	}
	return f
}

// Validate rejects date bounds that are not ISO calendar dates.
func (f Filters) Validate() error {
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(isoDateLayout, d); err != nil {
			return apierrors.Wrap(apierrors.CodeInvalidDateRange, "", err)
		}
	}
	return nil
}

// ISODate returns the UTC calendar date of an API timestamp.
func ISODate(raw string) (string, bool) {
	t, ok := models.ParseTimestamp(raw)
	if !ok {
		return "", false
	}
	return t.UTC().Format(isoDateLayout), true
}

// DisplayDate is ISODate with the missing-date placeholder.
func DisplayDate(raw string) string {
	if d, ok := ISODate(raw); ok {
		return d
	}
	return constants.MissingDateLabel
}

// Matches reports whether t passes the date, department and status tests.
func Matches(t models.Ticket, f Filters) bool {
	return matchesDate(t, f) && matchesExact(string(t.Department), f.Department) && matchesExact(string(t.Status), f.Status)
}

// Filter keeps the tickets matching f, in order.
func Filter(tickets []models.Ticket, f Filters) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// matchesDate compares ISO dates lexically. A ticket without a usable
// creation date fails as soon as either bound is set.
func matchesDate(t models.Ticket, f Filters) bool {
	if f.StartDate == "" && f.EndDate == "" {
		return true
	}
	day, ok := ISODate(t.CreatedAt)
	if !ok {
		return false
	}
	if f.StartDate != "" && day < f.StartDate {
		return false
	}
	if f.EndDate != "" && day > f.EndDate {
		return false
	}
	return true
}

func matchesExact(value, want string) bool {
	return want == "" || want == constants.FilterAll || value == want
}
