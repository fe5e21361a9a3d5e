package render

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xeonx/timeago"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goatkit/kamdesk/internal/constants"
	"github.com/goatkit/kamdesk/internal/history"
	"github.com/goatkit/kamdesk/internal/models"
)

var (
	strict = bluemonday.StrictPolicy()
	title  = cases.Title(language.English)
)

// Clean strips markup from server-provided text and collapses the
// whitespace left behind.
func Clean(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// RoleLabel is the display form of a role, e.g. "Super Admin".
func RoleLabel(r models.Role) string {
	if r == "" {
		return constants.MissingValueLabel
	}
	return title.String(strings.ReplaceAll(string(r), "_", " "))
}

// Ago renders an API timestamp relative to now, e.g. "3 hours ago".
func Ago(raw string, now time.Time) string {
	t, ok := models.ParseTimestamp(raw)
	if !ok {
		return history.MissingTimestamp
	}
	return since(t, now)
}

func since(t, now time.Time) string {
	return timeago.English.FormatReference(t, now)
}

// ImageURL resolves a ticket image path against the API base URL.
// Absolute URLs are returned unchanged.
func ImageURL(apiURL, image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimRight(apiURL, "/") + "/" + strings.TrimPrefix(image, "/")
}

// Assignee names the assigned user, or "Unassigned".
func Assignee(t models.Ticket) string {
	if t.AssignedTo == nil {
		return "Unassigned"
	}
	if name := strings.TrimSpace(t.AssignedTo.Name); name != "" {
		return name
	}
	return t.AssignedTo.ID
}
