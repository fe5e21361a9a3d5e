// Package history provides comment thread formatting and display utilities.
package history

import (
	"strings"
	"time"

	"github.com/goatkit/kamdesk/internal/models"
	"github.com/goatkit/kamdesk/internal/tickets"
)

// Audience is who is reading a thread.
type Audience int

// Audiences.
const (
	// AudienceStaff reads a thread from the ticket list.
	AudienceStaff Audience = iota
	// AudienceTracker is the requester following the tracking link.
	AudienceTracker
)

// MissingTimestamp is shown for comments without a usable creation time.
const MissingTimestamp = "—"

// TimestampLayout is how comment times are printed.
const TimestampLayout = "2006-01-02 15:04"

// AuthorLabel names the author of c for the given audience. Requester
// comments read "User" to staff and "You" to the requester; staff comments
// carry the sender's name, or "Staff" when the echo left it out.
func AuthorLabel(c models.Comment, a Audience) string {
	if c.SenderType == models.SenderUser {
		if a == AudienceTracker {
			return "You"
		}
		return "User"
	}
	if c.Sender != nil {
		if name := strings.TrimSpace(c.Sender.Name); name != "" {
			return name
		}
	}
	return "Staff"
}

// FormatTimestamp prints an API timestamp in loc, or MissingTimestamp.
func FormatTimestamp(raw string, loc *time.Location) string {
	t, ok := models.ParseTimestamp(raw)
	if !ok {
		return MissingTimestamp
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimestampLayout)
}

// Entry is one displayable comment.
type Entry struct {
	Key     string
	Author  string
	Message string
	// When is the formatted creation time; At is zero when it was missing.
	When  string
	At    time.Time
	Staff bool
}

// Line renders e as "author • time • message".
func (e Entry) Line() string {
	return strings.Join([]string{e.Author, e.When, e.Message}, " • ")
}

// Thread turns comments into display entries, keeping their order.
func Thread(comments []models.Comment, a Audience, loc *time.Location) []Entry {
	entries := make([]Entry, 0, len(comments))
	for i, c := range comments {
		at, _ := models.ParseTimestamp(c.CreatedAt)
		entries = append(entries, Entry{
			Key:     tickets.CommentKey(c, i),
			Author:  AuthorLabel(c, a),
			Message: strings.TrimSpace(c.Message),
			When:    FormatTimestamp(c.CreatedAt, loc),
			At:      at,
			Staff:   c.SenderType != models.SenderUser,
		})
	}
	return entries
}

// Latest returns the most recent dated entry. Undated entries only win
// when nothing is dated.
func Latest(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	best := -1
	for i, e := range entries {
		if e.At.IsZero() {
			continue
		}
		if best < 0 || !e.At.Before(entries[best].At) {
			best = i
		}
	}
	if best < 0 {
		return entries[len(entries)-1], true
	}
	return entries[best], true
}
