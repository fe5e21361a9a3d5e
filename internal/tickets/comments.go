package tickets

import (
	"strconv"
	"strings"
	"time"

	"github.com/goatkit/kamdesk/internal/models"
)

// AppendComment merges a server-acknowledged comment into a thread and
// returns the new thread; existing is not modified. A missing timestamp is
// stamped with now. A comment whose id is already in the thread replaces
// that entry in place, anything else is appended.
func AppendComment(existing []models.Comment, c models.Comment, now time.Time) []models.Comment {
	if strings.TrimSpace(c.CreatedAt) == "" {
		c.CreatedAt = models.FormatTimestamp(now)
	}

	out := make([]models.Comment, len(existing), len(existing)+1)
	copy(out, existing)
	if c.ID != "" {
		for i := range out {
			if out[i].ID == c.ID {
				out[i] = c
				return out
			}
		}
	}
	return append(out, c)
}

// CommentKey is the stable render key of the comment at index: its id, or
// its timestamp and position while the id is unknown.
func CommentKey(c models.Comment, index int) string {
	if c.ID != "" {
		return c.ID
	}
	return c.CreatedAt + "-" + strconv.Itoa(index)
}
