package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goatkit/kamdesk/internal/models"
)

// EchoKind tells which shape a comment submission response had.
type EchoKind int

// Comment echo shapes, in the order the unwrap rule tries them.
const (
	EchoNested EchoKind = iota // {"comment": {...}}
	EchoTicket                 // the updated ticket; its last comment is the new one
	EchoRaw                    // the body is the comment itself
)

func (k EchoKind) String() string {
	switch k {
	case EchoNested:
		return "nested"
	case EchoTicket:
		return "ticket"
	default:
		return "raw"
	}
}

// CommentEnvelope is the decoded response of a comment submission.
type CommentEnvelope struct {
	Kind    EchoKind
	Comment models.Comment
	Ticket  *models.Ticket // set for EchoTicket
}

// UnmarshalJSON applies the unwrap rule: a nested "comment" object wins,
// then a ticket echo carrying a non-empty "comments" array (last entry),
// then the body itself.
func (e *CommentEnvelope) UnmarshalJSON(data []byte) error {
	var probe struct {
		Comment  json.RawMessage `json:"comment"`
		Comments json.RawMessage `json:"comments"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("comment echo: %w", err)
	}

	if isJSONObject(probe.Comment) {
		var c models.Comment
		if err := json.Unmarshal(probe.Comment, &c); err != nil {
			return fmt.Errorf("comment echo: nested comment: %w", err)
		}
		*e = CommentEnvelope{Kind: EchoNested, Comment: c}
		return nil
	}

	if isJSONArray(probe.Comments) {
		var t models.Ticket
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("comment echo: ticket: %w", err)
		}
		if n := len(t.Comments); n > 0 {
			*e = CommentEnvelope{Kind: EchoTicket, Comment: t.Comments[n-1], Ticket: &t}
			return nil
		}
	}

	var c models.Comment
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("comment echo: raw: %w", err)
	}
	*e = CommentEnvelope{Kind: EchoRaw, Comment: c}
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
