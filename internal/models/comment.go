package models

// SenderType tags who wrote a comment.
type SenderType string

// Comment sender types.
const (
	SenderUser  SenderType = "user"
	SenderStaff SenderType = "staff"
)

// CommentSender identifies the staff member behind a comment.
type CommentSender struct {
	ID    string `json:"_id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  Role   `json:"role,omitempty" yaml:"role,omitempty"`
}

// Comment is an append-only message on a ticket. ID may be empty for a
// comment echoed back before the server assigned its identity.
type Comment struct {
	ID         string         `json:"_id,omitempty" yaml:"id,omitempty"`
	SenderType SenderType     `json:"senderType" yaml:"sender_type"`
	Sender     *CommentSender `json:"sender,omitempty" yaml:"sender,omitempty"`
	Message    string         `json:"message" yaml:"message"`
	CreatedAt  string         `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

// CommentRequest is the body of both comment endpoints.
type CommentRequest struct {
	Message string `json:"message"`
}
