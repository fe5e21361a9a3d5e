package apierrors

import (
	"encoding/json"
	"errors"
	"strings"
)

// Error is a classified client failure. Message is always safe to show to
// the user; Err keeps the underlying cause for logs.
type Error struct {
	Code    string
	Message string
	Status  int // HTTP status when the failure came from a response, 0 otherwise
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Namespace returns the namespace of the error code.
func (e *Error) Namespace() string { return namespaceOf(e.Code) }

// New creates an Error with the registered default message.
func New(code string) *Error {
	return &Error{Code: code, Message: Registry.Message(code)}
}

// NewWithMessage creates an Error with a custom message.
func NewWithMessage(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap classifies err under code with a user-facing message.
func Wrap(code, message string, err error) *Error {
	if message == "" {
		message = Registry.Message(code)
	}
	return &Error{Code: code, Message: message, Err: err}
}

// statusCodes are the codes a response status can map to directly; any
// other status is CodeRequestFailed.
var statusCodes = []string{CodeUnauthorized, CodeNotFound}

// FromResponse classifies a non-2xx response. When useBody is set, the
// message field of the body wins over fallback.
func FromResponse(status int, body []byte, fallback string, useBody bool) *Error {
	code := CodeRequestFailed
	for _, c := range statusCodes {
		if Registry.HTTPStatus(c) == status {
			code = c
			break
		}
	}

	message := fallback
	if useBody {
		if extracted, ok := ExtractMessage(body); ok {
			message = extracted
		}
	}
	if message == "" {
		message = Registry.Message(code)
	}
	return &Error{Code: code, Message: message, Status: status}
}

// ExtractMessage pulls the user-facing message out of an error body. It
// understands `{"message": "..."}` and the `{"error": {"message": "..."}}`
// envelope, as well as `{"error": "..."}`.
func ExtractMessage(body []byte) (string, bool) {
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	if msg := strings.TrimSpace(envelope.Message); msg != "" {
		return msg, true
	}
	if len(envelope.Error) == 0 {
		return "", false
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		if msg := strings.TrimSpace(nested.Message); msg != "" {
			return msg, true
		}
	}
	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		if msg := strings.TrimSpace(plain); msg != "" {
			return msg, true
		}
	}
	return "", false
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsPrecondition reports whether err is a local precondition failure.
func IsPrecondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Namespace() == "precondition"
}

// IsAuth reports whether err means "no usable session".
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Namespace() == "auth"
}

// UserMessage returns the message to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
