package apierrors

import (
	"net/http"
	"strings"
	"sync"
)

// ErrorCode represents a registered error code.
type ErrorCode struct {
	Code       string `json:"code"`        // Full namespaced code (e.g., "request:failed")
	Message    string `json:"message"`     // Default English message
	HTTPStatus int    `json:"http_status"` // Typical HTTP status, 0 for local failures
}

type registry struct {
	mu    sync.RWMutex
	codes map[string]ErrorCode // code -> ErrorCode
}

// Registry is the global error code registry.
var Registry = &registry{
	codes: make(map[string]ErrorCode),
}

// Register adds an error code to the registry. Re-registering a code
// replaces its message and status.
func (r *registry) Register(e ErrorCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[e.Code] = e
}

// Get returns an error code by its full code string.
func (r *registry) Get(code string) (ErrorCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.codes[code]
	return e, ok
}

// HTTPStatus returns the typical HTTP status for a code, or 500 if unknown.
func (r *registry) HTTPStatus(code string) int {
	if e, ok := r.Get(code); ok && e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message returns the default message for a code, or the code itself if unknown.
func (r *registry) Message(code string) string {
	if e, ok := r.Get(code); ok {
		return e.Message
	}
	return code
}

func namespaceOf(code string) string {
	if idx := strings.Index(code, ":"); idx > 0 {
		return code[:idx]
	}
	return "core"
}
