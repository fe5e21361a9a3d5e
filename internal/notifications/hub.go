// Package notifications delivers transient user-visible notices ("toasts")
// raised by view actions.
package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of a notice.
type Level string

// Notice levels.
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is one transient message for the user.
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Hub receives notices. Implementations must be safe for concurrent use.
type Hub interface {
	Notify(n Notice)
}

// Success, Info and Error are shorthands that stamp the notice time.
func Success(h Hub, message string) { send(h, LevelSuccess, message) }

// Info sends an informational (non-error) notice.
func Info(h Hub, message string) { send(h, LevelInfo, message) }

// Error sends an error notice.
func Error(h Hub, message string) { send(h, LevelError, message) }

func send(h Hub, level Level, message string) {
	if h == nil {
		return
	}
	h.Notify(Notice{Level: level, Message: message, At: time.Now()})
}

// MemoryHub keeps notices until they are drained.
type MemoryHub struct {
	mu      sync.Mutex
	notices []Notice
}

// NewMemoryHub creates an empty in-memory hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{}
}

// Notify records n.
func (h *MemoryHub) Notify(n Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notices = append(h.notices, n)
}

// Drain returns every recorded notice and clears the queue.
func (h *MemoryHub) Drain() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.notices
	h.notices = nil
	return out
}

// Last returns the most recent notice without removing it.
func (h *MemoryHub) Last() (Notice, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.notices) == 0 {
		return Notice{}, false
	}
	return h.notices[len(h.notices)-1], true
}

// LogHub forwards notices to a structured logger.
type LogHub struct {
	logger *slog.Logger
}

// NewLogHub creates a hub writing to logger (slog.Default when nil).
func NewLogHub(logger *slog.Logger) *LogHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHub{logger: logger}
}

// Notify logs n at a level matching its severity.
func (h *LogHub) Notify(n Notice) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	h.logger.Log(context.Background(), level, n.Message, "notice", string(n.Level))
}

// WriterHub prints notices as one-line toasts, e.g. to stderr.
type WriterHub struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterHub creates a hub printing to w.
func NewWriterHub(w io.Writer) *WriterHub {
	return &WriterHub{w: w}
}

// Notify prints n.
func (h *WriterHub) Notify(n Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.w, "%s %s\n", marker(n.Level), n.Message)
}

func marker(l Level) string {
	switch l {
	case LevelSuccess:
		return "✓"
	case LevelError:
		return "✗"
	default:
		return "i"
	}
}
