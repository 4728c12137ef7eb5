// Package audit records authentication events best-effort.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Actions emitted by the authentication service.
const (
	ActionLoginSuccess   = "login_success"
	ActionLoginFailure   = "login_failure"
	ActionLogout         = "logout"
	ActionSessionRestore = "session_restore"
)

// Logger writes a single audit event. Implementations are best-effort:
// failures must not affect the caller.
type Logger interface {
	LogEvent(ctx context.Context, username, action, outcome, metadata string)
}

// Event is one recorded audit entry.
type Event struct {
	ID       string
	Username string
	Action   string
	Outcome  string
	Metadata string
	At       time.Time
}

// LogWriter is a Logger that writes events to the process log.
type LogWriter struct{}

// NewLogWriter returns a Logger backed by the standard log package.
func NewLogWriter() *LogWriter { return &LogWriter{} }

// LogEvent writes one audit line.
func (w *LogWriter) LogEvent(ctx context.Context, username, action, outcome, metadata string) {
	log.Printf("audit: id=%s user=%s action=%s outcome=%s %s",
		uuid.New().String(), username, action, outcome, metadata)
}

// Recorder is a Logger that keeps events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty in-memory audit recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// LogEvent appends the event.
func (r *Recorder) LogEvent(ctx context.Context, username, action, outcome, metadata string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		ID:       uuid.New().String(),
		Username: username,
		Action:   action,
		Outcome:  outcome,
		Metadata: metadata,
		At:       time.Now().UTC(),
	})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
