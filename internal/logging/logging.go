// Package logging writes structured JSON diagnostics for a session. Each
// line carries a severity, the session ID and the current trial so that
// timing problems can be traced back to the trial that caused them.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Entry represents one structured log line
type Entry struct {
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id"`
	Trial     int                    `json:"trial"`
	Labels    map[string]string      `json:"labels,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger defines the structured logging operations used by a session
type Logger interface {
	Log(severity Severity, message string, fields map[string]interface{})
	Info(message string)
	Warning(message string)
	Error(message string)
	SetTrial(trial int)
	Flush() error
	Close() error
}

// JSONLogger writes one JSON object per line to an io.Writer
type JSONLogger struct {
	writer    io.Writer
	sessionID string
	trial     int
	labels    map[string]string
	mu        sync.Mutex
	closed    bool
	now       func() time.Time
}

// Option allows configuring the JSONLogger
type Option func(*JSONLogger)

// WithLabels adds custom labels to all log entries
func WithLabels(labels map[string]string) Option {
	return func(l *JSONLogger) {
		for k, v := range labels {
			l.labels[k] = v
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(l *JSONLogger) {
		l.now = now
	}
}

// NewJSONLogger creates a logger that writes structured JSON to w
func NewJSONLogger(w io.Writer, sessionID string, opts ...Option) *JSONLogger {
	l := &JSONLogger{
		writer:    w,
		sessionID: sessionID,
		trial:     -1,
		labels: map[string]string{
			"session_id": sessionID,
			"component":  "langloc",
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Log writes a structured log entry
func (l *JSONLogger) Log(severity Severity, message string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	entry := Entry{
		Severity:  severity,
		Message:   message,
		Timestamp: l.now().UTC(),
		SessionID: l.sessionID,
		Trial:     l.trial,
		Labels:    l.labels,
		Fields:    fields,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, `{"severity":"ERROR","message":"failed to marshal log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data)
}

// Info writes an INFO level log entry
func (l *JSONLogger) Info(message string) {
	l.Log(SeverityInfo, message, nil)
}

// Warning writes a WARNING level log entry
func (l *JSONLogger) Warning(message string) {
	l.Log(SeverityWarning, message, nil)
}

// Error writes an ERROR level log entry
func (l *JSONLogger) Error(message string) {
	l.Log(SeverityError, message, nil)
}

// SetTrial updates the trial index for subsequent logs
func (l *JSONLogger) SetTrial(trial int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trial = trial
}

// Flush syncs the writer if it supports it
func (l *JSONLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	if syncer, ok := l.writer.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Close marks the logger as closed; later entries are dropped
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) Log(Severity, string, map[string]interface{}) {}
func (Nop) Info(string)                                  {}
func (Nop) Warning(string)                               {}
func (Nop) Error(string)                                 {}
func (Nop) SetTrial(int)                                 {}
func (Nop) Flush() error                                 { return nil }
func (Nop) Close() error                                 { return nil }

var (
	_ Logger = (*JSONLogger)(nil)
	_ Logger = Nop{}
)
