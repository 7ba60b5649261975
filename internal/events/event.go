// Package events records what happened during a localizer session. Every
// trial, phase and key press becomes one Event, written as a JSON line so
// that analysis scripts can rebuild the presentation timeline.
package events

import (
	"errors"
	"time"
)

// ErrUnknownType is returned when a log line carries an event type this
// package does not define.
var ErrUnknownType = errors.New("unknown event type")

// EventType identifies the category of a session event.
type EventType string

const (
	// EventSessionStart is written once the scanner trigger arrives.
	EventSessionStart EventType = "session_start"
	// EventTrialStart marks the first frame of a trial.
	EventTrialStart EventType = "trial_start"
	// EventPhaseStart marks the first frame of a phase.
	EventPhaseStart EventType = "phase_start"
	// EventResponse is a key press collected during a trial.
	EventResponse EventType = "response"
	// EventTrialEnd marks the end of a trial.
	EventTrialEnd EventType = "trial_end"
	// EventAbort is written when the escape key ends the run early.
	EventAbort EventType = "abort"
	// EventSessionEnd is written when the session closes.
	EventSessionEnd EventType = "session_end"
)

// Event is a single entry of the session log.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// SessionID identifies the session.
	SessionID string `json:"session_id"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// TrialIndex is the trial number within the run (-1 outside trials).
	TrialIndex int `json:"trial_index"`

	// Kind is the trial variant (fixation, attention_check, sentence).
	Kind string `json:"kind,omitempty"`

	// Phase is the phase index within the trial.
	Phase int `json:"phase"`

	// PhaseName is the configured phase name.
	PhaseName string `json:"phase_name,omitempty"`

	// Frame is the number of frames flipped since the session started.
	Frame int `json:"frame"`

	// Frames is the number of frames scheduled for a phase.
	Frames int `json:"frames,omitempty"`

	// Key is the response key (for response events).
	Key string `json:"key,omitempty"`

	// Parameters carries the analysis record of sentence trials.
	Parameters map[string]interface{} `json:"parameters,omitempty"`

	// Message is a short human-readable note.
	Message string `json:"message,omitempty"`
}

// ValidEventTypes returns all valid event type values.
func ValidEventTypes() []EventType {
	return []EventType{
		EventSessionStart,
		EventTrialStart,
		EventPhaseStart,
		EventResponse,
		EventTrialEnd,
		EventAbort,
		EventSessionEnd,
	}
}

// IsValidEventType reports whether s names an event type. Decode and the
// events command's --type flag use it.
func IsValidEventType(s string) bool {
	for _, t := range ValidEventTypes() {
		if string(t) == s {
			return true
		}
	}
	return false
}
