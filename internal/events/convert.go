package events

import (
	"time"

	"github.com/andywolf/langloc/internal/trial"
)

// ConvertParams holds the session context stamped onto every event.
type ConvertParams struct {
	SessionID string
	Meta      trial.Meta
	Frame     int
	Timestamp time.Time // Optional: defaults to time.Now() if zero
}

func (p ConvertParams) base(t EventType, index int) Event {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Event{
		Timestamp:  ts,
		SessionID:  p.SessionID,
		Type:       t,
		TrialIndex: index,
		Frame:      p.Frame,
	}
}

// SessionEvent builds an event that does not belong to a trial.
func SessionEvent(t EventType, message string, params ConvertParams) Event {
	e := params.base(t, -1)
	e.Message = message
	return e
}

// TrialStart builds the trial_start event of d. Sentence trials carry their
// analysis parameters.
func TrialStart(d trial.Descriptor, params ConvertParams) Event {
	e := params.base(EventTrialStart, d.Index)
	e.Kind = string(d.Kind)
	e.Parameters = d.Parameters(params.Meta)
	return e
}

// PhaseStart builds the phase_start event for phase i of d.
func PhaseStart(d trial.Descriptor, i, frames int, params ConvertParams) Event {
	e := params.base(EventPhaseStart, d.Index)
	e.Kind = string(d.Kind)
	e.Phase = i
	if i >= 0 && i < len(d.Plan.Phases) {
		e.PhaseName = d.Plan.Phases[i].Name
	}
	e.Frames = frames
	return e
}

// Response builds a response event for a key pressed during phase i of d.
func Response(d trial.Descriptor, i int, key string, params ConvertParams) Event {
	e := PhaseStart(d, i, 0, params)
	e.Type = EventResponse
	e.Key = key
	return e
}

// TrialEnd builds the trial_end event of d.
func TrialEnd(d trial.Descriptor, params ConvertParams) Event {
	e := params.base(EventTrialEnd, d.Index)
	e.Kind = string(d.Kind)
	return e
}
