// Package trial builds the ordered trial sequence for a localizer run and
// converts phase durations into display frames.
package trial

import (
	"fmt"
	"math"
	"time"
)

// Kind identifies which of the three localizer trial variants a descriptor is.
type Kind string

const (
	// KindFixation shows a central fixation cross.
	KindFixation Kind = "fixation"
	// KindAttentionCheck shows the button-press image and expects a response.
	KindAttentionCheck Kind = "attention_check"
	// KindSentence shows a sentence or pseudo-word sequence one word at a time.
	KindSentence Kind = "sentence"
)

// Condition tags used by the stimulus sets.
const (
	ConditionWords    = "S"
	ConditionNonwords = "N"
)

// FixationEvery is the number of sentences between extra fixation trials.
const FixationEvery = 12

// SentenceRecord is one stimulus row with the index and condition columns
// already separated out.
type SentenceRecord struct {
	Words     []string
	Condition string
}

// Phase is a sub-interval of a trial with a fixed duration.
type Phase struct {
	Name     string  `json:"name" yaml:"name"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// PhasePlan is the ordered list of phases of one trial. The unit applies to
// every phase in the plan.
type PhasePlan struct {
	Unit   Unit    `json:"unit" yaml:"unit"`
	Phases []Phase `json:"phases" yaml:"phases"`
}

// Names returns the phase names in order.
func (p PhasePlan) Names() []string {
	names := make([]string, len(p.Phases))
	for i, ph := range p.Phases {
		names[i] = ph.Name
	}
	return names
}

// Durations returns the phase durations in order, in the plan's unit.
func (p PhasePlan) Durations() []float64 {
	durations := make([]float64, len(p.Phases))
	for i, ph := range p.Phases {
		durations[i] = ph.Duration
	}
	return durations
}

// Frames returns the number of display frames scheduled for each phase.
func (p PhasePlan) Frames(frameRate float64) ([]int, error) {
	return ToFrames(p.Durations(), p.Unit, frameRate)
}

// Descriptor describes one trial of the run. Words and Condition are only
// set for sentence trials.
type Descriptor struct {
	Kind      Kind      `json:"kind" yaml:"kind"`
	Index     int       `json:"index" yaml:"index"`
	Plan      PhasePlan `json:"plan" yaml:"plan"`
	Words     []string  `json:"words,omitempty" yaml:"words,omitempty"`
	Condition string    `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Meta identifies the participant and stimulus set of a session.
type Meta struct {
	SubjectID int
	RunID     int
	SetID     int
}

// Parameters returns the per-trial record consumed by the analysis scripts.
// Only sentence trials carry parameters; other kinds return nil.
func (d Descriptor) Parameters(meta Meta) map[string]interface{} {
	if d.Kind != KindSentence {
		return nil
	}
	return map[string]interface{}{
		"subject_id":  meta.SubjectID,
		"run_id":      meta.RunID,
		"set_id":      meta.SetID,
		"trial_index": d.Index,
		"condition":   d.Condition,
	}
}

// RunSequence is the full ordered list of trials for one run.
type RunSequence []Descriptor

// Counts tallies the descriptors of each kind.
type Counts struct {
	Fixation       int
	AttentionCheck int
	Sentence       int
	Words          int
	ByCondition    map[string]int
}

// Counts tallies the sequence by trial kind and sentence condition.
func (s RunSequence) Counts() Counts {
	c := Counts{ByCondition: make(map[string]int)}
	for _, d := range s {
		switch d.Kind {
		case KindFixation:
			c.Fixation++
		case KindAttentionCheck:
			c.AttentionCheck++
		case KindSentence:
			c.Sentence++
			c.Words += len(d.Words)
			c.ByCondition[d.Condition]++
		}
	}
	return c
}

// Frames returns the total number of display frames of the run at the given
// frame rate.
func (s RunSequence) Frames(frameRate float64) (int, error) {
	total := 0
	for _, d := range s {
		frames, err := d.Plan.Frames(frameRate)
		if err != nil {
			return 0, fmt.Errorf("trial %d: %w", d.Index, err)
		}
		for _, n := range frames {
			total += n
		}
	}
	return total, nil
}

// Duration returns how long the run takes at the given frame rate.
func (s RunSequence) Duration(frameRate float64) (time.Duration, error) {
	frames, err := s.Frames(frameRate)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(float64(frames) * float64(time.Second) / frameRate)), nil
}
