package display

import (
	"context"
	"errors"
)

// Simulated is a headless presenter. Frames are not paced and key presses
// come from a script keyed by frame number. It backs dry runs and tests.
type Simulated struct {
	rate    float64
	rateErr error
	script  map[int][]string
	waits   map[string]string

	frame   int
	current Stimulus
	changes []Stimulus
	texts   []string
	closed  bool
}

// NewSimulated returns a simulated display refreshing at rate Hz.
func NewSimulated(rate float64) *Simulated {
	return &Simulated{
		rate:   rate,
		script: make(map[int][]string),
		waits:  make(map[string]string),
	}
}

// FailFrameRate makes FrameRate return err.
func (s *Simulated) FailFrameRate(err error) {
	s.rateErr = err
}

// PressAt schedules keys to be reported by the flip of the given frame
// (0-based, counted across the whole session).
func (s *Simulated) PressAt(frame int, keys ...string) {
	s.script[frame] = append(s.script[frame], keys...)
}

// AnswerWait makes WaitKeys on the given screen text return key instead of
// the first allowed key.
func (s *Simulated) AnswerWait(text, key string) {
	s.waits[text] = key
}

func (s *Simulated) FrameRate() (float64, error) {
	if s.rateErr != nil {
		return 0, s.rateErr
	}
	return s.rate, nil
}

func (s *Simulated) Draw(st Stimulus) {
	s.current = st
}

func (s *Simulated) Flip() ([]string, error) {
	if s.closed {
		return nil, errors.New("display closed")
	}
	if len(s.changes) == 0 || s.changes[len(s.changes)-1] != s.current {
		s.changes = append(s.changes, s.current)
	}
	keys := s.script[s.frame]
	s.frame++
	return keys, nil
}

func (s *Simulated) WaitKeys(ctx context.Context, text string, _ Color, keys []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.texts = append(s.texts, text)
	if key, ok := s.waits[text]; ok {
		return key, nil
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[0], nil
}

func (s *Simulated) Close() error {
	s.closed = true
	return nil
}

// Frames returns the number of flips so far.
func (s *Simulated) Frames() int {
	return s.frame
}

// Changes returns the sequence of distinct consecutive stimuli shown.
func (s *Simulated) Changes() []Stimulus {
	return s.changes
}

// Screens returns the texts shown by WaitKeys, in order.
func (s *Simulated) Screens() []string {
	return s.texts
}

var _ Presenter = (*Simulated)(nil)
