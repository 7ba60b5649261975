// Package session runs one localizer session: it loads the stimulus set,
// builds the run sequence and presents it trial by trial.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/andywolf/langloc/internal/config"
	"github.com/andywolf/langloc/internal/display"
	"github.com/andywolf/langloc/internal/events"
	"github.com/andywolf/langloc/internal/eyetracker"
	"github.com/andywolf/langloc/internal/logging"
	"github.com/andywolf/langloc/internal/stimuli"
	"github.com/andywolf/langloc/internal/trial"
	"github.com/google/uuid"
)

// ErrInit wraps every failure to construct a session. A session that failed
// to initialise must not be run.
var ErrInit = errors.New("session initialisation failed")

// OutputName returns the base name shared by all output files of a session.
func OutputName(meta trial.Meta, now time.Time) string {
	return fmt.Sprintf("language_localizer_%d_%d_%d_%s",
		meta.SubjectID, meta.RunID, meta.SetID, now.Format("2006-01-02T15-04-05Z"))
}

// Session holds everything needed to present one run.
type Session struct {
	id         string
	cfg        *config.Config
	meta       trial.Meta
	presenter  display.Presenter
	tracker    eyetracker.Tracker
	sink       *events.FileSink
	logger     *log.Logger
	structured logging.Logger
	now        func() time.Time

	outputName     string
	frameRate      float64
	trials         trial.RunSequence
	frames         [][]int
	attentionImage string
	textColor      display.Color
	fixColor       display.Color

	sentences []trial.SentenceRecord
	loaded    bool
}

// Option configures a Session.
type Option func(*Session)

// WithTracker sets the eye tracker. Defaults to eyetracker.NoOp.
func WithTracker(t eyetracker.Tracker) Option {
	return func(s *Session) { s.tracker = t }
}

// WithLogger sets the operator log.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithStructuredLogger sets the structured diagnostic log.
func WithStructuredLogger(l logging.Logger) Option {
	return func(s *Session) { s.structured = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSentences supplies the stimulus set directly instead of loading it
// from the configured stimulus directory.
func WithSentences(sentences []trial.SentenceRecord) Option {
	return func(s *Session) {
		s.sentences = sentences
		s.loaded = true
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New validates the settings, measures the frame rate, loads the stimuli and
// builds the run sequence. Any failure is returned wrapped in ErrInit.
func New(cfg *config.Config, meta trial.Meta, presenter display.Presenter, opts ...Option) (*Session, error) {
	s := &Session{
		id:         uuid.New().String(),
		cfg:        cfg,
		meta:       meta,
		presenter:  presenter,
		tracker:    eyetracker.NoOp{},
		logger:     log.New(io.Discard, "", 0),
		structured: logging.Nop{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.init(); err != nil {
		if s.sink != nil {
			_ = s.sink.Close()
		}
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	return s, nil
}

func (s *Session) init() error {
	if s.cfg == nil {
		return errors.New("no settings")
	}
	if s.presenter == nil {
		return errors.New("no presenter")
	}
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	var err error
	if s.textColor, err = display.ColorFrom(s.cfg.Localizer.Stimuli.TextColor); err != nil {
		return fmt.Errorf("text_color: %w", err)
	}
	if s.fixColor, err = display.ColorFrom(s.cfg.Localizer.Stimuli.FixColor); err != nil {
		return fmt.Errorf("fix_color: %w", err)
	}

	rate, err := s.presenter.FrameRate()
	if err != nil {
		return fmt.Errorf("failed to measure frame rate: %w", err)
	}
	if rate <= 0 {
		return fmt.Errorf("%w: got %v", trial.ErrInvalidFrameRate, rate)
	}
	s.frameRate = rate

	if !s.loaded {
		path := stimuli.Path(s.cfg.Localizer.Stimuli.Dir, s.meta.RunID, s.meta.SetID)
		s.logInfo("Using stimulus set: %s", path)
		if s.sentences, err = stimuli.Load(path); err != nil {
			return err
		}
	}
	s.attentionImage = stimuli.AttentionImage(s.cfg.Localizer.Stimuli.Dir, s.cfg.Localizer.Stimuli.AttentionImage)

	params, err := s.cfg.TrialParams()
	if err != nil {
		return err
	}
	s.trials = trial.Build(s.sentences, params)

	s.frames = make([][]int, len(s.trials))
	for i, d := range s.trials {
		if s.frames[i], err = d.Plan.Frames(s.frameRate); err != nil {
			return fmt.Errorf("trial %d: %w", d.Index, err)
		}
	}

	s.outputName = OutputName(s.meta, s.now())
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if s.sink, err = events.NewFileSink(s.cfg.Output.Dir, s.outputName); err != nil {
		return err
	}

	s.logInfo("Session %s: %d trials at %.2f Hz", s.id, len(s.trials), s.frameRate)
	return nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// OutputName returns the base name of the session's output files.
func (s *Session) OutputName() string { return s.outputName }

// FrameRate returns the frame rate measured at construction.
func (s *Session) FrameRate() float64 { return s.frameRate }

// Trials returns the run sequence.
func (s *Session) Trials() trial.RunSequence { return s.trials }

// EventsPath returns the path of the session's event log.
func (s *Session) EventsPath() string { return s.sink.Path() }
