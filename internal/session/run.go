package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/andywolf/langloc/internal/archive"
	"github.com/andywolf/langloc/internal/events"
	"github.com/andywolf/langloc/internal/eyetracker"
	"github.com/andywolf/langloc/internal/trial"
	"github.com/andywolf/langloc/internal/version"
)

// Summary describes how a run ended.
type Summary struct {
	SessionID  string
	OutputName string
	// Completed is true when every trial was presented.
	Completed bool
	// Aborted is true when the escape key or a cancelled context ended the run.
	Aborted     bool
	TrialsRun   int
	TotalTrials int
	Frames      int
	Responses   int
	// AttentionChecks counts attention-check trials presented and
	// AttentionHits those answered with the attention key.
	AttentionChecks int
	AttentionHits   int
	EventsPath      string
}

// trialResult is what the run loop learns from presenting one trial.
type trialResult struct {
	lastResponse string
	responses    int
	hit          bool
}

// Run presents the session: instructions, scanner trigger, then every trial
// in order. The escape key is honoured between trials only. The session is
// closed on return and cannot be run again.
func (s *Session) Run(ctx context.Context) (summary *Summary, err error) {
	summary = &Summary{
		SessionID:   s.id,
		OutputName:  s.outputName,
		TotalTrials: len(s.trials),
	}
	frame := 0

	defer func() {
		path, closeErr := s.close(context.WithoutCancel(ctx), summary, frame)
		summary.EventsPath = path
		summary.Frames = frame
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	if err := s.prepare(ctx); err != nil {
		return summary, err
	}

	if err := s.write(events.SessionEvent(events.EventSessionStart, "scanner trigger received; "+version.Info(), s.params(frame))); err != nil {
		return summary, err
	}

	escape := s.cfg.Localizer.Responses.Escape
	for i, d := range s.trials {
		if ctxErr := ctx.Err(); ctxErr != nil {
			summary.Aborted = true
			_ = s.write(events.SessionEvent(events.EventAbort, "cancelled", s.params(frame)))
			s.logWarning("Run cancelled before trial %d", d.Index)
			return summary, ctxErr
		}

		result, runErr := s.runTrial(d, s.frames[i], &frame)
		summary.TrialsRun++
		summary.Responses += result.responses
		if d.Kind == trial.KindAttentionCheck {
			summary.AttentionChecks++
			if result.hit {
				summary.AttentionHits++
			}
		}
		if runErr != nil {
			return summary, fmt.Errorf("trial %d: %w", d.Index, runErr)
		}

		if result.lastResponse == escape {
			summary.Aborted = true
			s.logWarning("Escape pressed during trial %d, ending run", d.Index)
			return summary, s.write(events.SessionEvent(events.EventAbort, "escape", s.params(frame)))
		}
	}

	summary.Completed = true
	return summary, nil
}

// prepare runs everything before the first trial.
func (s *Session) prepare(ctx context.Context) error {
	et := s.cfg.EyeTracker
	if eyetracker.ShouldCalibrate(et.Enabled, et.CalibrateFirstRunOnly, s.meta.RunID) {
		s.logInfo("Calibrating eye tracker")
		if err := s.tracker.Calibrate(ctx); err != nil {
			return fmt.Errorf("eye tracker calibration failed: %w", err)
		}
	}

	attentionKey := s.cfg.Localizer.Responses.AttentionCheck
	for _, text := range s.instructions() {
		if _, err := s.presenter.WaitKeys(ctx, text, s.textColor, []string{attentionKey}); err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
	}

	if et.Enabled {
		if err := s.tracker.StartRecording(ctx); err != nil {
			return fmt.Errorf("failed to start eye tracker recording: %w", err)
		}
	}

	s.logInfo("Waiting for scanner trigger %q", s.cfg.MRI.Sync)
	if _, err := s.presenter.WaitKeys(ctx, waitingForScanner, s.textColor, []string{s.cfg.MRI.Sync}); err != nil {
		return fmt.Errorf("scanner sync: %w", err)
	}
	return nil
}

// runTrial presents every phase of d for its scheduled frames and collects
// key presses. frame counts flips across the session.
func (s *Session) runTrial(d trial.Descriptor, frames []int, frame *int) (trialResult, error) {
	var result trialResult
	s.structured.SetTrial(d.Index)

	// Trial events are staged and reach the log in one commit after the
	// last frame.
	s.sink.Stage(events.TrialStart(d, s.params(*frame)))

	attentionKey := s.cfg.Localizer.Responses.AttentionCheck
	for phase, n := range frames {
		s.sink.Stage(events.PhaseStart(d, phase, n, s.params(*frame)))

		stim := s.stimulus(d, phase)
		for f := 0; f < n; f++ {
			s.presenter.Draw(stim)
			keys, err := s.presenter.Flip()
			if err != nil {
				return result, err
			}
			for _, key := range keys {
				s.sink.Stage(events.Response(d, phase, key, s.params(*frame)))
				result.responses++
				result.lastResponse = key
				if d.Kind == trial.KindAttentionCheck && key == attentionKey {
					result.hit = true
				}
			}
			*frame++
		}
	}

	s.sink.Stage(events.TrialEnd(d, s.params(*frame)))
	if err := s.sink.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit trial %d events: %w", d.Index, err)
	}
	return result, nil
}

// close stops the eye tracker, finalises the event log and compresses it
// when configured. It returns the final path of the event log.
func (s *Session) close(ctx context.Context, summary *Summary, frame int) (string, error) {
	var errs []error

	if s.cfg.EyeTracker.Enabled {
		if err := s.tracker.StopRecording(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop eye tracker recording: %w", err))
		}
	}
	if err := s.tracker.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close eye tracker: %w", err))
	}

	msg := fmt.Sprintf("%d/%d trials", summary.TrialsRun, summary.TotalTrials)
	if err := s.write(events.SessionEvent(events.EventSessionEnd, msg, s.params(frame))); err != nil {
		errs = append(errs, err)
	}

	path := s.sink.Path()
	if err := s.sink.Close(); err != nil {
		errs = append(errs, err)
	}

	if s.cfg.Output.Compress {
		archived, err := archive.Compress(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to compress event log: %w", err))
		} else {
			path = archived
		}
	}

	if err := s.presenter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close display: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		s.logError("Closing session: %v", err)
		_ = s.structured.Flush()
		return path, err
	}

	s.logInfo("Session %s closed: %s (%s)", s.id, msg, path)
	return path, s.structured.Flush()
}

func (s *Session) params(frame int) events.ConvertParams {
	return events.ConvertParams{
		SessionID: s.id,
		Meta:      s.meta,
		Frame:     frame,
		Timestamp: s.now(),
	}
}

func (s *Session) write(e events.Event) error {
	if err := s.sink.WriteOne(e); err != nil {
		return fmt.Errorf("failed to write %s event: %w", e.Type, err)
	}
	return nil
}
