// Package eyetracker defines the eye-tracker boundary used by a session.
// Hardware drivers live outside this repository; NoOp is used when the
// tracker is disabled.
package eyetracker

import "context"

// Tracker controls an eye tracker over the course of a session.
type Tracker interface {
	Calibrate(ctx context.Context) error
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	Close() error
}

// NoOp is a tracker that does nothing.
type NoOp struct{}

func (NoOp) Calibrate(_ context.Context) error      { return nil }
func (NoOp) StartRecording(_ context.Context) error { return nil }
func (NoOp) StopRecording(_ context.Context) error  { return nil }
func (NoOp) Close() error                           { return nil }

var _ Tracker = NoOp{}

// ShouldCalibrate reports whether calibration runs before run number run.
func ShouldCalibrate(enabled, firstRunOnly bool, run int) bool {
	if !enabled {
		return false
	}
	return !firstRunOnly || run == 1
}
