package trial

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Unit is the unit of the durations in a PhasePlan.
type Unit string

const (
	Milliseconds Unit = "milliseconds"
	Seconds      Unit = "seconds"
	Frames       Unit = "frames"
)

var (
	// ErrInvalidFrameRate is returned when the frame rate is zero, negative
	// or not yet measured.
	ErrInvalidFrameRate = errors.New("frame rate must be positive")
	// ErrUnknownUnit is returned for a timing unit other than milliseconds,
	// seconds or frames.
	ErrUnknownUnit = errors.New("unknown timing unit")
)

// ParseUnit converts a settings value into a Unit.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case Milliseconds, Seconds, Frames:
		return u, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// ToFrames converts durations into whole display frames at the given frame
// rate. Milliseconds and seconds are truncated, not rounded, so the same
// frame rate always yields the same schedule. Frame durations pass through.
func ToFrames(durations []float64, unit Unit, frameRate float64) ([]int, error) {
	if math.IsNaN(frameRate) || math.IsInf(frameRate, 0) || frameRate <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFrameRate, frameRate)
	}

	var convert func(float64) float64
	switch unit {
	case Milliseconds:
		convert = func(d float64) float64 { return d / 1000 * frameRate }
	case Seconds:
		convert = func(d float64) float64 { return d * frameRate }
	case Frames:
		convert = func(d float64) float64 { return d }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}

	frames := make([]int, len(durations))
	for i, d := range durations {
		frames[i] = int(math.Floor(convert(d)))
	}
	return frames, nil
}
