// Package display is the boundary to the presentation framework. A
// Presenter draws one stimulus per frame, reports the keys pressed during
// each frame and blocks on instruction screens until an allowed key arrives.
package display

import (
	"context"
	"fmt"
	"math"
)

// StimulusKind selects what a frame shows.
type StimulusKind int

const (
	// Blank clears the screen to the background color.
	Blank StimulusKind = iota
	// Text draws a centered string.
	Text
	// Image draws the picture at Stimulus.Image.
	Image
)

func (k StimulusKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Text:
		return "text"
	case Image:
		return "image"
	default:
		return fmt.Sprintf("StimulusKind(%d)", int(k))
	}
}

// Color is an RGB triple with components in [-1, 1], where -1 is black and
// 1 is full intensity.
type Color [3]float64

// Gray is the mid-gray default background.
var Gray = Color{0, 0, 0}

// ColorFrom converts a settings value into a Color.
func ColorFrom(v []float64) (Color, error) {
	if len(v) != 3 {
		return Color{}, fmt.Errorf("color needs 3 components, got %d", len(v))
	}
	var c Color
	for i, x := range v {
		if x < -1 || x > 1 {
			return Color{}, fmt.Errorf("color component %v outside [-1, 1]", x)
		}
		c[i] = x
	}
	return c, nil
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	var b [3]uint8
	for i, x := range c {
		b[i] = uint8(math.Round((x + 1) / 2 * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}

// Stimulus is the content of one frame.
type Stimulus struct {
	Kind  StimulusKind
	Text  string
	Image string
	Color Color
}

// Presenter is implemented by presentation backends.
type Presenter interface {
	// FrameRate returns the measured refresh rate in Hz.
	FrameRate() (float64, error)
	// Draw sets the stimulus shown on the next flip.
	Draw(s Stimulus)
	// Flip shows the drawn stimulus for one frame and returns the keys
	// pressed since the previous flip.
	Flip() ([]string, error)
	// WaitKeys shows text until one of keys is pressed and returns it. An
	// empty key list accepts any key.
	WaitKeys(ctx context.Context, text string, color Color, keys []string) (string, error)
	// Close releases the display.
	Close() error
}

func accepts(keys []string, key string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
