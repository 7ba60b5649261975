package display

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const clearScreen = "\x1b[H\x1b[2J"

// ErrInputClosed is returned by WaitKeys when the key source reaches EOF.
var ErrInputClosed = errors.New("key input closed")

// TerminalOptions configures a Terminal presenter.
type TerminalOptions struct {
	FrameRate  float64
	Width      int
	Height     int
	Background Color
}

// Terminal renders stimuli in a terminal. Keys are read one per line from
// the input; an empty line is reported as "return". Frames are paced to the
// configured rate against the wall clock.
type Terminal struct {
	out  io.Writer
	opts TerminalOptions
	keys chan string

	current Stimulus
	shown   Stimulus
	drawn   bool
	next    time.Time

	now   func() time.Time
	sleep func(time.Duration)

	closeOnce sync.Once
	done      chan struct{}
}

// NewTerminal starts reading keys from in and renders to out.
func NewTerminal(in io.Reader, out io.Writer, opts TerminalOptions) *Terminal {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	t := &Terminal{
		out:   out,
		opts:  opts,
		keys:  make(chan string, 64),
		now:   time.Now,
		sleep: time.Sleep,
		done:  make(chan struct{}),
	}
	go t.readKeys(in)
	return t
}

// readKeys forwards input lines to t.keys until EOF or Close. A Read
// blocked on in cannot be interrupted, so after Close the goroutine stays
// parked until the next line or EOF arrives and then exits without
// forwarding it.
func (t *Terminal) readKeys(in io.Reader) {
	defer close(t.keys)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-t.done:
			return
		default:
		}
		key := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if key == "" {
			key = "return"
		}
		select {
		case t.keys <- key:
		case <-t.done:
			return
		}
	}
}

// FrameRate returns the configured refresh rate. A terminal has no vertical
// refresh to measure.
func (t *Terminal) FrameRate() (float64, error) {
	if t.opts.FrameRate <= 0 {
		return 0, fmt.Errorf("terminal frame rate not configured (got %v)", t.opts.FrameRate)
	}
	return t.opts.FrameRate, nil
}

func (t *Terminal) Draw(s Stimulus) {
	t.current = s
}

// Flip redraws the screen when the stimulus changed, then waits for the
// next frame deadline.
func (t *Terminal) Flip() ([]string, error) {
	if !t.drawn || t.current != t.shown {
		if err := t.render(t.current); err != nil {
			return nil, err
		}
		t.shown = t.current
		t.drawn = true
	}

	frame := time.Duration(float64(time.Second) / t.opts.FrameRate)
	now := t.now()
	if t.next.IsZero() {
		t.next = now
	}
	t.next = t.next.Add(frame)
	if wait := t.next.Sub(now); wait > 0 {
		t.sleep(wait)
	}

	return t.drainKeys(), nil
}

func (t *Terminal) drainKeys() []string {
	var keys []string
	for {
		select {
		case key, ok := <-t.keys:
			if !ok {
				return keys
			}
			keys = append(keys, key)
		default:
			return keys
		}
	}
}

// WaitKeys shows text and blocks until an accepted key is read. Frame pacing
// restarts afterwards.
func (t *Terminal) WaitKeys(ctx context.Context, text string, color Color, keys []string) (string, error) {
	if err := t.render(Stimulus{Kind: Text, Text: text, Color: color}); err != nil {
		return "", err
	}
	t.drawn = false
	t.next = time.Time{}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case key, ok := <-t.keys:
			if !ok {
				return "", ErrInputClosed
			}
			if accepts(keys, key) {
				return key, nil
			}
		}
	}
}

// Close stops key forwarding and clears the screen. It does not close the
// input; see readKeys.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	_, err := io.WriteString(t.out, clearScreen)
	return err
}

func (t *Terminal) render(s Stimulus) error {
	if _, err := io.WriteString(t.out, clearScreen+t.Render(s)+"\n"); err != nil {
		return fmt.Errorf("failed to draw stimulus: %w", err)
	}
	return nil
}

// Render returns the screen contents for s without writing them.
func (t *Terminal) Render(s Stimulus) string {
	var content string
	switch s.Kind {
	case Text:
		content = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(s.Color.Hex())).
			Background(lipgloss.Color(t.opts.Background.Hex())).
			Width(t.opts.Width - 4).
			Align(lipgloss.Center).
			Render(s.Text)
	case Image:
		content = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3).
			Render("[" + filepath.Base(s.Image) + "]")
	}

	return lipgloss.Place(t.opts.Width, t.opts.Height,
		lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(t.opts.Background.Hex())))
}

var _ Presenter = (*Terminal)(nil)
