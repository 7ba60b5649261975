// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// Participant identifies who is being scanned and which stimulus set they see.
// Zero fields are unset.
type Participant struct {
	SubjectID int
	Run       int
	Set       int
}

// Complete reports whether every field is set.
func (p Participant) Complete() bool {
	return p.SubjectID > 0 && p.Run > 0 && p.Set > 0
}

// PromptParticipant asks for the fields of p that are still unset and then
// asks for confirmation. It returns false if the operator declined.
func PromptParticipant(p *Participant) (bool, error) {
	subject := formatID(p.SubjectID)
	run := formatID(p.Run)
	set := formatID(p.Set)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				Value(&subject).
				Validate(validateID("subject")),

			huh.NewInput().
				Title("Run").
				Value(&run).
				Validate(validateID("run")),

			huh.NewInput().
				Title("Stimulus set").
				Value(&set).
				Validate(validateID("set")),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}

	// Validated above.
	p.SubjectID, _ = parseID(subject)
	p.Run, _ = parseID(run)
	p.Set, _ = parseID(set)

	return ConfirmStart(*p)
}

// ConfirmStart shows the session details and asks whether to start.
func ConfirmStart(p Participant) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Language localizer").
				Description(Describe(p)),

			huh.NewConfirm().
				Title("Start the session?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

// Describe renders the participant details shown before a session starts.
func Describe(p Participant) string {
	return fmt.Sprintf("Subject: %d\nRun: %d\nStimulus set: %d", p.SubjectID, p.Run, p.Set)
}

func validateID(field string) func(string) error {
	return func(s string) error {
		if _, err := parseID(s); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		return nil
	}
}

func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

func formatID(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
