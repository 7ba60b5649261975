package wizard

import (
	"strings"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{name: "plain", input: "3", want: 3},
		{name: "surrounding whitespace", input: "  12 ", want: 12},
		{name: "empty", input: "", wantErr: "required"},
		{name: "whitespace only", input: "   ", wantErr: "required"},
		{name: "zero", input: "0", wantErr: "at least 1"},
		{name: "negative", input: "-2", wantErr: "at least 1"},
		{name: "not a number", input: "abc", wantErr: "not a number"},
		{name: "float", input: "1.5", wantErr: "not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseID(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("parseID(%q) expected error containing %q", tt.input, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("parseID(%q) error = %q, want to contain %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateID_NamesField(t *testing.T) {
	err := validateID("run")("x")
	if err == nil || !strings.HasPrefix(err.Error(), "run: ") {
		t.Errorf("validateID error = %v, want prefix %q", err, "run: ")
	}
	if err := validateID("run")("2"); err != nil {
		t.Errorf("validateID(2) unexpected error: %v", err)
	}
}

func TestFormatID(t *testing.T) {
	if got := formatID(0); got != "" {
		t.Errorf("formatID(0) = %q, want empty", got)
	}
	if got := formatID(-1); got != "" {
		t.Errorf("formatID(-1) = %q, want empty", got)
	}
	if got := formatID(7); got != "7" {
		t.Errorf("formatID(7) = %q, want %q", got, "7")
	}
}

func TestParticipant_Complete(t *testing.T) {
	tests := []struct {
		p    Participant
		want bool
	}{
		{Participant{1, 1, 1}, true},
		{Participant{0, 1, 1}, false},
		{Participant{1, 0, 1}, false},
		{Participant{1, 1, 0}, false},
		{Participant{}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Complete(); got != tt.want {
			t.Errorf("%+v.Complete() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(Participant{SubjectID: 4, Run: 2, Set: 3})
	want := "Subject: 4\nRun: 2\nStimulus set: 3"
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
