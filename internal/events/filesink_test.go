package events

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileSink(t *testing.T) {
	t.Run("create and write events", func(t *testing.T) {
		dir := t.TempDir()
		sink, err := NewFileSink(dir, "language_localizer_1_1_1")
		if err != nil {
			t.Fatalf("failed to create file sink: %v", err)
		}

		expectedPath := filepath.Join(dir, "language_localizer_1_1_1_events.jsonl")
		if sink.Path() != expectedPath {
			t.Errorf("Path() = %q, want %q", sink.Path(), expectedPath)
		}

		testEvents := []Event{
			{
				Timestamp:  time.Now(),
				SessionID:  "session-1",
				Type:       EventTrialStart,
				TrialIndex: 1,
				Kind:       "sentence",
				Parameters: map[string]interface{}{"condition": "S", "trial_index": 1},
			},
			{
				Timestamp:  time.Now(),
				SessionID:  "session-1",
				Type:       EventResponse,
				TrialIndex: 2,
				Key:        "space",
			},
		}

		for _, e := range testEvents {
			sink.Stage(e)
		}
		if commitErr := sink.Commit(); commitErr != nil {
			t.Fatalf("failed to commit events: %v", commitErr)
		}
		if closeErr := sink.Close(); closeErr != nil {
			t.Fatalf("failed to close sink: %v", closeErr)
		}

		readEvents, readErr := ReadEvents(sink.Path())
		if readErr != nil {
			t.Fatalf("failed to read events: %v", readErr)
		}
		if len(readEvents) != 2 {
			t.Fatalf("expected 2 events, got %d", len(readEvents))
		}
		if readEvents[0].Type != EventTrialStart {
			t.Errorf("event[0].Type = %q, want %q", readEvents[0].Type, EventTrialStart)
		}
		if readEvents[0].Parameters["condition"] != "S" {
			t.Errorf("event[0].Parameters = %v", readEvents[0].Parameters)
		}
		// JSON numbers decode as float64
		if readEvents[0].Parameters["trial_index"] != float64(1) {
			t.Errorf("trial_index = %v, want 1", readEvents[0].Parameters["trial_index"])
		}
		if readEvents[1].Key != "space" {
			t.Errorf("event[1].Key = %q, want space", readEvents[1].Key)
		}
	})

	t.Run("append mode", func(t *testing.T) {
		dir := t.TempDir()

		sink1, err1 := NewFileSink(dir, "run")
		if err1 != nil {
			t.Fatalf("failed to create first sink: %v", err1)
		}
		if err := sink1.WriteOne(Event{Type: EventSessionStart}); err != nil {
			t.Fatalf("failed to write first event: %v", err)
		}
		if err := sink1.Close(); err != nil {
			t.Fatalf("failed to close first sink: %v", err)
		}

		sink2, err2 := NewFileSink(dir, "run")
		if err2 != nil {
			t.Fatalf("failed to create second sink: %v", err2)
		}
		if err := sink2.WriteOne(Event{Type: EventSessionEnd}); err != nil {
			t.Fatalf("failed to write second event: %v", err)
		}
		if err := sink2.Close(); err != nil {
			t.Fatalf("failed to close second sink: %v", err)
		}

		readEvents, readErr := ReadEvents(filepath.Join(dir, Filename("run")))
		if readErr != nil {
			t.Fatalf("failed to read events: %v", readErr)
		}
		if len(readEvents) != 2 {
			t.Errorf("expected 2 events after append, got %d", len(readEvents))
		}
	})

	t.Run("commit with nothing staged", func(t *testing.T) {
		sink, sinkErr := NewFileSink(t.TempDir(), "empty")
		if sinkErr != nil {
			t.Fatalf("failed to create sink: %v", sinkErr)
		}
		t.Cleanup(func() { _ = sink.Close() })

		if err := sink.Commit(); err != nil {
			t.Errorf("Commit() returned error: %v", err)
		}
		if sink.Written() != 0 {
			t.Errorf("Written() = %d, want 0", sink.Written())
		}
	})

	t.Run("staged events stay off disk until commit", func(t *testing.T) {
		sink, sinkErr := NewFileSink(t.TempDir(), "staged")
		if sinkErr != nil {
			t.Fatalf("failed to create sink: %v", sinkErr)
		}
		t.Cleanup(func() { _ = sink.Close() })

		sink.Stage(Event{Type: EventTrialStart, TrialIndex: 0})
		sink.Stage(Event{Type: EventPhaseStart, TrialIndex: 0})
		if sink.Pending() != 2 {
			t.Errorf("Pending() = %d, want 2", sink.Pending())
		}
		if info, err := os.Stat(sink.Path()); err != nil || info.Size() != 0 {
			t.Fatalf("events file before commit: info=%v err=%v, want empty file", info, err)
		}

		sink.Stage(Event{Type: EventTrialEnd, TrialIndex: 0})
		if err := sink.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if sink.Pending() != 0 || sink.Written() != 3 {
			t.Errorf("after commit Pending=%d Written=%d, want 0 and 3", sink.Pending(), sink.Written())
		}

		got, err := ReadEvents(sink.Path())
		if err != nil {
			t.Fatalf("ReadEvents() error = %v", err)
		}
		if len(got) != 3 || got[2].Type != EventTrialEnd {
			t.Errorf("events on disk = %+v, want the three staged events in order", got)
		}
	})

	t.Run("close commits staged events", func(t *testing.T) {
		sink, sinkErr := NewFileSink(t.TempDir(), "closing")
		if sinkErr != nil {
			t.Fatalf("failed to create sink: %v", sinkErr)
		}
		sink.Stage(Event{Type: EventTrialStart, TrialIndex: 4})
		if err := sink.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		got, err := ReadEvents(sink.Path())
		if err != nil {
			t.Fatalf("ReadEvents() error = %v", err)
		}
		if len(got) != 1 || got[0].TrialIndex != 4 {
			t.Errorf("events after close = %+v", got)
		}
	})

	t.Run("commit after close", func(t *testing.T) {
		sink, sinkErr := NewFileSink(t.TempDir(), "late")
		if sinkErr != nil {
			t.Fatalf("failed to create sink: %v", sinkErr)
		}
		if err := sink.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := sink.WriteOne(Event{Type: EventSessionEnd}); err == nil {
			t.Error("WriteOne() after Close returned nil error")
		}
	})

	t.Run("double close", func(t *testing.T) {
		sink, sinkErr := NewFileSink(t.TempDir(), "double")
		if sinkErr != nil {
			t.Fatalf("failed to create sink: %v", sinkErr)
		}
		if err := sink.Close(); err != nil {
			t.Fatalf("first Close() returned error: %v", err)
		}
		if err := sink.Close(); err != nil {
			t.Errorf("second Close() returned error: %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewFileSink(filepath.Join(t.TempDir(), "nope"), "x"); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestFilterByType(t *testing.T) {
	events := []Event{
		{Type: EventTrialStart, TrialIndex: 0},
		{Type: EventPhaseStart, TrialIndex: 0},
		{Type: EventTrialEnd, TrialIndex: 0},
		{Type: EventTrialStart, TrialIndex: 1},
		{Type: EventResponse, TrialIndex: 1},
	}

	t.Run("filter single type", func(t *testing.T) {
		if result := FilterByType(events, EventTrialStart); len(result) != 2 {
			t.Errorf("expected 2 trial_start events, got %d", len(result))
		}
	})

	t.Run("filter multiple types", func(t *testing.T) {
		if result := FilterByType(events, EventTrialEnd, EventResponse); len(result) != 2 {
			t.Errorf("expected 2 events, got %d", len(result))
		}
	})

	t.Run("no types returns all", func(t *testing.T) {
		if result := FilterByType(events); len(result) != len(events) {
			t.Errorf("expected %d events, got %d", len(events), len(result))
		}
	})
}

func TestFilterByTrial(t *testing.T) {
	events := []Event{
		{Type: EventSessionStart, TrialIndex: -1},
		{Type: EventTrialStart, TrialIndex: 0},
		{Type: EventTrialStart, TrialIndex: 1},
		{Type: EventResponse, TrialIndex: 1},
	}

	if result := FilterByTrial(events, 1); len(result) != 2 {
		t.Errorf("expected 2 events for trial 1, got %d", len(result))
	}
	if result := FilterByTrial(events, -1); len(result) != len(events) {
		t.Errorf("negative index should return all events, got %d", len(result))
	}
}

func TestIsValidEventType(t *testing.T) {
	for _, et := range ValidEventTypes() {
		if !IsValidEventType(string(et)) {
			t.Errorf("IsValidEventType(%q) = false", et)
		}
	}
	if IsValidEventType("keypress") {
		t.Error("IsValidEventType(keypress) = true, want false")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
		errLine string
	}{
		{
			name:  "known types",
			input: `{"type":"session_start","trial_index":-1,"frame":0}` + "\n\n" + `{"type":"trial_start","trial_index":0,"frame":0}` + "\n",
			want:  2,
		},
		{
			name:    "unknown type",
			input:   `{"type":"trial_start","trial_index":0,"frame":0}` + "\n" + `{"type":"keypress","trial_index":0,"frame":3}` + "\n",
			wantErr: ErrUnknownType,
			errLine: "line 2",
		},
		{
			name:    "missing type",
			input:   `{"trial_index":0,"frame":0}` + "\n",
			wantErr: ErrUnknownType,
			errLine: "line 1",
		},
		{
			name:    "not json",
			input:   "trial_start\n",
			errLine: "line 1",
		},
		{
			name:  "empty",
			input: "",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if tt.errLine != "" {
				if err == nil {
					t.Fatalf("Decode() error = nil, want error on %s", tt.errLine)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.errLine) {
					t.Errorf("Decode() error = %v, want it to name %s", err, tt.errLine)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Decode() returned %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestEvent_PhaseZeroIsSerialized(t *testing.T) {
	data, err := json.Marshal(Event{Type: EventPhaseStart, TrialIndex: 1, Phase: 0, PhaseName: "ll_blank"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"phase":0`) {
		t.Errorf("marshalled event = %s, want \"phase\":0", data)
	}
}
