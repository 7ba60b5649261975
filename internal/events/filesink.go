package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileSuffix is appended to the session output name to form the events file.
const FileSuffix = "_events.jsonl"

// Filename returns the events file name for a session output name.
func Filename(outputName string) string {
	return outputName + FileSuffix
}

// FileSink appends Events to a JSONL file.
//
// Events of the running trial are staged in memory and reach the file
// only when Commit is called at the trial boundary, so frame flips never
// wait on disk I/O. Commit syncs the file; a crash loses at most the
// trial in flight.
type FileSink struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	buf     *bufio.Writer
	enc     *json.Encoder
	pending []Event
	written int
}

// NewFileSink opens dir/<outputName>_events.jsonl for appending.
func NewFileSink(dir, outputName string) (*FileSink, error) {
	path := filepath.Join(dir, Filename(outputName))

	// Participant data: owner read/write only
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}

	buf := bufio.NewWriter(file)
	return &FileSink{
		path: path,
		file: file,
		buf:  buf,
		enc:  json.NewEncoder(buf),
	}, nil
}

// Stage queues an event for the next Commit.
func (s *FileSink) Stage(e Event) {
	s.mu.Lock()
	s.pending = append(s.pending, e)
	s.mu.Unlock()
}

// Pending returns the number of staged events.
func (s *FileSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Written returns the number of events committed to the file.
func (s *FileSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Commit writes the staged events as one batch, then flushes and syncs
// the file.
func (s *FileSink) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked()
}

func (s *FileSink) commitLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	if s.file == nil {
		return fmt.Errorf("events file %s is closed", s.path)
	}

	for _, e := range s.pending {
		if err := s.enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
		}
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync events file: %w", err)
	}

	s.written += len(s.pending)
	s.pending = s.pending[:0]
	return nil
}

// WriteOne stages and commits a single event. Session-level events use it.
func (s *FileSink) WriteOne(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, e)
	return s.commitLocked()
}

// Close commits anything still staged and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	commitErr := s.commitLocked()
	closeErr := s.file.Close()
	s.file = nil
	if commitErr != nil {
		return commitErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close events file: %w", closeErr)
	}
	return nil
}

// Path returns the path to the events file.
func (s *FileSink) Path() string {
	return s.path
}

// ReadEvents reads all events from a JSONL file.
func ReadEvents(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file)
}

// Decode reads JSONL events from r. Lines with an unknown event type are
// rejected.
func Decode(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)

	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to parse event on line %d: %w", lineNum, err)
		}
		if !IsValidEventType(string(event.Type)) {
			return nil, fmt.Errorf("line %d: %w %q", lineNum, ErrUnknownType, event.Type)
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}

// FilterByType filters events by event type.
func FilterByType(events []Event, types ...EventType) []Event {
	if len(types) == 0 {
		return events
	}

	typeSet := make(map[EventType]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	var filtered []Event
	for _, event := range events {
		if typeSet[event.Type] {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// FilterByTrial filters events by trial index.
// If index is negative, all events are returned.
func FilterByTrial(events []Event, index int) []Event {
	if index < 0 {
		return events
	}

	var filtered []Event
	for _, event := range events {
		if event.TrialIndex == index {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
