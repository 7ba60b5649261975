// Package stimuli loads the localizer stimulus sets from CSV files.
//
// Each row of a stimulus set is: index, word tokens..., condition. The
// first row is a header naming the columns. Sets are read as etable
// tables.
package stimuli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emer/etable/etable"

	"github.com/andywolf/langloc/internal/trial"
)

// DefaultAttentionImage is the attention-check picture shipped with the sets.
const DefaultAttentionImage = "hand-press-button-4.jpeg"

// ErrMalformedRow is returned for a set that lacks an index or condition
// column, or whose rows do not match the header width.
var ErrMalformedRow = errors.New("malformed stimulus row")

// Filename returns the canonical file name of a stimulus set.
func Filename(run, set int) string {
	return fmt.Sprintf("langloc_fmri_run%d_stim_set%d.csv", run, set)
}

// Path returns the location of a stimulus set within dir.
func Path(dir string, run, set int) string {
	return filepath.Join(dir, Filename(run, set))
}

// AttentionImage resolves the attention-check image. An explicit path wins
// over the default image inside dir.
func AttentionImage(dir, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(dir, DefaultAttentionImage)
}

// Load reads a stimulus set from disk.
func Load(path string) ([]trial.SentenceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stimulus set: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads stimulus rows from r. The first row names the columns and
// every row must have as many cells as the header.
func Parse(r io.Reader) ([]trial.SentenceRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stimulus set: %w", err)
	}
	if !hasDataRow(data) {
		return nil, nil
	}

	dt := &etable.Table{}
	if err := dt.ReadCSV(bytes.NewReader(data), etable.Comma); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return sentences(dt)
}

// sentences maps table rows to records: column 0 is the index, the last
// column the condition and everything between the words.
func sentences(dt *etable.Table) ([]trial.SentenceRecord, error) {
	if dt.Rows == 0 {
		return nil, nil
	}
	nc := dt.NumCols()
	if nc < 2 {
		// first data row follows the header
		return nil, fmt.Errorf("line 2: %w: got %d columns, need at least 2", ErrMalformedRow, nc)
	}

	records := make([]trial.SentenceRecord, 0, dt.Rows)
	for row := 0; row < dt.Rows; row++ {
		words := make([]string, 0, nc-2)
		for col := 1; col < nc-1; col++ {
			words = append(words, cell(dt, col, row))
		}
		records = append(records, trial.SentenceRecord{
			Words:     words,
			Condition: cell(dt, nc-1, row),
		})
	}
	return records, nil
}

func cell(dt *etable.Table, col, row int) string {
	return strings.TrimSpace(dt.Cols[col].StringVal1D(row))
}

// hasDataRow reports whether data holds a header plus at least one row.
func hasDataRow(data []byte) bool {
	lines := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines++
		if lines == 2 {
			return true
		}
	}
	return false
}

// Set is a loaded stimulus set.
type Set struct {
	Run       int
	Set       int
	Path      string
	Sentences []trial.SentenceRecord
}

// LoadSets loads every run/set combination found in dir. Loading stops at the
// first missing or malformed set.
func LoadSets(dir string, runs, sets []int) ([]Set, error) {
	var loaded []Set
	for _, run := range runs {
		for _, set := range sets {
			path := Path(dir, run, set)
			sentences, err := Load(path)
			if err != nil {
				return loaded, fmt.Errorf("run %d set %d: %w", run, set, err)
			}
			loaded = append(loaded, Set{Run: run, Set: set, Path: path, Sentences: sentences})
		}
	}
	return loaded, nil
}
