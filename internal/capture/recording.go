// Package capture plays back landmark recordings frame by frame.
package capture

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// FeatureRecord is one frame of raw landmark lists keyed by feature name.
// Each value is a list of [x, y, z] coordinate arrays.
type FeatureRecord map[string][][]float64

// Source plays back pre-recorded frames in order, exactly once.
type Source struct {
	records []FeatureRecord
	cursor  int
}

// NewSource creates a Source over in-memory records.
func NewSource(records []FeatureRecord) *Source {
	return &Source{records: records}
}

// Load reads a recording file holding a single JSON array of feature records.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read recording %s", path)
	}

	records, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode recording %s", path)
	}

	return NewSource(records), nil
}

// Decode parses raw recording JSON.
func Decode(data []byte) ([]FeatureRecord, error) {
	var records []FeatureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "unmarshal feature records")
	}
	return records, nil
}

// Next returns the record under the cursor and advances it.
// Once every record has been returned it reports false on every call.
func (s *Source) Next() (FeatureRecord, bool) {
	if s.cursor >= len(s.records) {
		return nil, false
	}

	rec := s.records[s.cursor]
	s.cursor++
	return rec, true
}

// Len returns the number of recorded frames.
func (s *Source) Len() int {
	return len(s.records)
}

// Cursor returns how many records have been consumed.
func (s *Source) Cursor() int {
	return s.cursor
}

// Exhausted reports whether the cursor reached the end of the recording.
func (s *Source) Exhausted() bool {
	return s.cursor >= len(s.records)
}
