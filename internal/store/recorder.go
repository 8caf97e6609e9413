package store

import (
	"log/slog"

	"github.com/ayusman/mocap-replay/internal/detector"
)

// Recorder is a consumer stage that persists every flushed buffer of a run.
// Write failures are logged and counted; they never interrupt the replay.
type Recorder struct {
	store  *Store
	runID  string
	failed int
}

// NewRecorder creates a Recorder writing batches for runID.
func (s *Store) NewRecorder(runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// SetRunID switches the run new batches are attached to.
func (r *Recorder) SetRunID(runID string) {
	r.runID = runID
}

// Update stores buf as the batch flushed at frame.
func (r *Recorder) Update(buf *detector.Tree, frame int) (*detector.Tree, int) {
	data, err := buf.MarshalJSON()
	if err != nil {
		r.failed++
		slog.Error("store: encode batch", "run_id", r.runID, "frame", frame, "error", err)
		return buf, frame
	}

	if _, err := r.store.Batches().Create(r.runID, frame, data); err != nil {
		r.failed++
		slog.Error("store: write batch", "run_id", r.runID, "frame", frame, "error", err)
	}
	return buf, frame
}

// Failed returns the number of batches that could not be stored.
func (r *Recorder) Failed() int {
	return r.failed
}
