package plugin

import (
	"context"
	"log/slog"

	"github.com/ayusman/mocap-replay/internal/detector"
)

// Sink is a consumer stage that hands every flushed batch to a plugin.
// Failures are logged and counted; the replay continues.
type Sink struct {
	exec    *Executor
	plugin  *Plugin
	runID   string
	feature string
	failed  int
}

// NewSink creates a Sink calling plugin through exec.
func NewSink(exec *Executor, plugin *Plugin) *Sink {
	return &Sink{exec: exec, plugin: plugin}
}

// SetRun sets the run ID and feature attached to subsequent requests.
func (s *Sink) SetRun(runID, feature string) {
	s.runID = runID
	s.feature = feature
}

// Name returns the plugin name.
func (s *Sink) Name() string {
	return s.plugin.Manifest.Name
}

// Update sends buf to the plugin and passes it on unchanged.
func (s *Sink) Update(buf *detector.Tree, frame int) (*detector.Tree, int) {
	data, err := buf.MarshalJSON()
	if err != nil {
		s.fail(frame, err.Error())
		return buf, frame
	}

	resp, err := s.exec.Execute(context.Background(), s.plugin, &Request{
		Action:  ActionFlush,
		RunID:   s.runID,
		Feature: s.feature,
		Frame:   frame,
		Data:    data,
		Config:  s.plugin.Manifest.Config,
	})
	switch {
	case err != nil:
		s.fail(frame, err.Error())
	case !resp.Success:
		s.fail(frame, resp.Error)
	}
	return buf, frame
}

func (s *Sink) fail(frame int, msg string) {
	s.failed++
	slog.Warn("plugin: flush not delivered", "plugin", s.Name(), "run_id", s.runID, "frame", frame, "error", msg)
}

// Failed returns the number of batches the plugin did not accept.
func (s *Sink) Failed() int {
	return s.failed
}
