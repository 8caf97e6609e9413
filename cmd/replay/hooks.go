package main

import (
	"fmt"
	"log/slog"

	"github.com/ayusman/mocap-replay/internal/app"
	"github.com/ayusman/mocap-replay/internal/chain"
	"github.com/ayusman/mocap-replay/internal/detector"
	"github.com/ayusman/mocap-replay/internal/plugin"
	"github.com/ayusman/mocap-replay/internal/server"
	"github.com/ayusman/mocap-replay/internal/store"
)

// tracker wires the optional store, hub and plugin sinks into a run. It
// contributes consumer stages and records the run row on start and
// termination.
type tracker struct {
	store    *store.Store
	recorder *store.Recorder
	hub      *server.Hub
	sinks    []*plugin.Sink
}

func newTracker(st *store.Store, hub *server.Hub, sinks ...*plugin.Sink) *tracker {
	t := &tracker{store: st, hub: hub, sinks: sinks}
	if st != nil {
		t.recorder = st.NewRecorder("")
	}
	return t
}

func (t *tracker) consumers() []chain.Stage {
	var stages []chain.Stage
	if t.recorder != nil {
		stages = append(stages, t.recorder)
	}
	if t.hub != nil {
		stages = append(stages, t.hub)
	}
	for _, s := range t.sinks {
		stages = append(stages, s)
	}
	return stages
}

func (t *tracker) onStart(sum app.Summary) {
	if t.hub != nil {
		t.hub.SetRunID(sum.RunID)
	}
	for _, s := range t.sinks {
		s.SetRun(sum.RunID, sum.Feature)
	}
	if t.store == nil {
		return
	}

	t.recorder.SetRunID(sum.RunID)
	run := &store.Run{
		ID:            sum.RunID,
		Recording:     sum.Recording,
		Feature:       sum.Feature,
		BatchInterval: sum.BatchInterval,
	}
	if err := t.store.Runs().Create(run); err != nil {
		slog.Error("replay: record run", "run_id", sum.RunID, "error", err)
	}
}

func (t *tracker) onTerminate(sum app.Summary) {
	for _, s := range t.sinks {
		if n := s.Failed(); n > 0 {
			slog.Warn("replay: plugin rejected batches", "plugin", s.Name(), "run_id", sum.RunID, "failed", n)
		}
	}
	if t.store == nil {
		return
	}

	err := t.store.Runs().Finish(sum.RunID, store.RunResult{
		State:      sum.State.String(),
		Reason:     sum.Reason.String(),
		Frames:     sum.Frames,
		Flushes:    sum.Flushes,
		Incomplete: sum.Incomplete,
	})
	if err != nil {
		slog.Error("replay: finish run", "run_id", sum.RunID, "error", err)
	}
	if n := t.recorder.Failed(); n > 0 {
		slog.Warn("replay: batches not stored", "run_id", sum.RunID, "failed", n)
	}
}

// appConfig builds the controller configuration for one run.
func (o *options) appConfig(t *tracker, extra ...chain.Stage) app.Config {
	return app.Config{
		RecordingPath: o.cfg.Recording,
		Feature:       o.cfg.Feature,
		BatchInterval: o.cfg.BatchInterval,
		Consumers:     append(extra, t.consumers()...),
		OnStart:       t.onStart,
		OnTerminate:   t.onTerminate,
	}
}

func describe(sum app.Summary) string {
	return fmt.Sprintf("%s after %d/%d frames, %d flushes, %d incomplete",
		sum.Reason, sum.Frames, sum.Total, sum.Flushes, sum.Incomplete)
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}

// loadSinks discovers the enabled plugins and returns one sink per plugin.
func (o *options) loadSinks() ([]*plugin.Sink, error) {
	if len(o.cfg.Plugins.Enabled) == 0 {
		return nil, nil
	}

	kind, err := detector.ParseKind(o.cfg.Feature)
	if err != nil {
		return nil, err
	}

	mgr := plugin.NewManager(o.cfg.Plugins.Dir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("failed to discover plugins: %w", err)
	}

	plugins, err := mgr.Resolve(o.cfg.Plugins.Enabled, kind.String())
	if err != nil {
		return nil, err
	}

	exec := plugin.NewExecutor(o.cfg.PluginTimeout())
	sinks := make([]*plugin.Sink, 0, len(plugins))
	for _, p := range plugins {
		sinks = append(sinks, plugin.NewSink(exec, p))
	}
	return sinks, nil
}
