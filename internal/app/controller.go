// Package app drives recorded landmark replays through a node chain.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ayusman/mocap-replay/internal/capture"
	"github.com/ayusman/mocap-replay/internal/chain"
	"github.com/ayusman/mocap-replay/internal/detector"
	"github.com/ayusman/mocap-replay/internal/smooth"
)

// DefaultBatchInterval flushes every tick.
const DefaultBatchInterval = 1

// ErrNotIdle is returned by Start on a controller that already ran.
var ErrNotIdle = errors.New("controller is not idle")

// ConfigError reports a run configuration that cannot be started.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds the settings for one replay run.
type Config struct {
	// RecordingPath is the JSON recording to replay.
	RecordingPath string
	// Feature is the detection type: HAND, POSE, FACE or HOLISTIC.
	Feature string
	// BatchInterval is the number of ticks between flushes (default: 1).
	BatchInterval int
	// Consumers receive the smoothed buffer at every flush.
	Consumers []chain.Stage
	// OnStart is called after a successful Start, before the first tick.
	OnStart func(Summary)
	// OnTerminate is called once when the run ends.
	OnTerminate func(Summary)
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Recording     string
	Feature       string
	BatchInterval int
	Total         int
	State         State
	Reason        Reason
	Frames        int
	Flushes       int
	Incomplete    int
}

// Controller is the replay state machine. All methods must be called from a
// single goroutine; hosts serialize their events through Handle.
type Controller struct {
	config Config
	batch  int

	feature    string
	state      State
	reason     Reason
	runID      string
	chain      *chain.Chain
	head       *detector.Detector
	buffer     *detector.Tree
	frame      int
	ticks      int
	flushes    int
	total      int
	incomplete int
	done       chan struct{}
}

// New creates an idle controller.
func New(config Config) *Controller {
	return &Controller{
		config: config,
		state:  StateIdle,
		done:   make(chan struct{}),
	}
}

// Start loads the recording, builds the chain and switches to running.
// On error the controller stays idle and nothing is allocated.
func (c *Controller) Start() error {
	if c.state != StateIdle {
		return ErrNotIdle
	}

	kind, err := detector.ParseKind(c.config.Feature)
	if err != nil {
		return &ConfigError{Field: "feature", Err: err}
	}

	batch := c.config.BatchInterval
	if batch == 0 {
		batch = DefaultBatchInterval
	}
	if batch < 0 {
		return &ConfigError{Field: "batch interval", Err: fmt.Errorf("must be positive, got %d", batch)}
	}

	src, err := capture.Load(c.config.RecordingPath)
	if err != nil {
		return &ConfigError{Field: "recording", Err: err}
	}

	c.head = detector.New(kind, src)
	c.chain = chain.New(c.head, c.config.Consumers...)
	c.batch = batch
	c.frame = 1
	c.buffer = detector.NewBranch()
	c.total = src.Len()
	c.feature = kind.String()
	c.runID = uuid.NewString()
	c.state = StateRunning

	slog.Info("replay: run started",
		"run_id", c.runID,
		"feature", kind.String(),
		"recording", c.config.RecordingPath,
		"frames", c.total,
		"batch_interval", c.batch,
		"chain", c.chain.String(),
	)

	if c.config.OnStart != nil {
		c.config.OnStart(c.Summary())
	}
	return nil
}

// Handle applies one event. Ticks only act while running; cancel and stop
// requests end the run.
func (c *Controller) Handle(ev Event) State {
	switch ev.Type {
	case EventTick:
		c.tick()
	case EventCancelRequest:
		c.Cancel(ReasonCancelled)
	case EventStop:
		c.Cancel(ReasonStopped)
	}
	return c.state
}

func (c *Controller) tick() {
	if c.state != StateRunning {
		return
	}

	result, _ := c.head.Update(nil, c.frame)
	if result == nil {
		c.Cancel(ReasonExhausted)
		return
	}

	c.buffer = smooth.Merge(c.buffer, result)
	c.ticks++

	if c.frame%c.batch == 0 {
		c.chain.Flush(c.buffer, c.frame)
		c.flushes++
		c.buffer = detector.NewBranch()
	}

	c.frame++
}

// Cancel ends a running replay. The pending buffer is dropped without a
// final flush. Calling Cancel on an idle or finished controller is a no-op.
func (c *Controller) Cancel(reason Reason) {
	if c.state != StateRunning {
		return
	}

	if reason == ReasonExhausted {
		c.state = StateExhausted
	} else {
		c.state = StateCancelled
	}
	c.reason = reason

	if c.head != nil {
		c.incomplete = c.head.Incomplete()
	}
	c.chain = nil
	c.head = nil
	c.buffer = nil

	slog.Info("replay: run finished",
		"run_id", c.runID,
		"reason", reason.String(),
		"frames", c.ticks,
		"flushes", c.flushes,
		"incomplete", c.incomplete,
	)

	close(c.done)
	if c.config.OnTerminate != nil {
		c.config.OnTerminate(c.Summary())
	}
}

// Done is closed when the controller reaches a terminal state.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Reason returns why the run ended, or ReasonNone while idle or running.
func (c *Controller) Reason() Reason {
	return c.reason
}

// RunID returns the identifier assigned at Start.
func (c *Controller) RunID() string {
	return c.runID
}

// Frame returns the frame number the next tick will process.
func (c *Controller) Frame() int {
	return c.frame
}

// Total returns the number of frames in the loaded recording.
func (c *Controller) Total() int {
	return c.total
}

// Flushes returns how many batches were handed to consumers.
func (c *Controller) Flushes() int {
	return c.flushes
}

// Buffer returns the pending, not yet flushed, accumulation.
func (c *Controller) Buffer() *detector.Tree {
	return c.buffer
}

// Summary reports the run so far.
func (c *Controller) Summary() Summary {
	return Summary{
		RunID:         c.runID,
		Recording:     c.config.RecordingPath,
		Feature:       c.feature,
		BatchInterval: c.batch,
		Total:         c.total,
		State:         c.state,
		Reason:        c.reason,
		Frames:        c.ticks,
		Flushes:       c.flushes,
		Incomplete:    c.incomplete,
	}
}
