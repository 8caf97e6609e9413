package app

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickInterval paces headless replays at roughly 30 frames per second.
const DefaultTickInterval = 33 * time.Millisecond

// Drive feeds ticks and host input to a started controller until it reaches
// a terminal state. Ticks come from a ticker with the given interval; input
// carries cancel and stop requests from the host. Cancelling ctx stops the
// run. Every event is applied from this goroutine only.
func Drive(ctx context.Context, c *Controller, interval time.Duration, input <-chan Event) State {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Done():
			return c.State()
		case <-ctx.Done():
			slog.Debug("replay: context done, stopping run", "run_id", c.RunID())
			return c.Handle(Stop)
		case ev, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			c.Handle(ev)
		case <-ticker.C:
			c.Handle(Tick)
		}
	}
}
