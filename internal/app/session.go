package app

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Session implements the start/stop toggle over successive runs.
// Each start builds a fresh Controller; stopping forwards a Stop event to
// the running Drive loop.
type Session struct {
	config   Config
	interval time.Duration

	mu    sync.Mutex
	input chan Event
	ended <-chan struct{}
	done  chan struct{}
	last  Summary
}

// NewSession creates a session that starts runs with config.
func NewSession(config Config, interval time.Duration) *Session {
	return &Session{
		config:   config,
		interval: interval,
	}
}

// Toggle starts a run when none is active, and stops the active one
// otherwise. It reports whether a run is active after the call.
func (s *Session) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked() {
		s.stopLocked()
		return false, nil
	}

	cfg := s.config
	onTerminate := cfg.OnTerminate
	cfg.OnTerminate = func(sum Summary) {
		s.mu.Lock()
		s.last = sum
		s.mu.Unlock()
		if onTerminate != nil {
			onTerminate(sum)
		}
	}

	c := New(cfg)
	if err := c.Start(); err != nil {
		return false, err
	}

	input := make(chan Event, 1)
	done := make(chan struct{})
	s.input = input
	s.ended = c.Done()
	s.done = done

	go func() {
		defer close(done)
		Drive(ctx, c, s.interval, input)

		s.mu.Lock()
		if s.input == input {
			s.input = nil
		}
		s.mu.Unlock()
	}()

	slog.Info("session: run started", "run_id", c.RunID())
	return true, nil
}

// Stop ends the active run, if any, and waits for its loop to exit.
func (s *Session) Stop() {
	s.mu.Lock()
	done := s.done
	if s.activeLocked() {
		s.stopLocked()
	}
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Session) stopLocked() {
	select {
	case s.input <- Stop:
	default:
	}
	s.input = nil
}

// activeLocked treats a run whose controller already reached a terminal
// state as inactive, even before its loop has exited.
func (s *Session) activeLocked() bool {
	if s.input == nil {
		return false
	}
	select {
	case <-s.ended:
		return false
	default:
		return true
	}
}

// Active reports whether a run is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// Wait blocks until the most recently started run has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Last returns the summary of the most recently finished run.
func (s *Session) Last() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
