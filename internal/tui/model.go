// Package tui hosts a replay in a terminal UI. Ticks are delivered as
// bubbletea messages and quit keys cancel the run.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayusman/mocap-replay/internal/app"
)

type tickMsg time.Time

// Model is the bubbletea model driving one started controller.
type Model struct {
	c        *app.Controller
	interval time.Duration
}

// New creates a model for c, which must already be started.
func New(c *app.Controller, interval time.Duration) Model {
	if interval <= 0 {
		interval = app.DefaultTickInterval
	}
	return Model{c: c, interval: interval}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model interface.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model interface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.c.Handle(app.CancelRequest)
			return m, tea.Quit
		}
	case tickMsg:
		if m.c.Handle(app.Tick).Terminal() {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// View implements tea.Model interface.
func (m Model) View() string {
	var b strings.Builder
	sum := m.c.Summary()

	b.WriteString(fmt.Sprintf("Replaying %s (%s)\n\n", sum.Recording, sum.Feature))
	b.WriteString(fmt.Sprintf("Frame:   %d/%d\n", sum.Frames, sum.Total))
	b.WriteString(fmt.Sprintf("Flushes: %d (every %d)\n", sum.Flushes, sum.BatchInterval))
	b.WriteString(fmt.Sprintf("State:   %s\n", sum.State))

	if sum.State.Terminal() {
		b.WriteString(fmt.Sprintf("\nFinished: %s\n", sum.Reason))
	} else {
		b.WriteString("\n(Press q or Esc to quit)")
	}
	return b.String()
}

// Run drives c from a bubbletea program until the run ends, a quit key is
// pressed or ctx is done.
func Run(ctx context.Context, c *app.Controller, interval time.Duration, opts ...tea.ProgramOption) (app.State, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(c, interval), opts...)

	_, err := p.Run()

	// The program no longer calls Update; finish the run here if it is still live.
	if !c.State().Terminal() {
		c.Handle(app.Stop)
	}
	if err != nil && ctx.Err() != nil {
		err = nil
	}
	return c.State(), err
}
