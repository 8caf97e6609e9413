// Package tray provides a system tray host that starts and stops replays.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func() (bool, error)
	onOpen   func()
	onQuit   func()
	status   func() bool
	running  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuLastRun *systray.MenuItem
}

// New creates a new Tray instance with no run in progress.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback that starts or stops a run. It reports whether
// a run is active afterwards.
func (t *Tray) OnToggle(fn func() (bool, error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnStatus sets the function that reports whether a run is active. When set,
// the toggle item follows it instead of the toggle callback's result.
func (t *Tray) OnStatus(fn func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = fn
}

// OnOpen sets the callback function to be called when the open runs menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Replay")
	systray.SetTooltip("Landmark recording replay")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Start or stop the replay")
	systray.AddSeparator()

	t.menuLastRun = systray.AddMenuItem("Last: none", "Last finished run")
	t.menuLastRun.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Runs...", "Open run history in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop the replay and quit")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(running bool) string {
	if running {
		return "■ Stop replay"
	}
	return "▶ Start replay"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.RLock()
	callback := t.onToggle
	t.mu.RUnlock()

	if callback == nil {
		return
	}

	// Call the callback outside the lock to prevent deadlocks
	running, err := callback()
	if err != nil {
		t.SetLastRun("error: " + err.Error())
	}

	t.mu.RLock()
	status := t.status
	t.mu.RUnlock()
	if status != nil {
		t.Refresh()
		return
	}
	t.SetRunning(running)
}

// handleOpen handles the open runs menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetRunning updates the toggle item for the given run state.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = running
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(running))
	}
}

// Refresh re-reads the run state from the status function. The read and the
// menu update happen under one lock so the latest refresh always wins.
func (t *Tray) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == nil {
		return
	}
	t.running = t.status()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.running))
	}
}

// SetLastRun updates the last run display in the menu.
func (t *Tray) SetLastRun(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastRun != nil {
		if text == "" {
			t.menuLastRun.SetTitle("Last: none")
		} else {
			t.menuLastRun.SetTitle("Last: " + text)
		}
	}
}

// IsRunning returns whether a run is in progress.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}
