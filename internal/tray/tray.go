// Package tray provides the system tray menu of a running nayana session.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/nayana/internal/stats"
)

// Menu titles.
const (
	TitleEnabled  = "● Gestures on"
	TitleDisabled = "○ Gestures paused"
	LastNone      = "Last: none"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	// quit ends the systray event loop; replaced in tests.
	quit        func()
	ready       chan struct{}
	isReady     bool
	quitPending bool

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray with the given initial gesture state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		quit:    systray.Quit,
		ready:   make(chan struct{}),
	}
}

// OnToggle sets the callback called when the user pauses or resumes gestures.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Attach shows the last successful gesture of rec in the menu.
func (t *Tray) Attach(rec *stats.Recorder) {
	rec.Subscribe(t.Observe)
}

// Observe records ev as the last gesture. Cursor moves and failures are ignored.
func (t *Tray) Observe(ev stats.Event) {
	if !ev.Succeeded || ev.Kind == stats.Cursor {
		return
	}
	t.SetLastGesture(ev.Kind.String())
}

// Run starts the system tray application.
// It blocks until Quit is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Ready is closed once the tray event loop is running.
func (t *Tray) Ready() <-chan struct{} {
	return t.ready
}

// Quit stops the tray event loop. A Quit before the loop is ready is held
// and applied when it becomes ready. It is safe to call more than once.
func (t *Tray) Quit() {
	t.mu.Lock()
	if !t.isReady {
		t.quitPending = true
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	t.quit()
}

// markReady closes Ready and applies a held Quit.
func (t *Tray) markReady() {
	t.mu.Lock()
	if t.isReady {
		t.mu.Unlock()
		return
	}
	t.isReady = true
	pending := t.quitPending
	close(t.ready)
	t.mu.Unlock()

	if pending {
		t.quit()
	}
}

func (t *Tray) onReady() {
	systray.SetTitle("Nayana")
	systray.SetTooltip("Nayana face-gesture mouse")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume gesture control")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(lastTitle(t.last), "Last gesture performed")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuToggle := t.menuToggle
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "End the session")

	go func() {
		for {
			select {
			case <-menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()

	t.markReady()
}

func (t *Tray) onExit() {}

// handleToggle flips the state and notifies the toggle callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	t.quit()
}

// SetEnabled syncs the menu with a state changed elsewhere, without calling
// the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = name
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastTitle(name))
	}
}

// LastGesture returns the name shown in the menu, or "" before any gesture.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return TitleEnabled
	}
	return TitleDisabled
}

func lastTitle(name string) string {
	if name == "" {
		return LastNone
	}
	return "Last: " + name
}
