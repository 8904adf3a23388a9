package display

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/landmark"
)

// Headless discards frames. Keys can be injected with Press, which is how
// tests and the tray simulate a quit key.
type Headless struct {
	mu     sync.Mutex
	keys   []Key
	shown  int
	closed bool
}

// NewHeadless creates a display without a window.
func NewHeadless() *Headless {
	return &Headless{}
}

// Show counts the frame and drops it.
func (h *Headless) Show(frame *gocv.Mat, snap *landmark.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown++
	return nil
}

// Press queues a key for the next PollKey.
func (h *Headless) Press(k Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, k)
}

// PollKey returns the next queued key, or KeyNone.
func (h *Headless) PollKey() Key {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.keys) == 0 {
		return KeyNone
	}
	k := h.keys[0]
	h.keys = h.keys[1:]
	return k
}

// Close marks the display closed.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Shown returns how many frames were passed to Show.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
