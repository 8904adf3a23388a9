package display

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/landmark"
)

// Window shows frames in a native OpenCV window.
type Window struct {
	mu     sync.Mutex
	window *gocv.Window
}

// NewWindow opens the preview window.
func NewWindow() *Window {
	return &Window{window: gocv.NewWindow(WindowTitle)}
}

// Show draws the overlay and displays the frame.
func (w *Window) Show(frame *gocv.Mat, snap *landmark.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil || frame == nil || frame.Empty() {
		return nil
	}
	DrawOverlay(frame, snap)
	w.window.IMShow(*frame)
	return nil
}

// PollKey waits one millisecond for a key, which also lets the window redraw.
func (w *Window) PollKey() Key {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return KeyNone
	}
	return KeyFromCode(w.window.WaitKey(1))
}

// Close destroys the window. It is safe to call more than once.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}
