package gesture

// WinkState remembers whether an eye was closed on the previous frame.
// Update must be called every frame so a held-closed eye fires only once.
type WinkState struct {
	previouslyClosed bool
}

// Update records this frame's state and reports a rising edge (open -> closed).
func (w *WinkState) Update(closed bool) bool {
	edge := closed && !w.previouslyClosed
	w.previouslyClosed = closed
	return edge
}

// Closed returns the last recorded state.
func (w *WinkState) Closed() bool {
	return w.previouslyClosed
}

// Reset forgets the previous state.
func (w *WinkState) Reset() {
	w.previouslyClosed = false
}
