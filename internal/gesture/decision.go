package gesture

import (
	"github.com/ayusman/nayana/internal/landmark"
	"github.com/ayusman/nayana/internal/stats"
)

// Tracker carries the per-session classification memory: wink edges and gaze smoothing.
type Tracker struct {
	Left     WinkState
	Right    WinkState
	Smoother *Smoother
}

// NewTracker creates a Tracker with the given gaze smoothing alpha.
func NewTracker(alpha float64) *Tracker {
	return &Tracker{Smoother: NewSmoother(alpha)}
}

// Decision is everything the frame loop needs from one snapshot.
type Decision struct {
	// Quit is set when the mouth is open; all other fields are then empty.
	Quit bool

	Gaze    Point
	HasGaze bool

	// LeftWink and RightWink are rising edges of the eye-closed state.
	LeftWink  bool
	RightWink bool

	Scroll    stats.Kind
	HasScroll bool
	Tilt      float64
}

// Evaluate classifies one snapshot and advances the tracker's wink memory.
// Every signal degrades independently when its landmarks are missing.
func (c *Classifier) Evaluate(s *landmark.Snapshot, t *Tracker) Decision {
	if c.MouthOpen(s) {
		return Decision{Quit: true}
	}

	var d Decision

	if g, ok := c.Gaze(s); ok {
		d.Gaze = t.Smoother.Apply(g)
		d.HasGaze = true
	}

	if closed, ok := c.EyeClosed(s, LeftEye); ok {
		d.LeftWink = t.Left.Update(closed)
	}
	if closed, ok := c.EyeClosed(s, RightEye); ok {
		d.RightWink = t.Right.Update(closed)
	}

	if tilt, ok := c.Tilt(s); ok {
		d.Tilt = tilt
		d.Scroll, d.HasScroll = c.ScrollDirection(tilt)
	}

	return d
}

// Reset forgets wink edges and smoothing history, e.g. after a pause.
func (t *Tracker) Reset() {
	t.Left.Reset()
	t.Right.Reset()
	t.Smoother.Reset()
}
