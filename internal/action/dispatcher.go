package action

import (
	"fmt"
	"time"

	"github.com/ayusman/nayana/internal/gesture"
	"github.com/ayusman/nayana/internal/stats"
)

// DefaultScrollDelta is the fixed scroll magnitude. Scrolling is not proportional to tilt.
const DefaultScrollDelta = 300

// Dispatcher issues exactly one automation call per gesture and reports its outcome.
// Calls are synchronous: the caller waits for the automator to return.
type Dispatcher struct {
	automator    Automator
	scrollDelta  int
	screenWidth  int
	screenHeight int
	now          func() time.Time
}

// NewDispatcher creates a Dispatcher and reads the screen size from the automator.
// now may be nil to use time.Now.
func NewDispatcher(a Automator, scrollDelta int, now func() time.Time) (*Dispatcher, error) {
	w, h, err := a.ScreenSize()
	if err != nil {
		return nil, fmt.Errorf("query screen size: %w", err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidScreen, w, h)
	}
	if scrollDelta <= 0 {
		scrollDelta = DefaultScrollDelta
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		automator:    a,
		scrollDelta:  scrollDelta,
		screenWidth:  w,
		screenHeight: h,
		now:          now,
	}, nil
}

// ScreenSize returns the screen size used for gaze scaling.
func (d *Dispatcher) ScreenSize() (int, int) {
	return d.screenWidth, d.screenHeight
}

// MoveCursor moves the pointer to the gaze point scaled to the screen.
func (d *Dispatcher) MoveCursor(g gesture.Point) stats.Event {
	x, y := gesture.ScreenPoint(g, d.screenWidth, d.screenHeight)
	return d.run(stats.Cursor, func() error { return d.automator.MoveTo(x, y) })
}

// Click issues a left or right click for LeftClick or RightClick.
func (d *Dispatcher) Click(kind stats.Kind) stats.Event {
	switch kind {
	case stats.LeftClick:
		return d.run(kind, d.automator.Click)
	case stats.RightClick:
		return d.run(kind, d.automator.RightClick)
	default:
		return d.reject(kind)
	}
}

// Scroll scrolls by the fixed delta: up for ScrollUp, down for ScrollDown.
func (d *Dispatcher) Scroll(kind stats.Kind) stats.Event {
	switch kind {
	case stats.ScrollUp:
		return d.run(kind, func() error { return d.automator.Scroll(d.scrollDelta) })
	case stats.ScrollDown:
		return d.run(kind, func() error { return d.automator.Scroll(-d.scrollDelta) })
	default:
		return d.reject(kind)
	}
}

// run times fn and builds the event. A failed call counts as an attempt without latency.
func (d *Dispatcher) run(kind stats.Kind, fn func() error) stats.Event {
	start := d.now()
	err := fn()
	ev := stats.Event{Kind: kind, Timestamp: start}
	if err != nil {
		ev.Err = fmt.Errorf("%s: %w", kind, err)
		return ev
	}
	ev.Succeeded = true
	ev.Latency = d.now().Sub(start)
	return ev
}

func (d *Dispatcher) reject(kind stats.Kind) stats.Event {
	return stats.Event{
		Kind:      kind,
		Timestamp: d.now(),
		Err:       fmt.Errorf("no pointer action for %s", kind),
	}
}
