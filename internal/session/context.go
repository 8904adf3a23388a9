package session

import (
	"time"

	"github.com/ayusman/nayana/internal/debounce"
	"github.com/ayusman/nayana/internal/gesture"
	"github.com/ayusman/nayana/internal/stats"
)

// Context is the mutable state of one session. It is created when the loop
// starts and discarded after the final report.
type Context struct {
	ID         string
	Start      time.Time
	Recorder   *stats.Recorder
	ClickGate  *debounce.Gate
	ScrollGate *debounce.Gate
	Tracker    *gesture.Tracker

	lastReport time.Time
}

// NewContext creates the state of a session starting at start.
// Both gates start closed until one debounce interval has passed.
func NewContext(id string, start time.Time, cfg Config, rec *stats.Recorder) *Context {
	cfg = cfg.withDefaults()
	if rec == nil {
		rec = stats.NewRecorder()
	}
	return &Context{
		ID:         id,
		Start:      start,
		Recorder:   rec,
		ClickGate:  debounce.New(cfg.DebounceInterval, start),
		ScrollGate: debounce.New(cfg.DebounceInterval, start),
		Tracker:    gesture.NewTracker(cfg.SmoothingAlpha),
		lastReport: start,
	}
}

// Elapsed returns the session age at now.
func (c *Context) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.Start)
}

// reportDue reports whether more than interval has passed since the last
// periodic report, and if so marks now as the last report time.
func (c *Context) reportDue(now time.Time, interval time.Duration) bool {
	if now.Sub(c.lastReport) <= interval {
		return false
	}
	c.lastReport = now
	return true
}
