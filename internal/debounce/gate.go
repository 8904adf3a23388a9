// Package debounce rate-limits gesture families.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the minimum time between two activations of one family.
const DefaultInterval = 500 * time.Millisecond

// Gate enforces a minimum interval between activations.
// Allow is check-and-set: a true result has already recorded the activation,
// so deciding and firing cannot race even if callers run concurrently.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// New creates a Gate whose last activation is start.
// Nothing passes until interval has elapsed since start.
func New(interval time.Duration, start time.Time) *Gate {
	if interval < 0 {
		interval = 0
	}
	return &Gate{
		interval: interval,
		last:     start,
	}
}

// Allow reports whether more than the interval has elapsed since the last
// activation, and if so records now as the new last activation.
func (g *Gate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Sub(g.last) <= g.interval {
		return false
	}
	g.last = now
	return true
}

// Last returns the time of the last activation.
func (g *Gate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Interval returns the configured minimum interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Reset sets the last activation time.
func (g *Gate) Reset(t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = t
}
