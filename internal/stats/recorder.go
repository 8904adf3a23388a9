package stats

import (
	"sync"
)

// Counters accumulates attempts for one kind.
// Attempts >= Successes always holds; CumulativeResponseMs only grows on success.
type Counters struct {
	Attempts             int     `json:"attempts"`
	Successes            int     `json:"successes"`
	CumulativeResponseMs float64 `json:"cumulative_response_ms"`
}

// Accuracy returns successes/attempts*100, or 0 without attempts.
func (c Counters) Accuracy() float64 {
	if c.Attempts == 0 {
		return 0
	}
	return float64(c.Successes) / float64(c.Attempts) * 100
}

// AvgResponseMs returns the mean latency of successful attempts, or 0.
func (c Counters) AvgResponseMs() float64 {
	if c.Successes == 0 {
		return 0
	}
	return c.CumulativeResponseMs / float64(c.Successes)
}

// KindStats pairs a kind with its counters.
type KindStats struct {
	Kind Kind `json:"kind"`
	Counters
}

// Recorder accumulates gesture statistics for one session.
// The frame loop is the only writer; readers may snapshot from other goroutines.
type Recorder struct {
	mu        sync.RWMutex
	counters  [numKinds]Counters
	observers []func(Event)
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Subscribe registers fn to be called after every recorded event.
// Observers run on the recording goroutine and must not block.
func (r *Recorder) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Record adds one event to the counters. Events with an invalid kind are ignored.
func (r *Recorder) Record(ev Event) {
	if !ev.Kind.Valid() {
		return
	}

	r.mu.Lock()
	c := &r.counters[ev.Kind]
	c.Attempts++
	if ev.Succeeded {
		c.Successes++
		c.CumulativeResponseMs += ev.LatencyMs()
	}
	observers := r.observers
	r.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// Get returns the counters for one kind.
func (r *Recorder) Get(k Kind) Counters {
	if !k.Valid() {
		return Counters{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[k]
}

// Snapshot returns a copy of all counters in report order.
func (r *Recorder) Snapshot() []KindStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]KindStats, numKinds)
	for i := range out {
		out[i] = KindStats{Kind: Kind(i), Counters: r.counters[i]}
	}
	return out
}

// Restore overwrites the counters from a snapshot, e.g. one loaded from storage.
func (r *Recorder) Restore(snapshot []KindStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ks := range snapshot {
		if ks.Kind.Valid() {
			r.counters[ks.Kind] = ks.Counters
		}
	}
}
