// Package action turns gate-approved gestures into pointer actions.
package action

import (
	"errors"
	"sync"
)

// Automator is the OS automation collaborator.
type Automator interface {
	MoveTo(x, y float64) error
	Click() error
	RightClick() error
	// Scroll scrolls by delta units; positive scrolls up.
	Scroll(delta int) error
	ScreenSize() (width, height int, err error)
}

// ErrInvalidScreen is returned when an automator reports a non-positive screen size.
var ErrInvalidScreen = errors.New("invalid screen size")

// Call is one recorded automation call.
type Call struct {
	Op    string
	X, Y  float64
	Delta int
}

// Recorder is an in-memory Automator that records every call.
// Errors can be injected per operation.
type Recorder struct {
	mu     sync.Mutex
	width  int
	height int
	calls  []Call
	errs   map[string]error
}

// NewRecorder creates a Recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:  width,
		height: height,
		errs:   make(map[string]error),
	}
}

// Fail makes every subsequent call of op return err. A nil err clears it.
func (r *Recorder) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errs, op)
		return
	}
	r.errs[op] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.errs[c.Op]
}

// MoveTo records a cursor move.
func (r *Recorder) MoveTo(x, y float64) error {
	return r.record(Call{Op: "move", X: x, Y: y})
}

// Click records a left click.
func (r *Recorder) Click() error {
	return r.record(Call{Op: "click"})
}

// RightClick records a right click.
func (r *Recorder) RightClick() error {
	return r.record(Call{Op: "right-click"})
}

// Scroll records a scroll.
func (r *Recorder) Scroll(delta int) error {
	return r.record(Call{Op: "scroll", Delta: delta})
}

// ScreenSize returns the configured size.
func (r *Recorder) ScreenSize() (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs["screen-size"]; err != nil {
		return 0, 0, err
	}
	return r.width, r.height, nil
}
