// Package stats records gesture attempts, successes and response times,
// and renders the accuracy report.
package stats

import (
	"fmt"
	"time"
)

// Kind identifies a gesture. The set is closed.
type Kind int

const (
	Cursor Kind = iota
	LeftClick
	RightClick
	ScrollUp
	ScrollDown
	Quit

	numKinds
)

var kindNames = [numKinds]string{
	Cursor:     "Cursor",
	LeftClick:  "Left_Click",
	RightClick: "Right_Click",
	ScrollUp:   "Scroll_Up",
	ScrollDown: "Scroll_Down",
	Quit:       "Quit",
}

// String returns the report label of the kind.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid gesture kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind returns the kind with the given report label.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown gesture kind %q", s)
}

// Kinds returns every kind in report order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Event is the outcome of one evaluated gesture attempt.
// Latency is only meaningful when Succeeded is true.
type Event struct {
	Kind      Kind          `json:"kind"`
	Timestamp time.Time     `json:"timestamp"`
	Succeeded bool          `json:"succeeded"`
	Latency   time.Duration `json:"latency_ns"`
	Err       error         `json:"-"`
}

// LatencyMs returns the latency in fractional milliseconds.
func (e Event) LatencyMs() float64 {
	return float64(e.Latency) / float64(time.Millisecond)
}
