// Package gesture derives gesture signals from face landmark snapshots.
package gesture

import (
	"math"

	"github.com/ayusman/nayana/internal/landmark"
	"github.com/ayusman/nayana/internal/stats"
)

// Default thresholds in normalized image units.
const (
	DefaultMouthOpenThreshold  = 0.05
	DefaultWinkClosedThreshold = 0.006
	DefaultScrollThreshold     = 0.05
)

// Thresholds holds the tunable classification thresholds.
type Thresholds struct {
	MouthOpen  float64 `yaml:"mouth_open_threshold"`
	WinkClosed float64 `yaml:"wink_closed_threshold"`
	Scroll     float64 `yaml:"scroll_threshold"`
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MouthOpen:  DefaultMouthOpenThreshold,
		WinkClosed: DefaultWinkClosedThreshold,
		Scroll:     DefaultScrollThreshold,
	}
}

// Eye selects one eye's landmark pair.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

func (e Eye) String() string {
	if e == LeftEye {
		return "left"
	}
	return "right"
}

// lids returns the lower and upper lid landmark indices.
func (e Eye) lids() (lower, upper int) {
	if e == LeftEye {
		return landmark.LeftEyeLower, landmark.LeftEyeUpper
	}
	return landmark.RightEyeLower, landmark.RightEyeUpper
}

// Point is a normalized 2-D position.
type Point struct {
	X float64
	Y float64
}

// Classifier evaluates landmark snapshots. It holds no per-frame state.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a Classifier. Zero thresholds fall back to defaults.
func NewClassifier(t Thresholds) *Classifier {
	def := DefaultThresholds()
	if t.MouthOpen <= 0 {
		t.MouthOpen = def.MouthOpen
	}
	if t.WinkClosed <= 0 {
		t.WinkClosed = def.WinkClosed
	}
	if t.Scroll <= 0 {
		t.Scroll = def.Scroll
	}
	return &Classifier{thresholds: t}
}

// Thresholds returns the thresholds in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// MouthOpen reports whether lowerLip.y - upperLip.y exceeds the threshold.
// Missing lip landmarks read as "not open".
func (c *Classifier) MouthOpen(s *landmark.Snapshot) bool {
	gap, ok := s.VerticalGap(landmark.LowerLipInner, landmark.UpperLipInner)
	if !ok {
		return false
	}
	return gap > c.thresholds.MouthOpen
}

// Gaze returns the normalized iris centre used as the cursor proxy.
func (c *Classifier) Gaze(s *landmark.Snapshot) (Point, bool) {
	p, ok := s.At(landmark.RightIrisCenter)
	if !ok {
		return Point{}, false
	}
	return Point{X: p.X, Y: p.Y}, true
}

// EyeClosed reports whether the eye's lid gap is below the wink threshold.
// ok is false when the eye's landmarks are missing.
func (c *Classifier) EyeClosed(s *landmark.Snapshot, eye Eye) (closed, ok bool) {
	lower, upper := eye.lids()
	gap, ok := s.VerticalGap(lower, upper)
	if !ok {
		return false, false
	}
	return gap < c.thresholds.WinkClosed, true
}

// Tilt returns rightEyeLower.y - leftEyeLower.y.
func (c *Classifier) Tilt(s *landmark.Snapshot) (float64, bool) {
	return s.VerticalGap(landmark.RightEyeLower, landmark.LeftEyeLower)
}

// ScrollDirection maps a tilt to a scroll kind when |tilt| exceeds the threshold.
// Negative tilt scrolls up, positive scrolls down.
func (c *Classifier) ScrollDirection(tilt float64) (stats.Kind, bool) {
	if math.Abs(tilt) <= c.thresholds.Scroll {
		return 0, false
	}
	if tilt < 0 {
		return stats.ScrollUp, true
	}
	return stats.ScrollDown, true
}

// ScreenPoint scales a normalized gaze point to screen coordinates.
func ScreenPoint(g Point, screenWidth, screenHeight int) (x, y float64) {
	return g.X * float64(screenWidth), g.Y * float64(screenHeight)
}
