package gesture

// Smoother applies exponential smoothing to the gaze point.
// Alpha is the weight of the new sample: 1 passes samples through unchanged,
// smaller values trade responsiveness for stability.
type Smoother struct {
	alpha  float64
	last   Point
	primed bool
}

// NewSmoother creates a Smoother. Alpha outside (0,1] disables smoothing.
func NewSmoother(alpha float64) *Smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return &Smoother{alpha: alpha}
}

// Enabled reports whether samples are actually smoothed.
func (s *Smoother) Enabled() bool {
	return s != nil && s.alpha < 1
}

// Apply returns the smoothed point and stores it as the new state.
func (s *Smoother) Apply(p Point) Point {
	if s == nil {
		return p
	}
	if !s.primed {
		s.last = p
		s.primed = true
		return p
	}
	s.last = Point{
		X: s.alpha*p.X + (1-s.alpha)*s.last.X,
		Y: s.alpha*p.Y + (1-s.alpha)*s.last.Y,
	}
	return s.last
}

// Reset discards the smoothing history, e.g. after the face was lost.
func (s *Smoother) Reset() {
	if s == nil {
		return
	}
	s.primed = false
}
