// Package landmark provides face-mesh landmark types and the detector collaborator
// that turns a camera frame into one face's landmark snapshot.
package landmark

// Face-mesh landmark indices following the MediaPipe refined face mesh convention.
// See: https://github.com/google/mediapipe/blob/master/mediapipe/modules/face_geometry/data/canonical_face_model_uv_visualization.png
const (
	UpperLipInner   = 13
	LowerLipInner   = 14
	LeftEyeLower    = 145
	LeftEyeUpper    = 159
	RightEyeLower   = 374
	RightEyeUpper   = 386
	RightIrisCenter = 477

	// RefinedMeshPoints is the number of points produced with iris refinement enabled.
	RefinedMeshPoints = 478
)

// EyeMarkers are the eyelid landmarks drawn as debug overlays.
var EyeMarkers = []int{LeftEyeLower, LeftEyeUpper, RightEyeLower, RightEyeUpper}

// Point3D represents a normalized landmark position.
// X and Y are relative to the image in [0,1]; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Snapshot is one frame's worth of face landmarks. It is read-only once produced.
type Snapshot struct {
	Points []Point3D `json:"points"`
}

// NewSnapshot wraps points into a Snapshot.
func NewSnapshot(points []Point3D) *Snapshot {
	return &Snapshot{Points: points}
}

// At returns the landmark at index i.
// ok is false when the snapshot is nil or the index is not tracked,
// so callers can treat the signal as absent instead of failing the frame.
func (s *Snapshot) At(i int) (Point3D, bool) {
	if s == nil || i < 0 || i >= len(s.Points) {
		return Point3D{}, false
	}
	return s.Points[i], true
}

// Len returns the number of tracked landmarks.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// VerticalGap returns lower.Y - upper.Y for two landmark indices.
// ok is false if either landmark is missing.
func (s *Snapshot) VerticalGap(lower, upper int) (float64, bool) {
	lo, ok := s.At(lower)
	if !ok {
		return 0, false
	}
	up, ok := s.At(upper)
	if !ok {
		return 0, false
	}
	return lo.Y - up.Y, true
}
