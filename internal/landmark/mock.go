package landmark

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued snapshots are returned in order; once drained the last one repeats.
type MockDetector struct {
	queue []*Snapshot
	last  *Snapshot
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetSnapshot makes every subsequent Detect call return s.
func (m *MockDetector) SetSnapshot(s *Snapshot) {
	m.queue = nil
	m.last = s
}

// Queue appends snapshots to be returned by successive Detect calls.
// A nil entry simulates a frame without a face.
func (m *MockDetector) Queue(snapshots ...*Snapshot) {
	m.queue = append(m.queue, snapshots...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns the number of Detect calls made.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the next queued snapshot or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Snapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		m.last = m.queue[0]
		m.queue = m.queue[1:]
	}
	return m.last, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// NeutralFace returns a preset refined-mesh snapshot of a relaxed face looking at the
// centre of the image: mouth closed, both eyes open, head level.
func NeutralFace() *Snapshot {
	points := make([]Point3D, RefinedMeshPoints)
	for i := range points {
		points[i] = Point3D{X: 0.5, Y: 0.5}
	}

	points[UpperLipInner] = Point3D{X: 0.50, Y: 0.700}
	points[LowerLipInner] = Point3D{X: 0.50, Y: 0.710}

	points[LeftEyeUpper] = Point3D{X: 0.40, Y: 0.400}
	points[LeftEyeLower] = Point3D{X: 0.40, Y: 0.420}
	points[RightEyeUpper] = Point3D{X: 0.60, Y: 0.400}
	points[RightEyeLower] = Point3D{X: 0.60, Y: 0.420}

	points[RightIrisCenter] = Point3D{X: 0.5, Y: 0.5}

	return NewSnapshot(points)
}

// FaceBuilder derives variations of NeutralFace for tests and fixtures.
type FaceBuilder struct {
	points []Point3D
}

// NewFace starts a builder from NeutralFace.
func NewFace() *FaceBuilder {
	return &FaceBuilder{points: NeutralFace().Points}
}

// MouthGap sets lowerLip.Y - upperLip.Y.
func (b *FaceBuilder) MouthGap(gap float64) *FaceBuilder {
	b.points[LowerLipInner].Y = b.points[UpperLipInner].Y + gap
	return b
}

// LeftEyeGap sets lowerLid.Y - upperLid.Y for the left eye.
func (b *FaceBuilder) LeftEyeGap(gap float64) *FaceBuilder {
	b.points[LeftEyeUpper].Y = b.points[LeftEyeLower].Y - gap
	return b
}

// RightEyeGap sets lowerLid.Y - upperLid.Y for the right eye.
func (b *FaceBuilder) RightEyeGap(gap float64) *FaceBuilder {
	b.points[RightEyeUpper].Y = b.points[RightEyeLower].Y - gap
	return b
}

// Tilt moves the right eye so that rightEyeLower.Y - leftEyeLower.Y equals tilt.
// The right eye keeps its lid gap.
func (b *FaceBuilder) Tilt(tilt float64) *FaceBuilder {
	gap := b.points[RightEyeLower].Y - b.points[RightEyeUpper].Y
	b.points[RightEyeLower].Y = b.points[LeftEyeLower].Y + tilt
	b.points[RightEyeUpper].Y = b.points[RightEyeLower].Y - gap
	return b
}

// Gaze places the iris centre at (x, y).
func (b *FaceBuilder) Gaze(x, y float64) *FaceBuilder {
	b.points[RightIrisCenter] = Point3D{X: x, Y: y}
	return b
}

// Truncate keeps only the first n points, simulating partial tracking.
func (b *FaceBuilder) Truncate(n int) *FaceBuilder {
	if n < len(b.points) {
		b.points = b.points[:n]
	}
	return b
}

// Build returns the snapshot.
func (b *FaceBuilder) Build() *Snapshot {
	points := make([]Point3D, len(b.points))
	copy(points, b.points)
	return NewSnapshot(points)
}
