package landmark

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestSnapshot_At(t *testing.T) {
	face := NeutralFace()

	tests := []struct {
		name   string
		snap   *Snapshot
		index  int
		wantOK bool
	}{
		{name: "first point", snap: face, index: 0, wantOK: true},
		{name: "iris centre", snap: face, index: RightIrisCenter, wantOK: true},
		{name: "past the end", snap: face, index: RefinedMeshPoints, wantOK: false},
		{name: "negative index", snap: face, index: -1, wantOK: false},
		{name: "nil snapshot", snap: nil, index: 0, wantOK: false},
		{name: "partial tracking", snap: NewFace().Truncate(300).Build(), index: RightEyeLower, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.snap.At(tt.index)
			if ok != tt.wantOK {
				t.Errorf("At(%d) ok = %v, want %v", tt.index, ok, tt.wantOK)
			}
		})
	}
}

func TestSnapshot_VerticalGap(t *testing.T) {
	face := NewFace().MouthGap(0.09).Build()

	gap, ok := face.VerticalGap(LowerLipInner, UpperLipInner)
	if !ok {
		t.Fatal("expected lip landmarks to be present")
	}
	if math.Abs(gap-0.09) > epsilon {
		t.Errorf("gap = %f, want 0.09", gap)
	}

	// Missing landmark yields absent, not a panic
	short := NewFace().Truncate(10).Build()
	if _, ok := short.VerticalGap(LowerLipInner, UpperLipInner); ok {
		t.Error("expected gap to be absent when lip landmarks are missing")
	}
}

func TestFaceBuilder(t *testing.T) {
	t.Run("eye gaps", func(t *testing.T) {
		face := NewFace().LeftEyeGap(0.004).RightEyeGap(0.02).Build()

		left, _ := face.VerticalGap(LeftEyeLower, LeftEyeUpper)
		right, _ := face.VerticalGap(RightEyeLower, RightEyeUpper)
		if math.Abs(left-0.004) > epsilon {
			t.Errorf("left gap = %f, want 0.004", left)
		}
		if math.Abs(right-0.02) > epsilon {
			t.Errorf("right gap = %f, want 0.02", right)
		}
	})

	t.Run("tilt keeps right eye open", func(t *testing.T) {
		face := NewFace().Tilt(-0.08).Build()

		tilt, _ := face.VerticalGap(RightEyeLower, LeftEyeLower)
		if math.Abs(tilt+0.08) > epsilon {
			t.Errorf("tilt = %f, want -0.08", tilt)
		}
		gap, _ := face.VerticalGap(RightEyeLower, RightEyeUpper)
		if math.Abs(gap-0.02) > epsilon {
			t.Errorf("right eye gap = %f, want 0.02", gap)
		}
	})

	t.Run("build copies points", func(t *testing.T) {
		b := NewFace()
		first := b.Build()
		b.Gaze(0.9, 0.1)
		if first.Points[RightIrisCenter].X != 0.5 {
			t.Error("earlier snapshot should not change when the builder is modified")
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("primary face only", func(t *testing.T) {
		line := []byte(`{"faces":[{"points":[{"x":0.1,"y":0.2,"z":0.0},{"x":0.3,"y":0.4,"z":0.1}]},{"points":[{"x":0.9,"y":0.9,"z":0}]}]}`)
		snap, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if snap.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", snap.Len())
		}
		p, _ := snap.At(1)
		if p.X != 0.3 || p.Y != 0.4 {
			t.Errorf("point 1 = %+v, want {0.3 0.4}", p)
		}
	})

	t.Run("no face", func(t *testing.T) {
		snap, err := parseResponse([]byte(`{"faces":[]}`))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if snap != nil {
			t.Errorf("expected nil snapshot, got %d points", snap.Len())
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error from service error field")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := parseResponse([]byte(`not json`)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = "/nonexistent/face_mesh_service.py"

	_, err := NewMediaPipeDetector(cfg)
	if !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("error = %v, want ErrServiceNotFound", err)
	}
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()

	// Empty mock reports no face
	snap, err := m.Detect(nil)
	if err != nil || snap != nil {
		t.Fatalf("Detect() = %v, %v; want nil, nil", snap, err)
	}

	first := NeutralFace()
	m.Queue(first, nil)

	if got, _ := m.Detect(nil); got != first {
		t.Error("expected first queued snapshot")
	}
	if got, _ := m.Detect(nil); got != nil {
		t.Error("expected queued nil snapshot")
	}
	// Drained queue repeats the last value
	if got, _ := m.Detect(nil); got != nil {
		t.Error("expected last value to repeat")
	}

	m.SetError(errors.New("boom"))
	if _, err := m.Detect(nil); err == nil {
		t.Error("expected configured error")
	}
	if m.Calls() != 5 {
		t.Errorf("Calls() = %d, want 5", m.Calls())
	}
}
