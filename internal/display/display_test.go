package display

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/landmark"
)

func TestKeyFromCode(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Key
	}{
		{name: "no key", code: -1, want: KeyNone},
		{name: "q", code: 'q', want: KeyQuit},
		{name: "escape", code: 27, want: KeyQuit},
		{name: "q with modifier bits", code: 0x100000 | 'q', want: KeyQuit},
		{name: "other key", code: 'a', want: KeyNone},
		{name: "upper Q", code: 'Q', want: KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromCode(tt.code); got != tt.want {
				t.Errorf("KeyFromCode(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	snap := landmark.NewFace().Gaze(0.25, 0.75).Build()

	eyes, gaze, ok := Markers(snap, 640, 480)
	if len(eyes) != len(landmark.EyeMarkers) {
		t.Errorf("got %d eye markers, want %d", len(eyes), len(landmark.EyeMarkers))
	}
	if !ok {
		t.Fatal("expected gaze marker")
	}
	if gaze != image.Pt(160, 360) {
		t.Errorf("gaze marker = %v, want (160,360)", gaze)
	}
}

func TestMarkers_Partial(t *testing.T) {
	// Without refined landmarks the iris is missing but the eyelids remain
	snap := landmark.NewFace().Truncate(468).Build()

	eyes, _, ok := Markers(snap, 100, 100)
	if ok {
		t.Error("gaze marker should be absent")
	}
	if len(eyes) != len(landmark.EyeMarkers) {
		t.Errorf("got %d eye markers, want %d", len(eyes), len(landmark.EyeMarkers))
	}

	if eyes, _, ok := Markers(nil, 100, 100); eyes != nil || ok {
		t.Error("nil snapshot should produce no markers")
	}
}

func TestDrawOverlay(t *testing.T) {
	frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()

	DrawOverlay(&frame, landmark.NewFace().Gaze(0.1, 0.1).Build())

	// Green channel of the gaze marker centre
	if got := frame.GetVecbAt(10, 10)[1]; got != 255 {
		t.Errorf("gaze pixel green = %d, want 255", got)
	}

	// Nil snapshot leaves the frame untouched
	blank := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer blank.Close()
	DrawOverlay(&blank, nil)
	if blank.GetVecbAt(5, 5)[1] != 0 {
		t.Error("frame should be unchanged without landmarks")
	}
}

func TestHeadless(t *testing.T) {
	h := NewHeadless()

	if err := h.Show(nil, nil); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if h.PollKey() != KeyNone {
		t.Error("expected no key")
	}

	h.Press(KeyQuit)
	if h.PollKey() != KeyQuit {
		t.Error("expected queued quit key")
	}
	if h.PollKey() != KeyNone {
		t.Error("key should be consumed")
	}

	h.Close()
	if h.Shown() != 1 || !h.Closed() {
		t.Errorf("Shown() = %d, Closed() = %v", h.Shown(), h.Closed())
	}
}

type failingDisplay struct{ Headless }

func (f *failingDisplay) Show(*gocv.Mat, *landmark.Snapshot) error { return errors.New("no window") }

func TestMulti(t *testing.T) {
	a, b := NewHeadless(), NewHeadless()
	b.Press(KeyQuit)
	m := Multi{a, b}

	if err := m.Show(nil, nil); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if m.PollKey() != KeyQuit {
		t.Error("quit from any display should win")
	}
	m.Close()
	if !a.Closed() || !b.Closed() || a.Shown() != 1 || b.Shown() != 1 {
		t.Error("every display should see the frame and the close")
	}

	if err := (Multi{&failingDisplay{}, a}).Show(nil, nil); err == nil {
		t.Error("expected error from failing display")
	}
	if a.Shown() != 2 {
		t.Error("a failing display should not stop the others")
	}
}

func TestJPEGLatch(t *testing.T) {
	l := NewJPEGLatch()
	if data, seq := l.Latest(); data != nil || seq != 0 {
		t.Fatal("new latch should be empty")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := l.Show(&frame, landmark.NeutralFace()); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	data, seq := l.Latest()
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
	// JPEG start-of-image marker
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("latest frame is not a JPEG")
	}

	// The overlay goes onto a copy
	if frame.GetVecbAt(24, 32)[1] != 0 {
		t.Error("Show should not modify the source frame")
	}

	if l.PollKey() != KeyNone {
		t.Error("latch never reports keys")
	}
}
