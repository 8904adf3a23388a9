// Package display renders camera frames with landmark overlays and reports
// key presses back to the session loop.
package display

import (
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/landmark"
)

// WindowTitle is the title of the preview window.
const WindowTitle = "Eye Controlled Mouse"

// Key is a keyboard event relevant to the session loop.
type Key int

const (
	// KeyNone means no relevant key was pressed.
	KeyNone Key = iota
	// KeyQuit is reported for 'q' or Escape.
	KeyQuit
)

// Raw key codes returned by gocv.Window.WaitKey.
const (
	codeQ   = 'q'
	codeEsc = 27
)

// Display shows annotated frames and polls the keyboard.
type Display interface {
	Show(frame *gocv.Mat, snap *landmark.Snapshot) error
	PollKey() Key
	Close() error
}

var (
	eyeColor  = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	gazeColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// MarkerRadius is the radius in pixels of every landmark marker.
const MarkerRadius = 3

// KeyFromCode maps a WaitKey code to a Key.
func KeyFromCode(code int) Key {
	if code < 0 {
		return KeyNone
	}
	switch code & 0xff {
	case codeQ, codeEsc:
		return KeyQuit
	}
	return KeyNone
}

// Markers returns the pixel positions of the eye markers and the gaze marker
// for a frame of the given size. Landmarks missing from snap are skipped.
func Markers(snap *landmark.Snapshot, width, height int) (eyes []image.Point, gaze image.Point, hasGaze bool) {
	if snap == nil {
		return nil, image.Point{}, false
	}
	for _, idx := range landmark.EyeMarkers {
		if p, ok := snap.At(idx); ok {
			eyes = append(eyes, toPixel(p, width, height))
		}
	}
	if p, ok := snap.At(landmark.RightIrisCenter); ok {
		gaze, hasGaze = toPixel(p, width, height), true
	}
	return eyes, gaze, hasGaze
}

func toPixel(p landmark.Point3D, width, height int) image.Point {
	return image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
}

// DrawOverlay draws the eye and gaze markers onto frame in place.
func DrawOverlay(frame *gocv.Mat, snap *landmark.Snapshot) {
	if frame == nil || frame.Empty() || snap == nil {
		return
	}
	eyes, gaze, hasGaze := Markers(snap, frame.Cols(), frame.Rows())
	for _, pt := range eyes {
		gocv.Circle(frame, pt, MarkerRadius, eyeColor, -1)
	}
	if hasGaze {
		gocv.Circle(frame, gaze, MarkerRadius, gazeColor, -1)
	}
}

// Multi fans frames out to several displays. A quit key from any of them wins.
type Multi []Display

// Show forwards to every display and returns the first error.
func (m Multi) Show(frame *gocv.Mat, snap *landmark.Snapshot) error {
	var errs []error
	for _, d := range m {
		if err := d.Show(frame, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PollKey polls every display.
func (m Multi) PollKey() Key {
	key := KeyNone
	for _, d := range m {
		if k := d.PollKey(); k != KeyNone {
			key = k
		}
	}
	return key
}

// Close closes every display.
func (m Multi) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
