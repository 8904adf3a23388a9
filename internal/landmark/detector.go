package landmark

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the face mesh service script cannot be located.
var ErrServiceNotFound = errors.New("face_mesh_service.py not found")

// ErrServiceUnavailable is returned while a failed face mesh service waits to be restarted.
var ErrServiceUnavailable = errors.New("face mesh service unavailable")

// Detector defines the interface for face landmark extraction.
type Detector interface {
	// Detect analyzes a video frame and returns the primary face's landmarks.
	// Returns nil if no face is detected.
	Detect(frame *gocv.Mat) (*Snapshot, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face landmark extraction.
type Config struct {
	// RefineLandmarks enables iris refinement (478 points instead of 468).
	RefineLandmarks bool `yaml:"refine_landmarks"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// ScriptPath overrides the service script location.
	ScriptPath string `yaml:"script_path"`

	// Python overrides the interpreter used to run the service.
	Python string `yaml:"python"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		RefineLandmarks: true,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
