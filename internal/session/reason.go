// Package session runs the frame loop: one session from the first frame to a
// terminal reason, with its statistics, debounce gates and wink memory.
package session

import "fmt"

// Reason is why a session terminated.
type Reason int

const (
	// UserQuitKey means 'q' or Escape was pressed in the preview window.
	UserQuitKey Reason = iota
	// MouthOpenGesture means the user opened their mouth wide.
	MouthOpenGesture
	// SessionTimeout means the session ceiling was exceeded.
	SessionTimeout
	// CaptureFailure means the camera could not deliver a frame.
	CaptureFailure
	// Cancelled means the run context was cancelled, e.g. from the tray or a signal.
	Cancelled
)

var reasonNames = map[Reason]string{
	UserQuitKey:      "UserQuitKey",
	MouthOpenGesture: "MouthOpenGesture",
	SessionTimeout:   "SessionTimeout",
	CaptureFailure:   "CaptureFailure",
	Cancelled:        "Cancelled",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// ExitCode maps a reason to a process exit status. Only a capture failure is an error.
func (r Reason) ExitCode() int {
	if r == CaptureFailure {
		return 1
	}
	return 0
}
