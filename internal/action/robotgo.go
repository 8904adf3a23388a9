package action

import (
	"math"

	"github.com/go-vgo/robotgo"
)

// RobotgoAutomator drives the local pointer through robotgo.
// robotgo calls report no errors, so every action succeeds once it returns.
type RobotgoAutomator struct{}

// NewRobotgoAutomator creates a RobotgoAutomator.
func NewRobotgoAutomator() *RobotgoAutomator {
	return &RobotgoAutomator{}
}

// MoveTo moves the pointer to the nearest whole pixel.
func (a *RobotgoAutomator) MoveTo(x, y float64) error {
	robotgo.Move(int(math.Round(x)), int(math.Round(y)))
	return nil
}

// Click presses the left button.
func (a *RobotgoAutomator) Click() error {
	robotgo.Click("left")
	return nil
}

// RightClick presses the right button.
func (a *RobotgoAutomator) RightClick() error {
	robotgo.Click("right")
	return nil
}

// Scroll scrolls vertically; positive is up.
func (a *RobotgoAutomator) Scroll(delta int) error {
	robotgo.Scroll(0, delta)
	return nil
}

// ScreenSize returns the main display size.
func (a *RobotgoAutomator) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, ErrInvalidScreen
	}
	return w, h, nil
}
