// Package plugin discovers and runs automation helper executables.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// Each call starts the executable, writes one JSON Request to its stdin and
// reads one JSON Response from its stdout.
package plugin

import "encoding/json"

// Pointer actions understood by automation plugins.
const (
	ActionMove       = "move"
	ActionClick      = "click"
	ActionRightClick = "right-click"
	ActionScroll     = "scroll"
	ActionScreenSize = "screen-size"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// MoveParams are the params of ActionMove.
type MoveParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScrollParams are the params of ActionScroll. Positive scrolls up.
type ScrollParams struct {
	Delta int `json:"delta"`
}

// ScreenSize is the data of a successful ActionScreenSize response.
type ScreenSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
