// Package main provides a pointer automation plugin for X11.
// It moves, clicks and scrolls through the xdotool command.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ayusman/nayana/internal/plugin"
)

// unitsPerClick converts scroll units into X11 wheel button presses.
const unitsPerClick = 60

// actionHandler handles one action and returns the response data, if any.
type actionHandler func(params json.RawMessage) (any, error)

var actionHandlers = map[string]actionHandler{
	plugin.ActionMove:       move,
	plugin.ActionClick:      func(json.RawMessage) (any, error) { return nil, xdotool("click", "1") },
	plugin.ActionRightClick: func(json.RawMessage) (any, error) { return nil, xdotool("click", "3") },
	plugin.ActionScroll:     scroll,
	plugin.ActionScreenSize: screenSize,
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(nil, fmt.Errorf("failed to decode request: %w", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(nil, fmt.Errorf("unknown action: %s", req.Action))
		return
	}

	data, err := handler(req.Params)
	if err != nil {
		err = fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	writeResponse(data, err)
}

func writeResponse(data any, err error) {
	resp := plugin.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	if data != nil {
		if raw, merr := json.Marshal(data); merr == nil {
			resp.Data = raw
		}
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func move(params json.RawMessage) (any, error) {
	var p plugin.MoveParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	x := strconv.Itoa(int(p.X + 0.5))
	y := strconv.Itoa(int(p.Y + 0.5))
	return nil, xdotool("mousemove", x, y)
}

func scroll(params json.RawMessage) (any, error) {
	var p plugin.ScrollParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	button, clicks := wheelClicks(p.Delta)
	if clicks == 0 {
		return nil, nil
	}
	return nil, xdotool("click", "--repeat", strconv.Itoa(clicks), button)
}

// wheelClicks maps a scroll delta to an X11 wheel button (4 up, 5 down)
// and a press count. Any non-zero delta presses at least once.
func wheelClicks(delta int) (button string, clicks int) {
	button = "4"
	if delta < 0 {
		button = "5"
		delta = -delta
	}
	if delta == 0 {
		return button, 0
	}
	clicks = delta / unitsPerClick
	if clicks == 0 {
		clicks = 1
	}
	return button, clicks
}

func screenSize(json.RawMessage) (any, error) {
	out, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return nil, err
	}
	return parseGeometry(string(out))
}

// parseGeometry parses the "WIDTH HEIGHT" output of getdisplaygeometry.
func parseGeometry(s string) (plugin.ScreenSize, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return plugin.ScreenSize{}, fmt.Errorf("unexpected geometry %q", s)
	}
	w, err := strconv.Atoi(fields[0])
	if err != nil {
		return plugin.ScreenSize{}, fmt.Errorf("invalid width: %w", err)
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return plugin.ScreenSize{}, fmt.Errorf("invalid height: %w", err)
	}
	return plugin.ScreenSize{Width: w, Height: h}, nil
}

func xdotool(args ...string) error {
	output, err := exec.Command("xdotool", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
