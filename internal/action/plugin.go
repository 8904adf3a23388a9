package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayusman/nayana/internal/plugin"
)

// pointerActions are the plugin actions a pointer backend must support.
var pointerActions = []string{
	plugin.ActionMove,
	plugin.ActionClick,
	plugin.ActionRightClick,
	plugin.ActionScroll,
	plugin.ActionScreenSize,
}

// PluginAutomator forwards pointer actions to an automation plugin.
type PluginAutomator struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// NewPluginAutomator looks up the named plugin and checks it supports every pointer action.
func NewPluginAutomator(mgr *plugin.Manager, name string, executor *plugin.Executor) (*PluginAutomator, error) {
	p, err := mgr.Lookup(name, pointerActions...)
	if err != nil {
		return nil, err
	}
	return &PluginAutomator{plugin: p, executor: executor}, nil
}

func (a *PluginAutomator) call(action string, params any) (*plugin.Response, error) {
	req := &plugin.Request{Action: action}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", action, err)
		}
		req.Params = data
	}
	return a.executor.Call(context.Background(), a.plugin, req)
}

// MoveTo moves the pointer.
func (a *PluginAutomator) MoveTo(x, y float64) error {
	_, err := a.call(plugin.ActionMove, plugin.MoveParams{X: x, Y: y})
	return err
}

// Click presses the left button.
func (a *PluginAutomator) Click() error {
	_, err := a.call(plugin.ActionClick, nil)
	return err
}

// RightClick presses the right button.
func (a *PluginAutomator) RightClick() error {
	_, err := a.call(plugin.ActionRightClick, nil)
	return err
}

// Scroll scrolls vertically; positive is up.
func (a *PluginAutomator) Scroll(delta int) error {
	_, err := a.call(plugin.ActionScroll, plugin.ScrollParams{Delta: delta})
	return err
}

// ScreenSize asks the plugin for the display size.
func (a *PluginAutomator) ScreenSize() (int, int, error) {
	resp, err := a.call(plugin.ActionScreenSize, nil)
	if err != nil {
		return 0, 0, err
	}
	var size plugin.ScreenSize
	if err := json.Unmarshal(resp.Data, &size); err != nil {
		return 0, 0, fmt.Errorf("parse screen size: %w", err)
	}
	if size.Width <= 0 || size.Height <= 0 {
		return 0, 0, ErrInvalidScreen
	}
	return size.Width, size.Height, nil
}
