// ABOUTME: Selection state for the agent picker.
// ABOUTME: Tracks the chosen agent, the in-flight flag, and the hovered tooltip.

package agent

import "log/slog"

// State holds the picker's observable state.
type State struct {
	Selected    string
	IsLoading   bool
	ShowTooltip string
}

// Controller owns the agent selection state. Reads get value copies.
type Controller struct {
	state State
}

// NewController starts with the given agent selected, defaulting to auto
// when the key is empty or unknown.
func NewController(initial string) *Controller {
	if !Known(initial) {
		initial = DefaultKey
	}
	return &Controller{state: State{Selected: initial}}
}

// Select changes the chosen agent. Unknown keys are ignored.
func (c *Controller) Select(key string) {
	if !Known(key) {
		return
	}
	slog.Debug("agent changed", "from", c.state.Selected, "to", key)
	c.state.Selected = key
}

// SetLoading flips the in-flight indicator.
func (c *Controller) SetLoading(loading bool) {
	c.state.IsLoading = loading
}

// SetTooltip records which agent's tooltip is showing; empty hides it.
func (c *Controller) SetTooltip(key string) {
	c.state.ShowTooltip = key
}

// State returns a copy of the current picker state.
func (c *Controller) State() State {
	return c.state
}
