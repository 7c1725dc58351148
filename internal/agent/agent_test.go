// ABOUTME: Tests for the agent registry and selection controller.
// ABOUTME: Verifies lookup fallback, cycling order, and state transitions.

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, "Reasoning", Lookup("reasoning").Label)
	assert.Equal(t, "Strategic analysis & logical reasoning", Lookup("reasoning").Tooltip)

	// Unknown keys fall back to auto.
	assert.Equal(t, DefaultKey, Lookup("nonsense").Key)
}

func TestKeysOrder(t *testing.T) {
	assert.Equal(t, []string{"auto", "reasoning", "creative", "research", "data"}, Keys())
}

func TestCycle(t *testing.T) {
	assert.Equal(t, "reasoning", Cycle("auto"))
	assert.Equal(t, "creative", Cycle("reasoning"))
	assert.Equal(t, "auto", Cycle("data"))
	assert.Equal(t, "auto", Cycle("bogus"))
}

func TestControllerSelect(t *testing.T) {
	c := NewController("")
	assert.Equal(t, DefaultKey, c.State().Selected)

	c.Select("research")
	assert.Equal(t, "research", c.State().Selected)

	// Unknown keys leave the selection untouched.
	c.Select("bogus")
	assert.Equal(t, "research", c.State().Selected)
}

func TestControllerLoadingAndTooltip(t *testing.T) {
	c := NewController("creative")

	c.SetLoading(true)
	assert.True(t, c.State().IsLoading)
	c.SetLoading(false)
	assert.False(t, c.State().IsLoading)

	c.SetTooltip("data")
	assert.Equal(t, "data", c.State().ShowTooltip)
	c.SetTooltip("")
	assert.Empty(t, c.State().ShowTooltip)
}
