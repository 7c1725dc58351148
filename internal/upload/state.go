// ABOUTME: Upload progress and error state tracked across a submission.
// ABOUTME: IsUploading holds exactly while progress is strictly between 0 and 100.

package upload

import "log/slog"

// State mirrors the in-flight upload indicators shown to the user.
type State struct {
	Progress    int
	Error       string
	IsUploading bool
}

// Controller owns the selected attachment and its upload state.
// All mutation goes through its methods; reads get value copies.
type Controller struct {
	selected *Attachment
	state    State
}

// NewController returns a controller with no file selected.
func NewController() *Controller {
	return &Controller{}
}

// Select validates and records a candidate attachment. On validation failure
// the error is recorded in the state, the previous selection is kept, and
// false is returned.
func (c *Controller) Select(att *Attachment) bool {
	if err := Validate(att.Name, att.Size, att.MediaType); err != nil {
		c.state.Error = err.Error()
		return false
	}
	c.selected = att
	c.state = State{}
	slog.Debug("file selected", "name", att.Name, "size", att.Size)
	return true
}

// Remove clears the current selection and resets the upload state.
func (c *Controller) Remove() {
	c.selected = nil
	c.state = State{}
}

// Selected returns the current attachment, or nil when none is selected.
func (c *Controller) Selected() *Attachment {
	return c.selected
}

// State returns a copy of the current upload state.
func (c *Controller) State() State {
	return c.state
}

// SetProgress updates the progress percentage. IsUploading is derived:
// true only while progress is strictly between 0 and 100.
func (c *Controller) SetProgress(progress int) {
	c.state.Progress = progress
	c.state.IsUploading = progress > 0 && progress < 100
}

// SetError records an error and stops any in-flight indicator.
func (c *Controller) SetError(msg string) {
	c.state.Error = msg
	c.state.IsUploading = false
}

// ClearError drops the recorded error, leaving progress untouched.
func (c *Controller) ClearError() {
	c.state.Error = ""
}
