// ABOUTME: Error taxonomy for webhook submissions.
// ABOUTME: Timeout, HTTP, and parse failures are distinct so the final banner can differ.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrTimeout marks an attempt that exceeded the per-attempt deadline.
// It is wrapped, so classify with errors.Is.
var ErrTimeout = errors.New("request timed out")

// HTTPError is a non-2xx response, carrying the status and the body text.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: status %d - %s", e.Status, e.Body)
}

// ParseError is a 2xx response whose body failed to decode as JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// isTimeout reports whether err (possibly wrapped) is a timeout failure.
func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
