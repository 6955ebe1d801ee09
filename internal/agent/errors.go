package agent

import (
	"errors"
	"fmt"

	"github.com/clawd-xsl/android-remote/internal/capture"
	"github.com/clawd-xsl/android-remote/internal/session"
)

var (
	// ErrAutomationUnavailable means the accessibility service is not
	// connected.
	ErrAutomationUnavailable = errors.New("accessibility service not enabled")

	// ErrNoActiveWindow means the accessibility service is connected but
	// no window is active.
	ErrNoActiveWindow = errors.New("no active window")

	// ErrStaleAddress means a node address is not part of the latest
	// snapshot.
	ErrStaleAddress = errors.New("node address not in the latest snapshot")

	// ErrNoMatch means no node in a fresh snapshot matched a text query.
	ErrNoMatch = errors.New("no node matches")

	// ErrAmbiguousMatch means several nodes matched a text query.
	ErrAmbiguousMatch = errors.New("several nodes match")

	// Capture errors, re-exported so callers depend on one package.
	ErrNotGranted     = session.ErrNotGranted
	ErrCaptureTimeout = capture.ErrTimeout
	ErrCaptureFailed  = capture.ErrFailed
)

// SessionLostError is session.SessionLostError.
type SessionLostError = session.SessionLostError

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing '%s' parameter", e.Field)
}

func missing(field string) error { return &ValidationError{Field: field} }
