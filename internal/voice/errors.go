package voice

import (
	"errors"
	"fmt"
	"strings"
)

// Failures are checked by value at the command boundary, never by walking a
// type hierarchy.
var (
	ErrNotConnected      = errors.New("not connected to any voice channel")
	ErrInvokerNotInVoice = errors.New("you are not connected to a voice channel")
)

// PermissionError names the exact permissions that blocked an operation. It is
// reported verbatim to the invoker and never retried.
type PermissionError struct {
	Missing []string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("missing permission(s): %s", strings.Join(e.Missing, ", "))
}

// ConnectFailure tags transport-level connect/move failures so callers can
// present them as connection problems without inspecting error text.
type ConnectFailure struct {
	Op  string // "connect" or "move"
	Err error
}

func (e *ConnectFailure) Error() string {
	return fmt.Sprintf("unable to %s: %v", e.Op, e.Err)
}

func (e *ConnectFailure) Unwrap() error { return e.Err }

// IsConnectError reports whether err was raised while establishing or moving
// a session, as opposed to validating or submitting speech.
func IsConnectError(err error) bool {
	var cf *ConnectFailure
	var pe *PermissionError
	return errors.As(err, &cf) || errors.As(err, &pe)
}

// ValidationError reports a speech request rejected by content policy. The
// request is discarded.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
