package anki

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected   = errors.New("anki: not connected")
	ErrMalformedReply = errors.New("anki: malformed reply")
)

// TransportErrorKind classifies how a round trip failed before the reply
// envelope could be interpreted.
type TransportErrorKind int

const (
	TransportUnreachable TransportErrorKind = iota
	TransportHTTPStatus
	TransportMalformed
)

func (k TransportErrorKind) String() string {
	switch k {
	case TransportHTTPStatus:
		return "http_status"
	case TransportMalformed:
		return "malformed"
	default:
		return "unreachable"
	}
}

// TransportError reports one failed HTTP round trip. Status is only set for
// TransportHTTPStatus.
type TransportError struct {
	Kind   TransportErrorKind
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case TransportHTTPStatus:
		return fmt.Sprintf("endpoint returned HTTP status %d", e.Status)
	case TransportMalformed:
		return fmt.Sprintf("unreadable reply body: %v", e.Err)
	default:
		return fmt.Sprintf("endpoint unreachable: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// CallError is the single caller-facing failure type for Invoke and every
// typed operation built on it. Action always names the remote action that
// failed; Message is human-readable; Err carries the underlying cause when
// the failure happened below the protocol (nil for service-reported errors).
type CallError struct {
	Action  string
	Message string
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("anki: action %q failed: %s", e.Action, e.Message)
}

func (e *CallError) Unwrap() error { return e.Err }

func callErrorf(action string, cause error, format string, args ...any) *CallError {
	return &CallError{
		Action:  action,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}
