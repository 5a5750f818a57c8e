// Package apperr implements the client's error taxonomy: ValidationError,
// ConnectionError, ProtocolError, ServerDisconnect, SpectatorMisuse and
// InternalAssertion. Each is a distinct exported type so callers can
// errors.As to the concrete kind while github.com/pkg/errors preserves the
// originating stack across the reader/dispatcher boundary.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError reports bad caller input: malformed lobby code, unknown
// region, out-of-range impostor count, unparseable custom server address.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.cause }

// ConnectionError reports a transport-level failure: connect timeout,
// receive timeout, or a socket closed out from under the session.
type ConnectionError struct {
	Op    string
	cause error
}

func NewConnectionError(op string, cause error) *ConnectionError {
	return &ConnectionError{Op: op, cause: errors.Wrap(cause, op)}
}

func (e *ConnectionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("connection: %s: %v", e.Op, e.cause)
	}
	return fmt.Sprintf("connection: %s", e.Op)
}

func (e *ConnectionError) Unwrap() error { return e.cause }

// ProtocolError reports a decode failure for a recognized tag. Unknown tags
// are logged at warn level by the codec and are never raised as errors.
type ProtocolError struct {
	Tag   string
	cause error
}

func NewProtocolError(tag string, cause error) *ProtocolError {
	return &ProtocolError{Tag: tag, cause: errors.Wrapf(cause, "decode %s", tag)}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %v", e.cause)
}

func (e *ProtocolError) Unwrap() error { return e.cause }

// ServerDisconnect carries the reason (and optional custom text) a server
// gave for an inbound Disconnect frame, or a failed JoinGame response.
type ServerDisconnect struct {
	Reason     uint32
	ReasonName string
	Custom     string
}

func NewServerDisconnect(reason uint32, reasonName, custom string) *ServerDisconnect {
	return &ServerDisconnect{Reason: reason, ReasonName: reasonName, Custom: custom}
}

func (e *ServerDisconnect) Error() string {
	if e.Custom != "" {
		return fmt.Sprintf("server disconnect: %s: %s", e.ReasonName, e.Custom)
	}
	return fmt.Sprintf("server disconnect: %s", e.ReasonName)
}

// SpectatorMisuse reports an attempt to chat or move while in spectator
// mode.
type SpectatorMisuse struct {
	Op string
}

func NewSpectatorMisuse(op string) *SpectatorMisuse {
	return &SpectatorMisuse{Op: op}
}

func (e *SpectatorMisuse) Error() string {
	return fmt.Sprintf("spectator misuse: cannot %s while spectating", e.Op)
}

// InternalAssertion reports a broken invariant: an ack for an unknown id is
// NOT one of these (it is silently ignored per spec), but overflow of the
// reliable-id counter, or an impossible dispatcher state, is.
type InternalAssertion struct {
	Invariant string
}

func NewInternalAssertion(invariant string) *InternalAssertion {
	return &InternalAssertion{Invariant: invariant}
}

func (e *InternalAssertion) Error() string {
	return fmt.Sprintf("internal assertion failed: %s", e.Invariant)
}

// Wrap attaches a stack trace to err using github.com/pkg/errors, returning
// nil if err is nil. It is used internally wherever a bare error crosses a
// package boundary and needs stack context for logging.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}
