package session

import (
	"errors"
	"fmt"

	"github.com/tamzrod/profibus-exchange/internal/cifx"
)

var (
	// ErrOpenFailed indicates that no channel handle could be acquired. Fatal to the session.
	ErrOpenFailed = errors.New("session: open failed")

	// ErrNegotiationFailed indicates that host or bus state could not be set. Fatal to the session.
	ErrNegotiationFailed = errors.New("session: negotiation failed")

	// ErrReadFailed indicates a failed cycle read. The session stays usable.
	ErrReadFailed = errors.New("session: read failed")

	// ErrWriteFailed indicates a failed cycle write. The session stays usable.
	ErrWriteFailed = errors.New("session: write failed")
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("session: invalid state transition")

	// ErrNotActive indicates cyclic I/O on a session whose bus is not on.
	ErrNotActive = errors.New("session: bus is not on")

	// ErrInvalidHandle indicates that the driver reported success but returned no handle.
	ErrInvalidHandle = errors.New("session: driver returned an invalid handle")
)

// Error is a session failure with the phase and driver code that caused it.
type Error struct {
	Kind        error // one of the Err*Failed sentinels
	Phase       Phase
	Code        cifx.Code
	Description string
	Err         error
}

func newError(kind error, phase Phase, err error) *Error {
	e := &Error{Kind: kind, Phase: phase, Err: err}

	var de *cifx.Error
	if errors.As(err, &de) {
		e.Code = de.Code
		e.Description = de.Description
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Phase, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ErrorCode returns the low 16 bits of the driver code.
func (e *Error) ErrorCode() uint16 {
	return uint16(uint32(e.Code))
}
