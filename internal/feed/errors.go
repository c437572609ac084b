package feed

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// TransportError is a dial, send or read failure. It always ends the session.
type TransportError struct {
	Op  string
	Err error
}

func newTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: pkgerrors.WithStack(err)}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a handshake message that did not have the expected shape.
type DecodeError struct {
	State State
	Err   error
}

func newDecodeError(state State, err error) *DecodeError {
	return &DecodeError{State: state, Err: pkgerrors.WithStack(err)}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode while %s: %v", e.State, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedDepthError is a request for more levels than the feed serves,
// or for a non-positive display depth.
type UnsupportedDepthError struct {
	Requested int
	Max       int
}

func (e *UnsupportedDepthError) Error() string {
	if e.Requested <= 0 {
		return fmt.Sprintf("unsupported depth %d: display depth must be positive", e.Requested)
	}
	return fmt.Sprintf("unsupported depth %d: feed serves at most %d levels", e.Requested, e.Max)
}
