package sio

import "errors"

var (
	// Requested transport is not one of polling, websocket.
	ErrInvalidTransport = errors.New("sio: invalid transport")

	// A write was attempted with no stream established.
	ErrNoStream = errors.New("sio: no stream to write to")

	// The stream reported disconnection in the middle of a read.
	ErrConnectionLost = errors.New("sio: connection lost while reading")

	// The stream read hard-failed with no data obtained.
	ErrRead = errors.New("sio: read failed")

	// A websocket frame advertised an extended length of zero.
	ErrBrokenFrame = errors.New("sio: broken websocket frame")

	// A 64-bit length frame arrived on a host whose int cannot
	// represent it.
	Err64BitLength = errors.New("sio: 64-bit frame length not supported on this platform")

	// An operation that needs an established session was attempted
	// while disconnected.
	ErrNotConnected = errors.New("sio: not connected")

	// A bounded wait ran out before a matching event arrived.
	ErrDeadlineExceeded = errors.New("sio: deadline exceeded while waiting for event")
)

// SocketError wraps a stream construction failure, preserving the
// original error.
type SocketError struct {
	err error
}

func (e *SocketError) Error() string {
	return "sio: socket error: " + e.err.Error()
}

func (e *SocketError) Unwrap() error { return e.err }

func wrapSocketError(err error) *SocketError {
	return &SocketError{err: err}
}
