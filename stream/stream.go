// Package stream provides the byte-oriented transport the connection
// engine drives: a single net.Conn that serves both HTTP/1.1
// request/response exchanges (long-polling) and raw reads and writes
// (websocket frames) with per-operation deadlines.
package stream

import (
	"net"
	"time"
)

type Stream interface {
	// Connected reports whether the underlying connection is still
	// usable. The engine derives its own connectivity from this.
	Connected() bool

	// Read reads at most max bytes. A deadline expiry is returned as
	// the underlying timeout error; use IsTimeout to tell it apart
	// from a hard failure.
	Read(max int) ([]byte, error)

	Write(p []byte) (int, error)

	Close() error

	// Request performs one HTTP/1.1 exchange over the connection.
	// The outcome is kept on the stream until the next exchange and
	// is read with Status, Body and HeaderLines.
	Request(uri string, headers []string, opts *RequestOptions) error

	Status() int
	Body() []byte

	// HeaderLines returns the response headers of the last exchange
	// as raw "Name: value" lines, one line per value.
	HeaderLines() []string

	SetTimeout(timeout time.Duration)
}

type RequestOptions struct {
	// HTTP method, GET when empty.
	Method string
	Body   []byte
}

// IsTimeout reports whether err is a deadline expiry rather than a
// hard connection failure.
func IsTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
