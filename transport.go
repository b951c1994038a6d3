package sio

// Transport names a wire transport. Exactly one transport is active
// on an engine at a time.
type Transport string

const (
	TransportPolling   Transport = "polling"
	TransportWebSocket Transport = "websocket"
)

func (t Transport) valid() bool {
	return t == TransportPolling || t == TransportWebSocket
}

func (t Transport) String() string { return string(t) }
