package sio

import (
	"fmt"

	"github.com/siowire/socket.io-client-go/parser"
)

// protocol supplies the protocol-version-specific behavior of the
// engine: handshake and payload formats, upgrade negotiation,
// heartbeat direction and namespace/event addressing. The engine is
// composed with exactly one protocol value, selected by
// Options.Version.
type protocol interface {
	defaultOptions() *Options

	// handshake establishes the session over the configured
	// transport and stores it on the engine.
	handshake(e *Engine) error

	// postHandshake runs right after a successful handshake, before
	// any upgrade decision.
	postHandshake(e *Engine) error

	// upgrade switches the established session to websocket in
	// place.
	upgrade(e *Engine) error

	// skipUpgrade runs instead of upgrade when the session stays on
	// its initial transport.
	skipUpgrade(e *Engine) error

	// changeNamespace announces a namespace switch to the server and
	// returns the message that was sent.
	changeNamespace(e *Engine, namespace string) (string, error)

	// close performs the protocol-level goodbye before the engine
	// tears its state down.
	close(e *Engine) error

	emit(e *Engine, event string, args []any) error

	// processPacket turns bytes retrieved by drain into a packet,
	// answering protocol-level messages (pings) on the way.
	processPacket(e *Engine, data []byte) (*parser.Packet, error)

	// keepAlive runs on every read iteration. Versions with
	// client-driven heartbeats send their pings here.
	keepAlive(e *Engine)

	// matchEvent returns the packet carrying event addressed to the
	// engine's current namespace, or nil.
	matchEvent(e *Engine, p *parser.Packet, event string) *parser.Packet
}

func protocolForVersion(version int) (protocol, error) {
	switch version {
	case 3:
		return newVersion3(), nil
	case 4:
		return newVersion4(), nil
	}
	return nil, fmt.Errorf("sio: unsupported protocol version: %d", version)
}
