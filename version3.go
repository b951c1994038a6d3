package sio

import (
	"fmt"

	"github.com/siowire/socket.io-client-go/internal/json"
	"github.com/siowire/socket.io-client-go/parser"
)

// version3 implements protocol version 3 (EIO=3): polling payloads
// are length-prefixed, the heartbeat is client-driven, and the
// websocket nonce is the legacy SHA-1-derived shape.
type version3 struct{}

func newVersion3() *version3 { return &version3{} }

func (v *version3) defaultOptions() *Options { return defaultOptions() }

func (v *version3) handshake(e *Engine) error {
	if e.transport == TransportWebSocket {
		handshake, headers, err := handshakeOverWebSocket(e, websocketKey20())
		if err != nil {
			return err
		}
		if err = validateHandshake(handshake); err != nil {
			return err
		}
		return e.storeSession(handshake, headers)
	}

	if err := e.createStream(); err != nil {
		return err
	}
	if err := e.poll(); err != nil {
		return err
	}
	if e.stream.Status() != 200 {
		return fmt.Errorf("sio: handshake failed with status %d", e.stream.Status())
	}

	packet, err := parser.DecodeLengthPrefixed(e.stream.Body())
	if err != nil {
		return err
	}
	open := parser.Peek(parser.ProtoOpen, packet)
	if open == nil {
		return fmt.Errorf("sio: handshake response carried no OPEN packet")
	}
	handshake, err := parser.ParseHandshake(open)
	if err != nil {
		return err
	}
	if err = validateHandshake(handshake); err != nil {
		return err
	}
	return e.storeSession(handshake, e.stream.HeaderLines())
}

// The server connects the default namespace on its own under this
// version; nothing to announce.
func (v *version3) postHandshake(e *Engine) error { return nil }

func (v *version3) upgrade(e *Engine) error {
	return performUpgrade(e, websocketKey20())
}

func (v *version3) skipUpgrade(e *Engine) error { return nil }

func (v *version3) changeNamespace(e *Engine, namespace string) (string, error) {
	packet := messagePacket(sioConnect, namespace, "")
	return string(packet.Build()), v.sendPacket(e, packet)
}

func (v *version3) close(e *Engine) error {
	return v.sendPacket(e, messagePacket(sioDisconnect, e.namespace, ""))
}

func (v *version3) emit(e *Engine, event string, args []any) error {
	payload := make([]any, 0, 1+len(args))
	payload = append(payload, event)
	payload = append(payload, args...)

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return v.sendPacket(e, messagePacket(sioEvent, e.namespace, string(data)))
}

func (v *version3) processPacket(e *Engine, data []byte) (*parser.Packet, error) {
	if e.transport == TransportWebSocket {
		payload, err := parser.Unframe(data)
		if err != nil {
			return nil, err
		}
		return parser.Parse(payload)
	}
	return parser.DecodeLengthPrefixed(data)
}

// keepAlive drives the client-side heartbeat: once the session's
// deadline passes, a PING goes out on the websocket. Polling mode
// needs no ping, every poll keeps the session alive.
func (v *version3) keepAlive(e *Engine) {
	if e.session == nil || e.transport != TransportWebSocket {
		return
	}
	if !e.session.NeedsHeartbeat() {
		return
	}
	ping := &parser.Packet{Proto: parser.ProtoPing}
	if _, err := e.writeFrame(ping.Build()); err != nil {
		e.debug.Log("keepAlive", "ping failed", err)
	}
}

func (v *version3) matchEvent(e *Engine, p *parser.Packet, event string) *parser.Packet {
	return matchEventPacket(e, p, event)
}

func (v *version3) sendPacket(e *Engine, p *parser.Packet) error {
	if e.transport == TransportWebSocket {
		_, err := e.writeFrame(p.Build())
		return err
	}
	return e.post(parser.EncodeLengthPrefixed(p))
}
