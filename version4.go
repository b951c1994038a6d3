package sio

import (
	"fmt"

	"github.com/fatih/structs"

	"github.com/siowire/socket.io-client-go/internal/json"
	"github.com/siowire/socket.io-client-go/parser"
)

// version4 implements protocol version 4 (EIO=4): payloads are
// record-separated, the heartbeat is server-driven, and the namespace
// connect may carry authentication data.
type version4 struct{}

func newVersion4() *version4 { return &version4{} }

func (v *version4) defaultOptions() *Options { return defaultOptions() }

func (v *version4) handshake(e *Engine) error {
	if e.transport == TransportWebSocket {
		handshake, headers, err := handshakeOverWebSocket(e, websocketKey16())
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

	packet, err := parser.DecodeSeparated(e.stream.Body())
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

// postHandshake joins the current namespace, sending the configured
// authentication data along.
func (v *version4) postHandshake(e *Engine) error {
	return v.sendPacket(e, messagePacket(sioConnect, e.namespace, v.authPayload(e)))
}

func (v *version4) upgrade(e *Engine) error {
	return performUpgrade(e, websocketKey16())
}

func (v *version4) skipUpgrade(e *Engine) error { return nil }

func (v *version4) changeNamespace(e *Engine, namespace string) (string, error) {
	packet := messagePacket(sioConnect, namespace, v.authPayload(e))
	return string(packet.Build()), v.sendPacket(e, packet)
}

func (v *version4) close(e *Engine) error {
	return v.sendPacket(e, messagePacket(sioDisconnect, e.namespace, ""))
}

func (v *version4) emit(e *Engine, event string, args []any) error {
	payload := make([]any, 0, 1+len(args))
	payload = append(payload, event)
	payload = append(payload, args...)

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return v.sendPacket(e, messagePacket(sioEvent, e.namespace, string(data)))
}

func (v *version4) processPacket(e *Engine, data []byte) (*parser.Packet, error) {
	if e.transport == TransportWebSocket {
		payload, err := parser.Unframe(data)
		if err != nil {
			return nil, err
		}
		data = payload
	}
	packet, err := parser.DecodeSeparated(data)
	if err != nil {
		return nil, err
	}

	// The server drives the heartbeat: every PING gets an immediate
	// PONG echoing its data.
	if ping := parser.Peek(parser.ProtoPing, packet); ping != nil {
		pong := &parser.Packet{Proto: parser.ProtoPong, Data: ping.Data}
		if err = v.sendPacket(e, pong); err != nil {
			return nil, err
		}
	}
	return packet, nil
}

func (v *version4) keepAlive(e *Engine) {}

func (v *version4) matchEvent(e *Engine, p *parser.Packet, event string) *parser.Packet {
	return matchEventPacket(e, p, event)
}

func (v *version4) sendPacket(e *Engine, p *parser.Packet) error {
	if e.transport == TransportWebSocket {
		_, err := e.writeFrame(p.Build())
		return err
	}
	return e.post(parser.EncodeSeparated(p))
}

// authPayload renders Options.Auth for the namespace connect packet.
// Structs go through a map so json field names follow the wire
// convention of the configured tags.
func (v *version4) authPayload(e *Engine) string {
	auth := e.opts.Auth
	if auth == nil {
		return ""
	}
	if structs.IsStruct(auth) {
		auth = structs.Map(auth)
	}
	data, err := json.Marshal(auth)
	if err != nil {
		e.debug.Log("authPayload", "discarding auth data", err)
		return ""
	}
	return string(data)
}
