package sio

import (
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/siowire/socket.io-client-go/internal/json"
	"github.com/siowire/socket.io-client-go/parser"
)

// Socket.IO packet types carried inside Engine.IO MESSAGE packets.
const (
	sioConnect    byte = '0'
	sioDisconnect byte = '1'
	sioEvent      byte = '2'
)

// messagePacket builds a MESSAGE packet addressed with the
// "namespace,payload" wire format.
func messagePacket(sioType byte, namespace, data string) *parser.Packet {
	body := concatNamespace(namespace, data, true)
	return &parser.Packet{
		Proto: parser.ProtoMessage,
		Data:  append([]byte{sioType}, body...),
	}
}

// validateHandshake makes sure the server's handshake carries every
// field the session store relies on.
func validateHandshake(handshake map[string]any) error {
	for _, field := range []string{"sid", "pingInterval", "pingTimeout", "upgrades"} {
		if _, ok := handshake[field]; !ok {
			return fmt.Errorf("sio: handshake response is missing %q", field)
		}
	}
	return nil
}

const websocketMagic = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// websocketKey16 is the RFC 6455 nonce: base64 of 16 random bytes.
func websocketKey16() string {
	var nonce [16]byte
	rand.Read(nonce[:])
	return base64.StdEncoding.EncodeToString(nonce[:])
}

// websocketKey20 is the legacy nonce shape: base64 of the 20-byte
// SHA-1 digest of a random nonce.
func websocketKey20() string {
	var nonce [16]byte
	rand.Read(nonce[:])
	digest := sha1.Sum(nonce[:])
	return base64.StdEncoding.EncodeToString(digest[:])
}

func validAccept(key, accept string) bool {
	digest := sha1.Sum([]byte(key + websocketMagic))
	return accept == base64.StdEncoding.EncodeToString(digest[:])
}

// headerValue finds a header among raw "Name: value" lines,
// case-insensitively.
func headerValue(lines []string, name string) string {
	prefix := name + ":"
	for _, line := range lines {
		if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}

// upgradeStream performs the websocket opening handshake on a fresh
// stream. After a 101 the stream speaks raw frames.
func upgradeStream(e *Engine, key, sid string) error {
	// The upgrade always gets a fresh connection; a keep-alive
	// connection that served polling exchanges is left behind.
	if e.stream != nil {
		e.stream.Close()
		e.stream = nil
	}
	if err := e.createStream(); err != nil {
		return err
	}

	headers := append(e.requestHeaders(),
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Key: "+key,
		"Sec-WebSocket-Version: 13",
	)
	if e.opts.Headers.Get("Origin") == "" {
		headers = append(headers, "Origin: *")
	}

	err := e.stream.Request(e.requestURI(TransportWebSocket, sid), headers, nil)
	if err != nil {
		return err
	}
	if e.stream.Status() != 101 {
		return fmt.Errorf("sio: websocket upgrade refused with status %d", e.stream.Status())
	}
	if accept := headerValue(e.stream.HeaderLines(), "Sec-WebSocket-Accept"); !validAccept(key, accept) {
		return fmt.Errorf("sio: websocket upgrade failed: bad Sec-WebSocket-Accept")
	}
	return nil
}

// performUpgrade switches the established session to websocket in
// place: opening handshake with the session id, ping probe, pong
// probe, UPGRADE packet.
func performUpgrade(e *Engine, key string) error {
	if err := upgradeStream(e, key, e.session.ID); err != nil {
		return err
	}
	if err := e.setTransport(TransportWebSocket); err != nil {
		return err
	}

	probe := &parser.Packet{Proto: parser.ProtoPing, Data: []byte("probe")}
	if _, err := e.writeFrame(probe.Build()); err != nil {
		return err
	}

	deadline := time.Now().Add(e.opts.Timeout)
	for {
		if !time.Now().Before(deadline) {
			return fmt.Errorf("sio: upgrade probe timed out")
		}
		buf, err := e.readFrame(time.Until(deadline))
		if err != nil {
			return err
		}
		if buf == nil {
			continue
		}
		payload, err := parser.Unframe(buf)
		if err != nil {
			return err
		}
		p, err := parser.Parse(payload)
		if err != nil {
			return err
		}
		switch {
		case p.Proto == parser.ProtoPong && string(p.Data) == "probe":
			up := &parser.Packet{Proto: parser.ProtoUpgrade}
			_, err = e.writeFrame(up.Build())
			return err
		case p.Proto == parser.ProtoNoop:
			// The server flushes a NOOP through the dying polling
			// cycle; nothing to do with it here.
			continue
		default:
			return fmt.Errorf("sio: unexpected %s packet while probing upgrade", p.Proto)
		}
	}
}

// handshakeOverWebSocket connects with websocket as the initial
// transport: opening handshake without a session id, then the OPEN
// packet arrives as the first frame.
func handshakeOverWebSocket(e *Engine, key string) (map[string]any, []string, error) {
	if err := upgradeStream(e, key, ""); err != nil {
		return nil, nil, err
	}
	upgradeHeaders := e.stream.HeaderLines()

	buf, err := e.readFrame(e.opts.Timeout)
	if err != nil {
		return nil, nil, err
	}
	if buf == nil {
		return nil, nil, fmt.Errorf("sio: no handshake frame received")
	}
	payload, err := parser.Unframe(buf)
	if err != nil {
		return nil, nil, err
	}
	p, err := parser.Parse(payload)
	if err != nil {
		return nil, nil, err
	}
	handshake, err := parser.ParseHandshake(p)
	if err != nil {
		return nil, nil, err
	}
	return handshake, upgradeHeaders, nil
}

// matchEventPacket walks the flattened chain for a MESSAGE packet
// carrying the event, addressed to the engine's current namespace.
func matchEventPacket(e *Engine, p *parser.Packet, event string) *parser.Packet {
	for _, packet := range parser.Flatten(p) {
		if packet.Proto != parser.ProtoMessage {
			continue
		}
		namespace, name, ok := parseEvent(packet.Data)
		if !ok || !e.matchNamespace(namespace) {
			continue
		}
		if name == event {
			return packet
		}
	}
	return nil
}

// parseEvent pulls the namespace and event name out of the socket.io
// part of a MESSAGE packet, e.g. `2/chat,["msg","hi"]`.
func parseEvent(data []byte) (namespace, event string, ok bool) {
	if len(data) < 2 || data[0] != sioEvent {
		return "", "", false
	}
	data = data[1:]

	if data[0] == '/' {
		i := bytes.IndexByte(data, ',')
		if i < 0 {
			return "", "", false
		}
		namespace = string(data[:i])
		data = data[i+1:]
	}

	// An acknowledgement id may sit between the address and the
	// argument array.
	for len(data) > 0 && data[0] >= '0' && data[0] <= '9' {
		data = data[1:]
	}

	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil || len(args) == 0 {
		return "", "", false
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", "", false
	}
	return namespace, name, true
}
