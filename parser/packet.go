package parser

import (
	"bytes"
	"fmt"
	"strconv"
)

// recordSeparator splits packets inside a protocol v4 payload.
const recordSeparator byte = 0x1e

var (
	errEmptyPacket      = fmt.Errorf("parser: empty packet")
	errMalformedPayload = fmt.Errorf("parser: malformed payload")
)

// Packet is one decoded Engine.IO packet. Payloads that carried
// several packets are chained through Next, in wire order.
//
// Packets are not mutated after decoding.
type Packet struct {
	Proto Proto
	Data  []byte
	Next  *Packet
}

// Parse decodes a single packet: one type character followed by the
// packet data.
func Parse(data []byte) (*Packet, error) {
	if len(data) < 1 {
		return nil, errEmptyPacket
	}
	packet := new(Packet)
	err := packet.Proto.FromChar(data[0])
	if err != nil {
		return nil, err
	}
	packet.Data = data[1:]
	return packet, nil
}

// Build encodes the packet back to its wire form. The Next chain is
// not followed.
func (p *Packet) Build() []byte {
	b := make([]byte, 1+len(p.Data))
	b[0] = p.Proto.ToChar()
	copy(b[1:], p.Data)
	return b
}

// DecodeSeparated decodes a protocol v4 payload: packets joined with
// a 0x1E record separator. A payload without a separator yields a
// single unchained packet.
func DecodeSeparated(data []byte) (*Packet, error) {
	var head, tail *Packet
	for _, part := range bytes.Split(data, []byte{recordSeparator}) {
		packet, err := Parse(part)
		if err != nil {
			return nil, err
		}
		if head == nil {
			head = packet
		} else {
			tail.Next = packet
		}
		tail = packet
	}
	return head, nil
}

// EncodeSeparated is the inverse of DecodeSeparated, following the
// Next chain.
func EncodeSeparated(p *Packet) []byte {
	var b []byte
	for ; p != nil; p = p.Next {
		if b != nil {
			b = append(b, recordSeparator)
		}
		b = append(b, p.Build()...)
	}
	return b
}

// DecodeLengthPrefixed decodes a protocol v3 polling payload:
// "<length>:<packet>" records back to back, where length counts the
// characters of the packet including its type character.
func DecodeLengthPrefixed(data []byte) (*Packet, error) {
	var head, tail *Packet
	for len(data) > 0 {
		sep := bytes.IndexByte(data, ':')
		if sep < 1 {
			return nil, errMalformedPayload
		}
		length, err := strconv.Atoi(string(data[:sep]))
		if err != nil || length < 1 || sep+1+length > len(data) {
			return nil, errMalformedPayload
		}
		packet, err := Parse(data[sep+1 : sep+1+length])
		if err != nil {
			return nil, err
		}
		if head == nil {
			head = packet
		} else {
			tail.Next = packet
		}
		tail = packet
		data = data[sep+1+length:]
	}
	if head == nil {
		return nil, errEmptyPacket
	}
	return head, nil
}

// EncodeLengthPrefixed is the inverse of DecodeLengthPrefixed.
func EncodeLengthPrefixed(p *Packet) []byte {
	var b []byte
	for ; p != nil; p = p.Next {
		built := p.Build()
		b = append(b, strconv.Itoa(len(built))...)
		b = append(b, ':')
		b = append(b, built...)
	}
	return b
}
