package parser

import (
	"encoding/binary"
	"fmt"
)

const (
	maskBit     byte = 0x80
	lenCode16   byte = 126
	lenCode64   byte = 127
	maxLenCode7 byte = 125
)

var errShortFrame = fmt.Errorf("parser: truncated websocket frame")

// Unframe strips RFC 6455 framing from a complete frame buffer and
// returns the payload, unmasked when the frame carried a mask key.
// The first byte (FIN/RSV/opcode) is not inspected.
func Unframe(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, errShortFrame
	}
	masked := data[1]&maskBit != 0
	code := data[1] &^ maskBit

	offset := 2
	var length uint64
	switch {
	case code <= maxLenCode7:
		length = uint64(code)
	case code == lenCode16:
		if len(data) < offset+2 {
			return nil, errShortFrame
		}
		length = uint64(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
	default:
		if len(data) < offset+8 {
			return nil, errShortFrame
		}
		length = binary.BigEndian.Uint64(data[offset:])
		offset += 8
	}

	var key [4]byte
	if masked {
		if len(data) < offset+4 {
			return nil, errShortFrame
		}
		copy(key[:], data[offset:])
		offset += 4
	}

	if uint64(len(data)-offset) < length {
		return nil, errShortFrame
	}
	payload := data[offset : offset+int(length)]

	if masked {
		unmasked := make([]byte, len(payload))
		for i, b := range payload {
			unmasked[i] = b ^ key[i&3]
		}
		payload = unmasked
	}
	return payload, nil
}
