package sio

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

const (
	frameMaskBit byte = 0x80
	frameLen16   byte = 126
	frameLen64   byte = 127
	frameMaxLen7 byte = 125

	// FIN set, text opcode.
	frameTextHeader byte = 0x81
)

// readFrame reads one complete websocket frame off the stream and
// returns the raw bytes exactly as read (header, extended length,
// mask key and payload) for the packet decoder to interpret. The
// first byte is never inspected; only the second byte's mask flag and
// length code drive how much is consumed.
//
// A nil buffer with a nil error means no frame was available within
// the timeout; the caller retries.
func (e *Engine) readFrame(timeout time.Duration) ([]byte, error) {
	header, err := e.readBytes(2, timeout)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		// No usable second byte.
		return nil, nil
	}

	masked := header[1]&frameMaskBit != 0
	code := header[1] &^ frameMaskBit
	buf := header

	var length uint64
	switch {
	case code <= frameMaxLen7:
		length = uint64(code)
	case code == frameLen16:
		ext, err := e.readBytes(2, timeout)
		if err != nil {
			return nil, err
		}
		if len(ext) < 2 {
			return nil, nil
		}
		v := binary.BigEndian.Uint16(ext)
		if v == 0 {
			return nil, ErrBrokenFrame
		}
		length = uint64(v)
		buf = append(buf, ext...)
	default:
		if strconv.IntSize < 64 {
			return nil, Err64BitLength
		}
		ext, err := e.readBytes(8, timeout)
		if err != nil {
			return nil, err
		}
		if len(ext) < 8 {
			return nil, nil
		}
		length = frameLength64(ext)
		buf = append(buf, ext...)
	}

	if masked {
		// Only consumed here to keep framing aligned; unmasking is
		// the decoder's job.
		key, err := e.readBytes(4, timeout)
		if err != nil {
			return nil, err
		}
		if len(key) < 4 {
			return nil, nil
		}
		buf = append(buf, key...)
	}

	payload, err := e.readBytes(int(length), timeout)
	if err != nil {
		return nil, err
	}
	buf = append(buf, payload...)
	return buf, nil
}

// frameLength64 assembles the 8-byte extended length from its two
// big-endian 32-bit halves.
func frameLength64(ext []byte) uint64 {
	high := uint64(binary.BigEndian.Uint32(ext[:4]))
	low := uint64(binary.BigEndian.Uint32(ext[4:8]))
	return high<<32 | low
}

// writeFrame writes payload as one masked text frame.
func (e *Engine) writeFrame(payload []byte) (int, error) {
	return e.write(encodeFrame(payload))
}

func encodeFrame(payload []byte) []byte {
	b := make([]byte, 0, len(payload)+14)
	b = append(b, frameTextHeader)

	switch l := len(payload); {
	case l <= int(frameMaxLen7):
		b = append(b, byte(l)|frameMaskBit)
	case l <= 0xffff:
		b = append(b, frameLen16|frameMaskBit, byte(l>>8), byte(l))
	default:
		b = append(b, frameLen64|frameMaskBit)
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], uint64(l))
		b = append(b, ext[:]...)
	}

	var key [4]byte
	rand.Read(key[:])
	b = append(b, key[:]...)
	for i, p := range payload {
		b = append(b, p^key[i&3])
	}
	return b
}
