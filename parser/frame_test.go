package parser

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maskPayload(key [4]byte, payload []byte) []byte {
	masked := make([]byte, len(payload))
	for i, b := range payload {
		masked[i] = b ^ key[i&3]
	}
	return masked
}

func TestUnframeShortLength(t *testing.T) {
	frame := append([]byte{0x81, 5}, []byte("4hola")...)
	payload, err := Unframe(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte("4hola"), payload)
}

func TestUnframeMasked(t *testing.T) {
	key := [4]byte{0xde, 0xad, 0xbe, 0xef}
	data := []byte("3probe")

	frame := []byte{0x81, byte(len(data)) | 0x80}
	frame = append(frame, key[:]...)
	frame = append(frame, maskPayload(key, data)...)

	payload, err := Unframe(frame)
	require.NoError(t, err)
	assert.Equal(t, data, payload)
}

func TestUnframeExtended16(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i)
	}

	frame := []byte{0x81, 126, 0x01, 0x2c} // 300
	frame = append(frame, data...)

	payload, err := Unframe(frame)
	require.NoError(t, err)
	assert.Equal(t, data, payload)
}

func TestUnframeExtended64(t *testing.T) {
	data := make([]byte, 70000)
	frame := []byte{0x81, 127}
	var ext [8]byte
	binary.BigEndian.PutUint64(ext[:], uint64(len(data)))
	frame = append(frame, ext[:]...)
	frame = append(frame, data...)

	payload, err := Unframe(frame)
	require.NoError(t, err)
	assert.Len(t, payload, 70000)
}

func TestUnframeTruncated(t *testing.T) {
	truncated := [][]byte{
		nil,
		{0x81},
		{0x81, 126},
		{0x81, 126, 0x01},
		{0x81, 127, 0, 0, 0, 0},
		{0x81, 0x80 | 3, 0xde, 0xad},      // mask key cut short
		{0x81, 5, '4', 'h', 'o'},          // payload cut short
	}
	for _, frame := range truncated {
		_, err := Unframe(frame)
		assert.Equal(t, errShortFrame, err, "frame %v", frame)
	}
}
