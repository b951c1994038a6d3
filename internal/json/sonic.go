//go:build sio_sonic

// Build with -tags sio_sonic to serialize with bytedance/sonic
// (amd64 only, noticeably faster on large event payloads).
package json

import (
	stdjson "encoding/json"

	"github.com/bytedance/sonic"
)

var (
	Marshal    = sonic.ConfigStd.Marshal
	Unmarshal  = sonic.ConfigStd.Unmarshal
	NewDecoder = sonic.ConfigStd.NewDecoder
	NewEncoder = sonic.ConfigStd.NewEncoder
)

type RawMessage = stdjson.RawMessage
