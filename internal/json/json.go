//go:build !sio_sonic

package json

import (
	stdjson "encoding/json"

	gojson "github.com/goccy/go-json"
)

var (
	Marshal    = gojson.Marshal
	Unmarshal  = gojson.Unmarshal
	NewDecoder = gojson.NewDecoder
	NewEncoder = gojson.NewEncoder
)

type RawMessage = stdjson.RawMessage
