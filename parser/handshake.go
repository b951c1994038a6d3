package parser

import (
	"fmt"
	"time"

	"github.com/siowire/socket.io-client-go/internal/json"
)

// Handshake carries the fields of the OPEN packet the server answers
// a handshake request with.
type Handshake struct {
	SID          string   `json:"sid" mapstructure:"sid"`
	Upgrades     []string `json:"upgrades" mapstructure:"upgrades"`
	PingInterval int64    `json:"pingInterval" mapstructure:"pingInterval"`
	PingTimeout  int64    `json:"pingTimeout" mapstructure:"pingTimeout"`
	MaxPayload   int64    `json:"maxPayload,omitempty" mapstructure:"maxPayload"`
}

func (h *Handshake) GetPingInterval() time.Duration {
	return time.Duration(h.PingInterval) * time.Millisecond
}

func (h *Handshake) GetPingTimeout() time.Duration {
	return time.Duration(h.PingTimeout) * time.Millisecond
}

// ParseHandshake decodes the body of an OPEN packet into the raw
// handshake map. Validation of required fields is up to the protocol
// version that requested the handshake.
func ParseHandshake(p *Packet) (map[string]any, error) {
	if p.Proto != ProtoOpen {
		return nil, fmt.Errorf("parser: packet with a type of OPEN was expected, got %s", p.Proto)
	}
	m := make(map[string]any)
	err := json.Unmarshal(p.Data, &m)
	if err != nil {
		return nil, err
	}
	return m, nil
}
