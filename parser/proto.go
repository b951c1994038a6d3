package parser

import "fmt"

// Proto is the Engine.IO packet type discriminator.
type Proto byte

const (
	ProtoOpen Proto = iota
	ProtoClose
	ProtoPing
	ProtoPong
	ProtoMessage
	ProtoUpgrade
	ProtoNoop

	protoMin = ProtoOpen
	protoMax = ProtoNoop
)

var errInvalidProto = fmt.Errorf("parser: invalid packet type")

func (p Proto) ToChar() byte {
	return byte(p) + '0'
}

func (p *Proto) FromChar(b byte) error {
	if b < '0' || b > byte('0'+protoMax) {
		return errInvalidProto
	}
	*p = Proto(b - '0')
	return nil
}

func (p Proto) String() string {
	switch p {
	case ProtoOpen:
		return "open"
	case ProtoClose:
		return "close"
	case ProtoPing:
		return "ping"
	case ProtoPong:
		return "pong"
	case ProtoMessage:
		return "message"
	case ProtoUpgrade:
		return "upgrade"
	case ProtoNoop:
		return "noop"
	}
	return "invalid"
}
