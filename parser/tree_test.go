package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainOf(protos ...Proto) *Packet {
	var head, tail *Packet
	for _, proto := range protos {
		p := &Packet{Proto: proto}
		if head == nil {
			head = p
		} else {
			tail.Next = p
		}
		tail = p
	}
	return head
}

func TestFlattenChain(t *testing.T) {
	head := chainOf(ProtoOpen, ProtoMessage, ProtoNoop)

	flat := Flatten(head)
	require.Len(t, flat, 3)
	assert.Equal(t, ProtoOpen, flat[0].Proto)
	assert.Equal(t, ProtoMessage, flat[1].Proto)
	assert.Equal(t, ProtoNoop, flat[2].Proto)
}

func TestFlattenBarePacket(t *testing.T) {
	p := &Packet{Proto: ProtoMessage}
	flat := Flatten(p)
	require.Len(t, flat, 1)
	assert.Same(t, p, flat[0])
}

func TestFlattenCollection(t *testing.T) {
	flat := Flatten(chainOf(ProtoPing, ProtoPong), chainOf(ProtoMessage))
	require.Len(t, flat, 3)
	assert.Equal(t, ProtoPing, flat[0].Proto)
	assert.Equal(t, ProtoPong, flat[1].Proto)
	assert.Equal(t, ProtoMessage, flat[2].Proto)
}

func TestFlattenNil(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten())
}

func TestPeek(t *testing.T) {
	head := chainOf(ProtoNoop, ProtoMessage, ProtoPong, ProtoMessage)

	found := Peek(ProtoMessage, head)
	require.NotNil(t, found)
	// First match in chain order.
	assert.Same(t, Flatten(head)[1], found)

	assert.Nil(t, Peek(ProtoUpgrade, head))
	assert.Nil(t, Peek(ProtoMessage, nil))
}
