package packet

import (
	"github.com/cooldogedev/prism/protocol"
)

// Packet represents a packet that may be sent over a Conn. It is a tagged union: the ID identifies the
// concrete type, and Marshal describes its fields for both reading and writing.
type Packet interface {
	// ID returns the ID of the packet. Only the lower 10 bits are significant on the wire.
	ID() uint32
	// Marshal encodes or decodes the fields of the packet, depending on the direction of io.
	Marshal(io protocol.IO)
}

// Unknown is a packet whose ID is not registered in the Pool used to decode it. Its payload is kept as is so
// that it may be logged or forwarded.
type Unknown struct {
	PacketID uint32
	Payload  []byte
}

// ID ...
func (pk *Unknown) ID() uint32 {
	return pk.PacketID
}

// Marshal ...
func (pk *Unknown) Marshal(io protocol.IO) {
	io.Bytes(&pk.Payload)
}
