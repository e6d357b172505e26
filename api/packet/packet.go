package packet

import "github.com/cooldogedev/prism/protocol"

// Packet represents a protocol packet that can be sent over an API connection.
type Packet interface {
	// ID returns the unique identifier of the packet.
	ID() uint32
	// Marshal encodes or decodes the packet, depending on the protocol.IO passed.
	Marshal(io protocol.IO)
}
