package packet

import "github.com/cooldogedev/prism/protocol"

// ClientToServerHandshake is sent by the client as the first encrypted packet, acknowledging the
// ServerToClientHandshake.
type ClientToServerHandshake struct{}

// ID ...
func (*ClientToServerHandshake) ID() uint32 {
	return IDClientToServerHandshake
}

// Marshal ...
func (*ClientToServerHandshake) Marshal(protocol.IO) {}
