package packet

import "github.com/cooldogedev/prism/protocol"

// ServerToClientHandshake is sent by the server to start encryption. It holds a token signed by the server
// that carries its public key and the salt used to derive the shared key.
type ServerToClientHandshake struct {
	JWT []byte
}

// ID ...
func (*ServerToClientHandshake) ID() uint32 {
	return IDServerToClientHandshake
}

// Marshal ...
func (pk *ServerToClientHandshake) Marshal(io protocol.IO) {
	io.ByteSlice(&pk.JWT)
}
