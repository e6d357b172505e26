package packet

import "github.com/cooldogedev/prism/protocol"

// Login is sent by the client after compression was negotiated. It holds a signed token proving the identity
// of the client and carrying the public key used for the encryption handshake.
type Login struct {
	// ClientProtocol is the protocol version of the client, written big-endian.
	ClientProtocol int32
	// ConnectionRequest is the compact serialised identity token.
	ConnectionRequest []byte
}

// ID ...
func (*Login) ID() uint32 {
	return IDLogin
}

// Marshal ...
func (pk *Login) Marshal(io protocol.IO) {
	io.BEInt32(&pk.ClientProtocol)
	io.ByteSlice(&pk.ConnectionRequest)
}
