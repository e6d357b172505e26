package packet

import "github.com/cooldogedev/prism/protocol"

// Transfer is sent by the server to move the client to another server.
type Transfer struct {
	Address string
	Port    uint16
}

// ID ...
func (*Transfer) ID() uint32 {
	return IDTransfer
}

// Marshal ...
func (pk *Transfer) Marshal(io protocol.IO) {
	io.String(&pk.Address)
	io.Uint16(&pk.Port)
}
