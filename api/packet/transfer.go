package packet

import "github.com/cooldogedev/prism/protocol"

// Transfer sends the player with the username passed to another server.
type Transfer struct {
	Addr     string
	Port     uint16
	Username string
}

// ID ...
func (pk *Transfer) ID() uint32 {
	return IDTransfer
}

// Marshal ...
func (pk *Transfer) Marshal(io protocol.IO) {
	io.String(&pk.Addr)
	io.Uint16(&pk.Port)
	io.String(&pk.Username)
}
