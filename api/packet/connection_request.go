package packet

import "github.com/cooldogedev/prism/protocol"

// ConnectionRequest is the first packet sent by an API client. It carries the token the client authenticates
// with.
type ConnectionRequest struct {
	Token string
}

// ID ...
func (pk *ConnectionRequest) ID() uint32 {
	return IDConnectionRequest
}

// Marshal ...
func (pk *ConnectionRequest) Marshal(io protocol.IO) {
	io.String(&pk.Token)
}
