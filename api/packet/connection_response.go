package packet

import "github.com/cooldogedev/prism/protocol"

const (
	ResponseSuccess = iota
	ResponseUnauthorized
	ResponseFail
)

// ConnectionResponse answers a ConnectionRequest.
type ConnectionResponse struct {
	Response uint8
}

// ID ...
func (pk *ConnectionResponse) ID() uint32 {
	return IDConnectionResponse
}

// Marshal ...
func (pk *ConnectionResponse) Marshal(io protocol.IO) {
	io.Uint8(&pk.Response)
}
