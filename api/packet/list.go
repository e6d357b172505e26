package packet

import "github.com/cooldogedev/prism/protocol"

// ListRequest requests the players currently connected. It is answered with a ListResponse.
type ListRequest struct{}

// ID ...
func (pk *ListRequest) ID() uint32 {
	return IDListRequest
}

// Marshal ...
func (pk *ListRequest) Marshal(protocol.IO) {}

// Player is an entry of a ListResponse.
type Player struct {
	Username string
	Identity string
	XUID     string
	Addr     string
}

// Marshal ...
func (x *Player) Marshal(io protocol.IO) {
	io.String(&x.Username)
	io.String(&x.Identity)
	io.String(&x.XUID)
	io.String(&x.Addr)
}

// ListResponse holds the players currently connected.
type ListResponse struct {
	Players []Player
}

// ID ...
func (pk *ListResponse) ID() uint32 {
	return IDListResponse
}

// Marshal ...
func (pk *ListResponse) Marshal(io protocol.IO) {
	protocol.SliceOf(io, &pk.Players)
}
