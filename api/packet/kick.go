package packet

import "github.com/cooldogedev/prism/protocol"

// Kick disconnects the player with the username passed.
type Kick struct {
	Reason   string
	Username string
}

// ID ...
func (pk *Kick) ID() uint32 {
	return IDKick
}

// Marshal ...
func (pk *Kick) Marshal(io protocol.IO) {
	io.String(&pk.Reason)
	io.String(&pk.Username)
}
