package packet

import "github.com/cooldogedev/prism/protocol"

// SetLocalPlayerAsInitialised is sent by the client once it finished spawning.
type SetLocalPlayerAsInitialised struct {
	EntityRuntimeID uint64
}

// ID ...
func (*SetLocalPlayerAsInitialised) ID() uint32 {
	return IDSetLocalPlayerAsInitialised
}

// Marshal ...
func (pk *SetLocalPlayerAsInitialised) Marshal(io protocol.IO) {
	io.Varuint64(&pk.EntityRuntimeID)
}
