package packet

import "github.com/cooldogedev/prism/protocol"

// StackResourcePack is an entry of the resource pack stack applied by the client.
type StackResourcePack struct {
	UUID        string
	Version     string
	SubPackName string
}

// Marshal ...
func (x *StackResourcePack) Marshal(io protocol.IO) {
	io.String(&x.UUID)
	io.String(&x.Version)
	io.String(&x.SubPackName)
}

// ExperimentData is an experimental feature toggled on the server.
type ExperimentData struct {
	Name    string
	Enabled bool
}

// Marshal ...
func (x *ExperimentData) Marshal(io protocol.IO) {
	io.String(&x.Name)
	io.Bool(&x.Enabled)
}

// ResourcePackStack is sent by the server after the client reported that it has all packs. It describes the
// order in which the packs are applied.
type ResourcePackStack struct {
	TexturePackRequired          bool
	TexturePacks                 []StackResourcePack
	BaseGameVersion              string
	Experiments                  []ExperimentData
	ExperimentsPreviouslyToggled bool
}

// ID ...
func (*ResourcePackStack) ID() uint32 {
	return IDResourcePackStack
}

// Marshal ...
func (pk *ResourcePackStack) Marshal(io protocol.IO) {
	io.Bool(&pk.TexturePackRequired)
	protocol.SliceOf(io, &pk.TexturePacks)
	io.String(&pk.BaseGameVersion)
	protocol.SliceOf(io, &pk.Experiments)
	io.Bool(&pk.ExperimentsPreviouslyToggled)
}
