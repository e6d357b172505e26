package packet

import (
	"github.com/cooldogedev/prism/protocol"
	"github.com/google/uuid"
)

// TexturePackInfo describes a resource pack the server offers to the client.
type TexturePackInfo struct {
	UUID            uuid.UUID
	Version         string
	Size            uint64
	ContentKey      string
	SubPackName     string
	ContentIdentity string
	HasScripts      bool
}

// Marshal ...
func (x *TexturePackInfo) Marshal(io protocol.IO) {
	io.UUID(&x.UUID)
	io.String(&x.Version)
	io.Uint64(&x.Size)
	io.String(&x.ContentKey)
	io.String(&x.SubPackName)
	io.String(&x.ContentIdentity)
	io.Bool(&x.HasScripts)
}

// ResourcePacksInfo is sent by the server once the client logged in to list the resource packs it applies.
type ResourcePacksInfo struct {
	// TexturePackRequired specifies if the client must accept the packs to join.
	TexturePackRequired bool
	// HasScripts specifies if any of the packs contain scripts.
	HasScripts bool
	// TexturePacks is the list of packs offered.
	TexturePacks []TexturePackInfo
}

// ID ...
func (*ResourcePacksInfo) ID() uint32 {
	return IDResourcePacksInfo
}

// Marshal ...
func (pk *ResourcePacksInfo) Marshal(io protocol.IO) {
	io.Bool(&pk.TexturePackRequired)
	io.Bool(&pk.HasScripts)
	protocol.SliceOf(io, &pk.TexturePacks)
}
