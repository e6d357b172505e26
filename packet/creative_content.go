package packet

import (
	"github.com/cooldogedev/prism/nbt"
	"github.com/cooldogedev/prism/protocol"
)

// ItemStack is an item with a count. Its user data is written with the legacy little-endian NBT encoding,
// as items have always been.
type ItemStack struct {
	NetworkID     int32
	Count         uint16
	MetadataValue uint32
	NBTData       map[string]any
}

// Marshal ...
func (x *ItemStack) Marshal(io protocol.IO) {
	io.Varint32(&x.NetworkID)
	if x.NetworkID == 0 {
		return
	}
	io.Uint16(&x.Count)
	io.Varuint32(&x.MetadataValue)
	hasNBT := len(x.NBTData) > 0
	io.Bool(&hasNBT)
	if hasNBT {
		io.NBT(&x.NBTData, nbt.LittleEndian)
	}
}

// CreativeItem is an item shown in the creative inventory.
type CreativeItem struct {
	CreativeItemNetworkID uint32
	Item                  ItemStack
}

// Marshal ...
func (x *CreativeItem) Marshal(io protocol.IO) {
	io.Varuint32(&x.CreativeItemNetworkID)
	x.Item.Marshal(io)
}

// CreativeContent is sent by the server during the world bootstrap to fill the creative inventory.
type CreativeContent struct {
	Items []CreativeItem
}

// ID ...
func (*CreativeContent) ID() uint32 {
	return IDCreativeContent
}

// Marshal ...
func (pk *CreativeContent) Marshal(io protocol.IO) {
	protocol.SliceOf(io, &pk.Items)
}
