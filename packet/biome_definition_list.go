package packet

import (
	"github.com/cooldogedev/prism/nbt"
	"github.com/cooldogedev/prism/protocol"
)

// BiomeDefinitionList is sent by the server during the world bootstrap to define the biomes of the world.
type BiomeDefinitionList struct {
	// Definitions maps biome names to their definitions. It is written as a network NBT compound.
	Definitions map[string]any
}

// ID ...
func (*BiomeDefinitionList) ID() uint32 {
	return IDBiomeDefinitionList
}

// Marshal ...
func (pk *BiomeDefinitionList) Marshal(io protocol.IO) {
	io.NBT(&pk.Definitions, nbt.NetworkLittleEndian)
}
