package packet

import (
	"github.com/cooldogedev/prism/nbt"
	"github.com/cooldogedev/prism/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ItemEntry is an entry of the item palette sent in StartGame.
type ItemEntry struct {
	Name           string
	RuntimeID      int16
	ComponentBased bool
}

// Marshal ...
func (x *ItemEntry) Marshal(io protocol.IO) {
	io.String(&x.Name)
	io.Int16(&x.RuntimeID)
	io.Bool(&x.ComponentBased)
}

// GameRule is a game rule of the world. Only boolean and integer rules are carried.
type GameRule struct {
	Name     string
	Editable bool
	Value    int32
}

// Marshal ...
func (x *GameRule) Marshal(io protocol.IO) {
	io.String(&x.Name)
	io.Bool(&x.Editable)
	io.Varint32(&x.Value)
}

// StartGame is sent by the server to describe the world and the player within it. It is the first packet of
// the world bootstrap.
type StartGame struct {
	EntityUniqueID  int64
	EntityRuntimeID uint64
	PlayerGameMode  int32
	PlayerPosition  mgl32.Vec3
	Pitch           float32
	Yaw             float32
	WorldSeed       int64
	Dimension       int32
	WorldGameMode   int32
	Difficulty      int32
	WorldSpawn      mgl32.Vec3
	WorldName       string
	BaseGameVersion string
	Time            int64
	GameRules       []GameRule
	// PropertyData holds player properties, written as a network NBT compound.
	PropertyData    map[string]any
	WorldTemplateID uuid.UUID
	Items           []ItemEntry
}

// ID ...
func (*StartGame) ID() uint32 {
	return IDStartGame
}

// Marshal ...
func (pk *StartGame) Marshal(io protocol.IO) {
	io.Varint64(&pk.EntityUniqueID)
	io.Varuint64(&pk.EntityRuntimeID)
	io.Varint32(&pk.PlayerGameMode)
	io.Vec3(&pk.PlayerPosition)
	io.Float32(&pk.Pitch)
	io.Float32(&pk.Yaw)
	io.Int64(&pk.WorldSeed)
	io.Varint32(&pk.Dimension)
	io.Varint32(&pk.WorldGameMode)
	io.Varint32(&pk.Difficulty)
	io.Vec3(&pk.WorldSpawn)
	io.String(&pk.WorldName)
	io.String(&pk.BaseGameVersion)
	io.Varint64(&pk.Time)
	protocol.SliceOf(io, &pk.GameRules)
	io.NBT(&pk.PropertyData, nbt.NetworkLittleEndian)
	io.UUID(&pk.WorldTemplateID)
	protocol.SliceOf(io, &pk.Items)
}
