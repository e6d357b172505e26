package login

import (
	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/packet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	// ProtocolVersion is the protocol version spoken by default.
	ProtocolVersion = 766
	// GameVersion is the game version matching ProtocolVersion.
	GameVersion = "1.21.50"
)

// Descriptor describes what a server negotiates and sends during login.
type Descriptor struct {
	// ProtocolVersion is the only protocol version accepted from clients.
	ProtocolVersion int32
	// GameVersion is sent as the base game version of the resource pack stack.
	GameVersion string

	// Compression is the compression used once network settings are negotiated. Nil disables compression.
	Compression packet.Compression
	// CompressionThreshold is the minimum size of a batch for it to be compressed.
	CompressionThreshold uint16
	// Encryption enables encryption after the handshake.
	Encryption bool

	TexturePackRequired bool
	TexturePacks        []packet.TexturePackInfo
	Experiments         []packet.ExperimentData

	// GameData, CreativeItems, BiomeDefinitions and Chunk make up the world bootstrap.
	GameData         conn.GameData
	CreativeItems    []packet.CreativeItem
	BiomeDefinitions map[string]any
	Chunk            packet.LevelChunk
}

// DefaultDescriptor returns a Descriptor for a flat, empty world using flate compression and encryption.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		ProtocolVersion:      ProtocolVersion,
		GameVersion:          GameVersion,
		Compression:          packet.FlateCompression,
		CompressionThreshold: 256,
		Encryption:           true,
		GameData: conn.GameData{
			WorldName:       "prism",
			Difficulty:      1,
			EntityUniqueID:  1,
			EntityRuntimeID: 1,
			PlayerGameMode:  1,
			PlayerPosition:  mgl32.Vec3{0.5, 65.62, 0.5},
			WorldSpawn:      mgl32.Vec3{0, 64, 0},
			WorldGameMode:   1,
			BaseGameVersion: GameVersion,
			GameRules:       []packet.GameRule{{Name: "dodaylightcycle", Value: 0}},
			Items:           []packet.ItemEntry{{Name: "minecraft:shield", RuntimeID: 355}},
			WorldTemplateID: uuid.Nil,
			PlayerProperties: map[string]any{
				"type": "minecraft:player",
			},
		},
		BiomeDefinitions: map[string]any{
			"plains": map[string]any{
				"temperature": float32(0.8),
				"downfall":    float32(0.4),
			},
		},
		Chunk: packet.LevelChunk{SubChunkCount: 0, RawPayload: make([]byte, 0)},
	}
}

// packIDs returns the IDs of the texture packs passed, in the uuid_version form used in
// ResourcePackClientResponse.
func packIDs(packs []packet.TexturePackInfo) []string {
	ids := make([]string, len(packs))
	for i, pack := range packs {
		ids[i] = pack.UUID.String() + "_" + pack.Version
	}
	return ids
}

func startGame(data conn.GameData) *packet.StartGame {
	return &packet.StartGame{
		EntityUniqueID:  data.EntityUniqueID,
		EntityRuntimeID: data.EntityRuntimeID,
		PlayerGameMode:  data.PlayerGameMode,
		PlayerPosition:  data.PlayerPosition,
		Pitch:           data.Pitch,
		Yaw:             data.Yaw,
		WorldSeed:       data.WorldSeed,
		Dimension:       data.Dimension,
		WorldGameMode:   data.WorldGameMode,
		Difficulty:      data.Difficulty,
		WorldSpawn:      data.WorldSpawn,
		WorldName:       data.WorldName,
		BaseGameVersion: data.BaseGameVersion,
		Time:            data.Time,
		GameRules:       data.GameRules,
		PropertyData:    data.PlayerProperties,
		WorldTemplateID: data.WorldTemplateID,
		Items:           data.Items,
	}
}

func gameData(pk *packet.StartGame) conn.GameData {
	return conn.GameData{
		WorldName:        pk.WorldName,
		WorldSeed:        pk.WorldSeed,
		Difficulty:       pk.Difficulty,
		EntityUniqueID:   pk.EntityUniqueID,
		EntityRuntimeID:  pk.EntityRuntimeID,
		PlayerGameMode:   pk.PlayerGameMode,
		PlayerPosition:   pk.PlayerPosition,
		Pitch:            pk.Pitch,
		Yaw:              pk.Yaw,
		Dimension:        pk.Dimension,
		WorldSpawn:       pk.WorldSpawn,
		WorldGameMode:    pk.WorldGameMode,
		Time:             pk.Time,
		BaseGameVersion:  pk.BaseGameVersion,
		GameRules:        pk.GameRules,
		Items:            pk.Items,
		PlayerProperties: pk.PropertyData,
		WorldTemplateID:  pk.WorldTemplateID,
	}
}
