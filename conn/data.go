package conn

import (
	"github.com/cooldogedev/prism/packet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GameData holds the world data a server sends in StartGame.
type GameData struct {
	WorldName        string
	WorldSeed        int64
	Difficulty       int32
	EntityUniqueID   int64
	EntityRuntimeID  uint64
	PlayerGameMode   int32
	PlayerPosition   mgl32.Vec3
	Pitch, Yaw       float32
	Dimension        int32
	WorldSpawn       mgl32.Vec3
	WorldGameMode    int32
	Time             int64
	BaseGameVersion  string
	GameRules        []packet.GameRule
	Items            []packet.ItemEntry
	PlayerProperties map[string]any
	WorldTemplateID  uuid.UUID
}

// IdentityData holds the identity of a client, as carried by the identity token in Login.
type IdentityData struct {
	DisplayName string `json:"displayName"`
	Identity    string `json:"identity"`
	XUID        string `json:"XUID"`
}
