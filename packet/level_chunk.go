package packet

import "github.com/cooldogedev/prism/protocol"

// LevelChunk is sent by the server to deliver a chunk column. The payload is opaque at this layer.
type LevelChunk struct {
	X, Z          int32
	Dimension     int32
	SubChunkCount uint32
	CacheEnabled  bool
	RawPayload    []byte
}

// ID ...
func (*LevelChunk) ID() uint32 {
	return IDLevelChunk
}

// Marshal ...
func (pk *LevelChunk) Marshal(io protocol.IO) {
	io.Varint32(&pk.X)
	io.Varint32(&pk.Z)
	io.Varint32(&pk.Dimension)
	io.Varuint32(&pk.SubChunkCount)
	io.Bool(&pk.CacheEnabled)
	io.ByteSlice(&pk.RawPayload)
}
