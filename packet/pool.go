package packet

import (
	"bytes"
	"fmt"

	"github.com/cooldogedev/prism/internal"
	"github.com/cooldogedev/prism/protocol"
)

// packets maps packet IDs to their respective factory functions.
var packets = map[uint32]func() Packet{}

// Register registers a packet factory function for a given ID. Packets registered after a Pool was created
// are not present in that Pool.
func Register(id uint32, factory func() Packet) {
	packets[id&idMask] = factory
}

// Pool is a map holding packet factory functions indexed by their ID.
type Pool map[uint32]func() Packet

// NewPool creates a new Pool populated with registered packet factories.
func NewPool() Pool {
	pool := Pool{}
	for id, factory := range packets {
		pool[id] = factory
	}
	return pool
}

// Decode decodes a single packet payload. If the ID of the packet is not present in the pool, an *Unknown
// holding the payload is returned together with an error wrapping ErrUnknownPacket. Any other error means the
// payload was malformed and is wrapped with ErrProtocol.
func (p Pool) Decode(payload []byte) (Packet, Header, error) {
	var header Header
	r := protocol.NewReader(payload)
	header.Read(r)
	if err := r.Err(); err != nil {
		return nil, header, fmt.Errorf("%w: read packet header: %w", ErrProtocol, err)
	}

	factory, ok := p[header.PacketID]
	if !ok {
		pk := &Unknown{PacketID: header.PacketID}
		pk.Marshal(r)
		return pk, header, fmt.Errorf("%w: ID %v", ErrUnknownPacket, header.PacketID)
	}

	pk := factory()
	pk.Marshal(r)
	if err := r.Err(); err != nil {
		return nil, header, fmt.Errorf("%w: decode packet %T: %w", ErrProtocol, pk, err)
	}
	return pk, header, nil
}

// Encode encodes pk, prefixed by its header, and returns the payload.
func Encode(header Header, pk Packet) ([]byte, error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		internal.BufferPool.Put(buf)
	}()

	header.PacketID = pk.ID()
	header.Write(buf)

	w := protocol.NewWriter(buf)
	pk.Marshal(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("encode packet %T: %w", pk, err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func init() {
	Register(IDLogin, func() Packet { return &Login{} })
	Register(IDPlayStatus, func() Packet { return &PlayStatus{} })
	Register(IDServerToClientHandshake, func() Packet { return &ServerToClientHandshake{} })
	Register(IDClientToServerHandshake, func() Packet { return &ClientToServerHandshake{} })
	Register(IDDisconnect, func() Packet { return &Disconnect{} })
	Register(IDResourcePacksInfo, func() Packet { return &ResourcePacksInfo{} })
	Register(IDResourcePackStack, func() Packet { return &ResourcePackStack{} })
	Register(IDResourcePackClientResponse, func() Packet { return &ResourcePackClientResponse{} })
	Register(IDText, func() Packet { return &Text{} })
	Register(IDStartGame, func() Packet { return &StartGame{} })
	Register(IDLevelChunk, func() Packet { return &LevelChunk{} })
	Register(IDTransfer, func() Packet { return &Transfer{} })
	Register(IDSetLocalPlayerAsInitialised, func() Packet { return &SetLocalPlayerAsInitialised{} })
	Register(IDBiomeDefinitionList, func() Packet { return &BiomeDefinitionList{} })
	Register(IDNetworkSettings, func() Packet { return &NetworkSettings{} })
	Register(IDCreativeContent, func() Packet { return &CreativeContent{} })
	Register(IDRequestNetworkSettings, func() Packet { return &RequestNetworkSettings{} })
}
