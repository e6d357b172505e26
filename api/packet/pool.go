package packet

import (
	"bytes"
	"fmt"

	"github.com/cooldogedev/prism/internal"
	"github.com/cooldogedev/prism/protocol"
)

// packets maps packet IDs to their respective factory functions.
var packets = map[uint32]func() Packet{}

// Register registers a packet factory function for a given ID.
func Register(id uint32, factory func() Packet) {
	packets[id] = factory
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

// Decode decodes a payload made of a little-endian uint32 packet ID followed by the packet.
func (p Pool) Decode(payload []byte) (Packet, error) {
	r := protocol.NewReader(payload)
	var id uint32
	r.Uint32(&id)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read packet ID: %w", err)
	}

	factory, ok := p[id]
	if !ok {
		return nil, fmt.Errorf("unknown packet ID: %v", id)
	}
	pk := factory()
	pk.Marshal(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode packet %T: %w", pk, err)
	}
	return pk, nil
}

// Encode encodes pk prefixed by its ID.
func Encode(pk Packet) ([]byte, error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		internal.BufferPool.Put(buf)
	}()

	w := protocol.NewWriter(buf)
	id := pk.ID()
	w.Uint32(&id)
	pk.Marshal(w)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func init() {
	Register(IDConnectionRequest, func() Packet { return &ConnectionRequest{} })
	Register(IDConnectionResponse, func() Packet { return &ConnectionResponse{} })
	Register(IDKick, func() Packet { return &Kick{} })
	Register(IDTransfer, func() Packet { return &Transfer{} })
	Register(IDListRequest, func() Packet { return &ListRequest{} })
	Register(IDListResponse, func() Packet { return &ListResponse{} })
}
