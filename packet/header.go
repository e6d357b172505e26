package packet

import (
	"bytes"

	"github.com/cooldogedev/prism/protocol"
)

const (
	idMask        = 0x3ff
	senderShift   = 10
	targetShift   = 12
	subClientMask = 0x03
)

// Header is the header of a packet. It precedes every packet payload in a batch.
type Header struct {
	PacketID        uint32
	SenderSubClient byte
	TargetSubClient byte
}

// Write writes the header as a single varuint32 to buf.
func (h *Header) Write(buf *bytes.Buffer) {
	v := h.PacketID&idMask | uint32(h.SenderSubClient&subClientMask)<<senderShift | uint32(h.TargetSubClient&subClientMask)<<targetShift
	buf.Write(protocol.AppendVaruint32(nil, v))
}

// Read reads a header from r. Errors are recorded in r.
func (h *Header) Read(r *protocol.Reader) {
	var v uint32
	r.Varuint32(&v)
	h.PacketID = v & idMask
	h.SenderSubClient = byte(v>>senderShift) & subClientMask
	h.TargetSubClient = byte(v>>targetShift) & subClientMask
}
