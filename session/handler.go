package session

import "github.com/cooldogedev/prism/packet"

// Handler handles the packets and disconnection of a Session. Its methods are called from a single goroutine.
type Handler interface {
	// HandlePacket handles a packet received by the session.
	HandlePacket(s *Session, pk packet.Packet)
	// HandleDisconnect is called once after the session was closed, with the reason if one is known.
	HandleDisconnect(s *Session, reason string)
}

// NopHandler is a Handler that does nothing.
type NopHandler struct{}

// HandlePacket ...
func (NopHandler) HandlePacket(*Session, packet.Packet) {}

// HandleDisconnect ...
func (NopHandler) HandleDisconnect(*Session, string) {}
