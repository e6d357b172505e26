// Package session runs packet traffic on a connection that completed login. A Session reads packets in its
// own goroutine and hands them to a Handler in the order they arrived.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/packet"
)

// Opts holds optional settings of a Session.
type Opts struct {
	// FlushRate is the interval at which written packets are flushed. If zero, every packet is flushed as soon
	// as it is written.
	FlushRate time.Duration
	// Registry is the Registry the Session is added to while it is open. It may be nil.
	Registry *Registry
}

type Session struct {
	conn    *conn.Conn
	handler Handler
	logger  *slog.Logger
	opts    Opts
	tracker *Tracker

	packets chan packet.Packet

	reasonMu sync.Mutex
	reason   string

	once   sync.Once
	closed chan struct{}
}

// New creates a Session for c and starts reading packets from it. c must have completed login. A nil handler
// is replaced by NopHandler.
func New(c *conn.Conn, handler Handler, opts Opts) *Session {
	if handler == nil {
		handler = NopHandler{}
	}
	s := &Session{
		conn:    c,
		handler: handler,
		logger:  c.Logger(),
		opts:    opts,
		tracker: NewTracker(),
		packets: make(chan packet.Packet, 128),
		closed:  make(chan struct{}),
	}
	if opts.Registry != nil {
		opts.Registry.AddSession(s)
	}

	go s.readPackets()
	go s.handlePackets()
	if opts.FlushRate > 0 {
		go s.flush()
	}
	s.logger.Info("started session", "name", c.IdentityData().DisplayName)
	return s
}

// Conn returns the connection of the session.
func (s *Session) Conn() *conn.Conn {
	return s.conn
}

// Tracker returns the Tracker of the session.
func (s *Session) Tracker() *Tracker {
	return s.tracker
}

// WritePacket writes a packet to the session. Unless a FlushRate is set, it is sent immediately.
func (s *Session) WritePacket(pk packet.Packet) error {
	if s.opts.FlushRate > 0 {
		return s.conn.WritePacket(pk)
	}
	return s.conn.WritePackets(pk)
}

// Transfer sends the other end to the server at addr and port and closes the session.
func (s *Session) Transfer(addr string, port uint16) error {
	if err := s.conn.WritePackets(&packet.Transfer{Address: addr, Port: port}); err != nil {
		return err
	}
	s.setReason("transferred")
	return s.Close()
}

// Disconnect sends a Disconnect with message and closes the session.
func (s *Session) Disconnect(message string) {
	if err := s.conn.WritePackets(&packet.Disconnect{Message: message}); err != nil {
		s.logger.Debug("failed to send disconnect", "err", err)
	}
	s.setReason(message)
	_ = s.Close()
}

// Closed returns a channel that is closed once the session has been closed.
func (s *Session) Closed() <-chan struct{} {
	return s.closed
}

// Close closes the session and its connection.
func (s *Session) Close() (err error) {
	s.once.Do(func() {
		close(s.closed)
		err = s.conn.Close()
		if s.opts.Registry != nil {
			s.opts.Registry.RemoveSession(s)
		}
		s.logger.Info("closed session", "name", s.conn.IdentityData().DisplayName)
	})
	return
}

// readPackets reads packets until the connection is closed and passes them on to handlePackets. Packets
// with an unknown ID are logged and dropped.
func (s *Session) readPackets() {
	defer close(s.packets)
	for {
		pk, err := s.conn.ReadPacket()
		if err != nil {
			if !errors.Is(err, conn.ErrClosed) {
				s.logger.Error("failed to read packet", "err", err)
				s.setReason(err.Error())
			}
			return
		}

		switch pk := pk.(type) {
		case *packet.Unknown:
			if s.tracker.Unknown(pk.PacketID) {
				s.logger.Debug("ignoring unknown packet", "id", pk.PacketID)
			}
			continue
		case *packet.Disconnect:
			s.setReason(pk.Message)
			_ = s.Close()
			return
		}

		select {
		case s.packets <- pk:
		case <-s.closed:
			return
		}
	}
}

func (s *Session) handlePackets() {
	for pk := range s.packets {
		s.handler.HandlePacket(s, pk)
	}
	_ = s.Close()
	s.handler.HandleDisconnect(s, s.disconnectReason())
}

func (s *Session) flush() {
	ticker := time.NewTicker(s.opts.FlushRate)
	defer ticker.Stop()
	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			if err := s.conn.Flush(); err != nil {
				if !errors.Is(err, conn.ErrClosed) {
					s.logger.Error("failed to flush", "err", err)
				}
				_ = s.Close()
				return
			}
		}
	}
}

// setReason sets the disconnect reason if none was set yet.
func (s *Session) setReason(reason string) {
	s.reasonMu.Lock()
	defer s.reasonMu.Unlock()
	if s.reason == "" {
		s.reason = reason
	}
}

func (s *Session) disconnectReason() string {
	s.reasonMu.Lock()
	defer s.reasonMu.Unlock()
	return s.reason
}
