// Package login implements the login sequence run on a new connection before it carries game traffic. The
// sequence negotiates the protocol version, compression and encryption, offers resource packs and sends the
// world bootstrap. Client and Server implement the two sides.
package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/packet"
)

var (
	// ErrIncompatibleProtocol is returned when the protocol versions of client and server differ.
	ErrIncompatibleProtocol = errors.New("login: incompatible protocol version")
	// ErrUnexpectedPacket is returned when a packet other than the one expected in the current state is
	// received.
	ErrUnexpectedPacket = fmt.Errorf("%w: unexpected packet during login", packet.ErrProtocol)
	// ErrDisconnected is returned when the other end sends a Disconnect or rejects the login.
	ErrDisconnected = errors.New("login: disconnected")
)

// sequence holds what the client and server sequences share: the connection and the current state.
type sequence struct {
	conn  *conn.Conn
	state State
}

// State returns the current state of the sequence.
func (s *sequence) State() State {
	return s.state
}

// run calls step until the sequence reaches Success or fails. The connection is closed when ctx is done or
// when step fails.
func (s *sequence) run(ctx context.Context, step func() error) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.Close()
	})
	defer stop()

	for s.state != Success {
		if err := step(); err != nil {
			_ = s.conn.Close()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
	}
	return nil
}

// expect reads the next packet and returns it if it has the ID passed. A Disconnect closes the connection
// and returns ErrDisconnected. Any other packet is answered with a Disconnect.
func (s *sequence) expect(id uint32) (packet.Packet, error) {
	pk, err := s.conn.ReadPacket()
	if err != nil {
		return nil, err
	}
	if d, ok := pk.(*packet.Disconnect); ok && id != packet.IDDisconnect {
		_ = s.conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrDisconnected, d.Message)
	}
	if pk.ID() != id {
		return nil, s.disconnect(packet.DisconnectReasonUnknown, ErrUnexpectedPacket, "unexpected packet %T in state %v", pk, s.state)
	}
	return pk, nil
}

// disconnect sends a Disconnect with the message formatted and closes the connection. The Disconnect is sent
// on a best-effort basis. The error returned wraps err.
func (s *sequence) disconnect(reason int32, err error, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	if writeErr := s.conn.WritePackets(&packet.Disconnect{Reason: reason, Message: message}); writeErr != nil {
		s.conn.Logger().Debug("failed to send disconnect", "err", writeErr)
	}
	_ = s.conn.Close()
	return fmt.Errorf("%w: %s", err, message)
}
