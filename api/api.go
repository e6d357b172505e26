// Package api implements an administration service. Authenticated clients may list the connected players
// and kick or transfer them.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/cooldogedev/prism/api/packet"
	"github.com/cooldogedev/prism/session"
	"github.com/cooldogedev/prism/transport"
)

type API struct {
	authentication Authentication
	sessions       *session.Registry
	listener       transport.Listener
	logger         *slog.Logger
}

func NewAPI(sessions *session.Registry, logger *slog.Logger, authentication Authentication) *API {
	return &API{
		authentication: authentication,
		sessions:       sessions,
		logger:         logger,
	}
}

func (a *API) Listen(addr string) error {
	listener, err := transport.NewTCP().Listen(addr)
	if err != nil {
		return err
	}
	a.listener = listener
	a.logger.Info("api listening", "addr", listener.Addr())
	return nil
}

// Addr returns the address the API listens on.
func (a *API) Addr() net.Addr {
	return a.listener.Addr()
}

func (a *API) Accept() error {
	conn, err := a.listener.Accept()
	if err != nil {
		return err
	}

	go a.handle(conn)
	a.logger.Info("accepted connection", "addr", conn.RemoteAddr())
	return nil
}

func (a *API) Close() error {
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}

func (a *API) handle(conn transport.Conn) {
	c := NewClient(conn, packet.NewPool())
	defer func() {
		_ = c.Close()
		a.logger.Info("disconnected connection", "addr", conn.RemoteAddr())
	}()

	connectionRequestPacket, err := c.ReadPacket()
	if err != nil {
		_ = c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseFail})
		a.logger.Error("failed to read connection request", "err", err)
		return
	}

	connectionRequest, ok := connectionRequestPacket.(*packet.ConnectionRequest)
	if !ok {
		_ = c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseFail})
		a.logger.Error("expected connection request", "id", connectionRequestPacket.ID())
		return
	}

	if a.authentication != nil && !a.authentication.Authenticate(connectionRequest.Token) {
		_ = c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseUnauthorized})
		a.logger.Debug("closed unauthenticated connection", "addr", conn.RemoteAddr())
		return
	}

	if err := c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseSuccess}); err != nil {
		a.logger.Error("failed to write connection response", "err", err)
		return
	}
	a.logger.Info("authorized connection", "addr", conn.RemoteAddr())
	for {
		pk, err := c.ReadPacket()
		if err != nil {
			if !errors.Is(err, transport.ErrClosed) && !errors.Is(err, io.EOF) {
				a.logger.Error("failed to read packet", "err", err)
			}
			return
		}

		switch pk := pk.(type) {
		case *packet.Kick:
			s := a.sessions.GetSessionByUsername(pk.Username)
			if s == nil {
				a.logger.Debug("tried to disconnect an unknown player", "username", pk.Username)
				continue
			}
			s.Disconnect(pk.Reason)
		case *packet.Transfer:
			s := a.sessions.GetSessionByUsername(pk.Username)
			if s == nil {
				a.logger.Debug("tried to transfer an unknown player", "username", pk.Username)
				continue
			}
			if err := s.Transfer(pk.Addr, pk.Port); err != nil {
				a.logger.Error("failed to transfer player", "username", pk.Username, "err", err)
			}
		case *packet.ListRequest:
			sessions := a.sessions.GetSessions()
			players := make([]packet.Player, 0, len(sessions))
			for _, s := range sessions {
				identity := s.Conn().IdentityData()
				players = append(players, packet.Player{
					Username: identity.DisplayName,
					Identity: identity.Identity,
					XUID:     identity.XUID,
					Addr:     s.Conn().RemoteAddr().String(),
				})
			}
			if err := c.WritePacket(&packet.ListResponse{Players: players}); err != nil {
				a.logger.Error("failed to write list response", "err", err)
				return
			}
		}
	}
}
