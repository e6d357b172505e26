package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/cooldogedev/prism/api/packet"
	"github.com/cooldogedev/prism/transport"
)

var (
	ErrConnectionFailed = errors.New("api: connection failed")
	ErrUnauthorized     = errors.New("api: connection unauthorized")
)

// Dial establishes a TCP connection to the specified API service address using the provided token.
// It returns a new Client instance if the connection and authentication are successful.
// Otherwise, it returns an error indicating the failure reason.
func Dial(ctx context.Context, addr, token string) (_ *Client, err error) {
	conn, err := transport.NewTCP().Dial(ctx, addr)
	if err != nil {
		return nil, err
	}

	c := NewClient(conn, packet.NewPool())
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	if err := c.WritePacket(&packet.ConnectionRequest{Token: token}); err != nil {
		return nil, err
	}

	connectionResponsePacket, err := c.ReadPacket()
	if err != nil {
		return nil, err
	}

	connectionResponse, ok := connectionResponsePacket.(*packet.ConnectionResponse)
	if !ok {
		return nil, fmt.Errorf("expected connection response, got %T", connectionResponsePacket)
	}

	switch connectionResponse.Response {
	case packet.ResponseSuccess:
		return c, nil
	case packet.ResponseFail:
		return nil, ErrConnectionFailed
	case packet.ResponseUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("received an unknown response code %d", connectionResponse.Response)
	}
}
