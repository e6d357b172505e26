package api

import (
	"fmt"
	"sync"

	"github.com/cooldogedev/prism/api/packet"
	"github.com/cooldogedev/prism/transport"
)

// Client is a connection to the API, used on both ends.
type Client struct {
	conn transport.Conn
	pool packet.Pool

	writeMu sync.Mutex
}

func NewClient(conn transport.Conn, pool packet.Pool) *Client {
	return &Client{
		conn: conn,
		pool: pool,
	}
}

func (c *Client) ReadPacket() (packet.Packet, error) {
	payload, err := c.conn.ReadFrame()
	if err != nil {
		return nil, err
	}
	return c.pool.Decode(payload)
}

func (c *Client) WritePacket(pk packet.Packet) error {
	payload, err := packet.Encode(pk)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteFrame(payload)
}

// Kick disconnects the player with the username passed.
func (c *Client) Kick(username, reason string) error {
	return c.WritePacket(&packet.Kick{Username: username, Reason: reason})
}

// Transfer sends the player with the username passed to the server at addr and port.
func (c *Client) Transfer(username, addr string, port uint16) error {
	return c.WritePacket(&packet.Transfer{Username: username, Addr: addr, Port: port})
}

// List returns the players currently connected. It must not be called while another goroutine reads from
// the Client.
func (c *Client) List() ([]packet.Player, error) {
	if err := c.WritePacket(&packet.ListRequest{}); err != nil {
		return nil, err
	}
	pk, err := c.ReadPacket()
	if err != nil {
		return nil, err
	}
	response, ok := pk.(*packet.ListResponse)
	if !ok {
		return nil, fmt.Errorf("expected list response, got %T", pk)
	}
	return response.Players, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
