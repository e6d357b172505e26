package transport

import (
	"context"
	"net"

	"github.com/sandertv/go-raknet"
)

// RakNet implements the Server interface to establish connections using the RakNet protocol. RakNet
// delivers whole messages, so frames are written as they are.
type RakNet struct{}

// NewRakNet creates a new RakNet transport instance.
func NewRakNet() *RakNet {
	return &RakNet{}
}

// Dial ...
func (r *RakNet) Dial(ctx context.Context, addr string) (Conn, error) {
	conn, err := raknet.DialContext(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &rakNetConn{conn: conn}, nil
}

// Listen ...
func (r *RakNet) Listen(addr string) (Listener, error) {
	l, err := raknet.Listen(addr)
	if err != nil {
		return nil, err
	}
	return &RakNetListener{l: l}, nil
}

// RakNetListener is a Listener accepting RakNet connections. It answers unconnected pings with the pong
// data set through PongData.
type RakNetListener struct {
	l *raknet.Listener
}

// Accept ...
func (l *RakNetListener) Accept() (Conn, error) {
	conn, err := l.l.Accept()
	if err != nil {
		return nil, err
	}
	return &rakNetConn{conn: conn.(*raknet.Conn)}, nil
}

// PongData sets the data sent in response to unconnected pings.
func (l *RakNetListener) PongData(data []byte) {
	l.l.PongData(data)
}

// Close ...
func (l *RakNetListener) Close() error {
	return l.l.Close()
}

// Addr ...
func (l *RakNetListener) Addr() net.Addr {
	return l.l.Addr()
}

type rakNetConn struct {
	conn *raknet.Conn
}

// ReadFrame ...
func (c *rakNetConn) ReadFrame() ([]byte, error) {
	frame, err := c.conn.ReadPacket()
	if err != nil {
		return nil, wrapClosed(err)
	}
	return frame, nil
}

// WriteFrame ...
func (c *rakNetConn) WriteFrame(frame []byte) error {
	_, err := c.conn.Write(frame)
	return wrapClosed(err)
}

// Close ...
func (c *rakNetConn) Close() error {
	return c.conn.Close()
}

// RemoteAddr ...
func (c *rakNetConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
