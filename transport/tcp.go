package transport

import (
	"context"
	"net"
)

// TCP implements the Server interface to establish connections using the TCP protocol.
type TCP struct{}

// NewTCP creates a new TCP transport instance.
func NewTCP() *TCP {
	return &TCP{}
}

// Dial ...
func (t *TCP) Dial(ctx context.Context, addr string) (Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	configureTCP(conn)
	return NewStreamConn(conn, conn.RemoteAddr()), nil
}

// Listen ...
func (t *TCP) Listen(addr string) (Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpListener{l: l}, nil
}

type tcpListener struct {
	l net.Listener
}

// Accept ...
func (l *tcpListener) Accept() (Conn, error) {
	conn, err := l.l.Accept()
	if err != nil {
		return nil, err
	}
	configureTCP(conn)
	return NewStreamConn(conn, conn.RemoteAddr()), nil
}

// Close ...
func (l *tcpListener) Close() error {
	return l.l.Close()
}

// Addr ...
func (l *tcpListener) Addr() net.Addr {
	return l.l.Addr()
}

func configureTCP(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
		_ = tcpConn.SetLinger(0)
		_ = tcpConn.SetReadBuffer(1024 * 1024 * 8)
		_ = tcpConn.SetWriteBuffer(1024 * 1024 * 8)
	}
}
