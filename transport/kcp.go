package transport

import (
	"context"
	"net"

	"github.com/xtaci/kcp-go"
)

const (
	kcpDataShards   = 10
	kcpParityShards = 3
)

// KCP implements the Server interface to establish connections using the KCP protocol. KCP sessions are
// streams, so frames are length prefixed like they are over TCP.
type KCP struct{}

// NewKCP creates a new KCP transport instance.
func NewKCP() *KCP {
	return &KCP{}
}

// Dial ...
func (k *KCP) Dial(_ context.Context, addr string) (Conn, error) {
	conn, err := kcp.DialWithOptions(addr, nil, kcpDataShards, kcpParityShards)
	if err != nil {
		return nil, err
	}
	configureKCP(conn)
	return NewStreamConn(conn, conn.RemoteAddr()), nil
}

// Listen ...
func (k *KCP) Listen(addr string) (Listener, error) {
	l, err := kcp.ListenWithOptions(addr, nil, kcpDataShards, kcpParityShards)
	if err != nil {
		return nil, err
	}
	return &kcpListener{l: l}, nil
}

type kcpListener struct {
	l *kcp.Listener
}

// Accept ...
func (l *kcpListener) Accept() (Conn, error) {
	conn, err := l.l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	configureKCP(conn)
	return NewStreamConn(conn, conn.RemoteAddr()), nil
}

// Close ...
func (l *kcpListener) Close() error {
	return l.l.Close()
}

// Addr ...
func (l *kcpListener) Addr() net.Addr {
	return l.l.Addr()
}

func configureKCP(conn *kcp.UDPSession) {
	conn.SetStreamMode(true)
	conn.SetNoDelay(1, 10, 2, 1)
	conn.SetWindowSize(1024, 1024)
}
