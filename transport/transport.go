package transport

import (
	"context"
	"errors"
	"net"
)

// ErrClosed is returned when reading from or writing to a Conn that was closed.
var ErrClosed = errors.New("transport: use of closed connection")

// Conn is a connection over a reliable, ordered transport. Frames written on one end are read whole and in
// the same order on the other end.
type Conn interface {
	// ReadFrame blocks until a frame is received and returns it.
	ReadFrame() ([]byte, error)
	// WriteFrame sends a frame. It is not safe to call concurrently.
	WriteFrame(frame []byte) error
	// Close closes the connection, unblocking pending reads.
	Close() error
	// RemoteAddr returns the address of the other end.
	RemoteAddr() net.Addr
}

// Transport defines an interface for establishing connections.
type Transport interface {
	// Dial connects to the specified address and returns a Conn.
	// It returns an error if the connection cannot be established.
	Dial(ctx context.Context, addr string) (Conn, error)
}

// Listener accepts connections made to a Transport.
type Listener interface {
	// Accept blocks until a new connection is made and returns it.
	Accept() (Conn, error)
	// Close stops listening. Blocked calls to Accept return an error.
	Close() error
	// Addr returns the address listened on.
	Addr() net.Addr
}

// Server is a Transport that can also accept connections.
type Server interface {
	Transport
	// Listen starts listening on the address passed.
	Listen(addr string) (Listener, error)
}
