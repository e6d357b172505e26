package transport

import (
	"bytes"
	"net"
	"sync"
)

// pipeBuffer is the amount of frames a pipe end holds before WriteFrame blocks.
const pipeBuffer = 256

// Pipe creates an in-memory, full duplex connection. Frames written on one end are read from the other.
// Unlike net.Pipe, writes are buffered, so both ends may write without a reader waiting.
func Pipe() (Conn, Conn) {
	a, b := make(chan []byte, pipeBuffer), make(chan []byte, pipeBuffer)
	done := make(chan struct{})
	once := new(sync.Once)
	return &pipeConn{read: a, write: b, done: done, once: once, addr: pipeAddr("b")},
		&pipeConn{read: b, write: a, done: done, once: once, addr: pipeAddr("a")}
}

type pipeConn struct {
	read  <-chan []byte
	write chan<- []byte

	done chan struct{}
	once *sync.Once
	addr pipeAddr
}

// ReadFrame ...
func (p *pipeConn) ReadFrame() ([]byte, error) {
	// Frames already written are still delivered after the other end closes.
	select {
	case frame := <-p.read:
		return frame, nil
	default:
	}
	select {
	case frame := <-p.read:
		return frame, nil
	case <-p.done:
		return nil, ErrClosed
	}
}

// WriteFrame ...
func (p *pipeConn) WriteFrame(frame []byte) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.write <- bytes.Clone(frame):
		return nil
	case <-p.done:
		return ErrClosed
	}
}

// Close closes both ends of the pipe.
func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

// RemoteAddr ...
func (p *pipeConn) RemoteAddr() net.Addr {
	return p.addr
}

type pipeAddr string

func (pipeAddr) Network() string  { return "pipe" }
func (a pipeAddr) String() string { return string(a) }
