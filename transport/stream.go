package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/cooldogedev/prism/internal"
)

const (
	frameLengthSize = 4
	// maximumFrameSize is the largest frame accepted on a stream.
	maximumFrameSize = 1024 * 1024 * 32
	// initialFrameSize caps the buffer allocated for a frame before its body is read.
	initialFrameSize = 1024 * 64
)

// streamConn frames an ordered byte stream: every frame is prefixed with its length as a big-endian uint32.
type streamConn struct {
	rwc  io.ReadWriteCloser
	addr net.Addr

	length [frameLengthSize]byte

	once   sync.Once
	closed chan struct{}
}

// NewStreamConn wraps a stream, such as a TCP connection, in a Conn. addr is returned by RemoteAddr.
func NewStreamConn(rwc io.ReadWriteCloser, addr net.Addr) Conn {
	return &streamConn{rwc: rwc, addr: addr, closed: make(chan struct{})}
}

// ReadFrame ...
func (c *streamConn) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(c.rwc, c.length[:]); err != nil {
		return nil, c.wrap(err)
	}
	l := binary.BigEndian.Uint32(c.length[:])
	if l > maximumFrameSize {
		return nil, fmt.Errorf("transport: frame of %d bytes exceeds maximum of %d", l, maximumFrameSize)
	}
	// The buffer grows as the body arrives so that a length prefix alone cannot force a large allocation.
	frame := bytes.NewBuffer(make([]byte, 0, min(l, initialFrameSize)))
	if _, err := io.CopyN(frame, c.rwc, int64(l)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, c.wrap(err)
	}
	return frame.Bytes(), nil
}

// WriteFrame ...
func (c *streamConn) WriteFrame(frame []byte) error {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		internal.BufferPool.Put(buf)
	}()

	_ = binary.Write(buf, binary.BigEndian, uint32(len(frame)))
	buf.Write(frame)
	if _, err := c.rwc.Write(buf.Bytes()); err != nil {
		return c.wrap(err)
	}
	return nil
}

// Close ...
func (c *streamConn) Close() (err error) {
	c.once.Do(func() {
		close(c.closed)
		err = c.rwc.Close()
	})
	return
}

// RemoteAddr ...
func (c *streamConn) RemoteAddr() net.Addr {
	return c.addr
}

// wrap turns errors caused by a local Close into ErrClosed.
func (c *streamConn) wrap(err error) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	return wrapClosed(err)
}

func wrapClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}
