// Package conn implements Conn, a connection that reads and writes packets over a transport.Conn, batching
// written packets into frames and applying the compression and encryption negotiated during login.
package conn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/transport"
)

var (
	// ErrTransport is returned when the underlying transport fails to send or receive a frame.
	ErrTransport = errors.New("conn: transport failure")
	// ErrClosed is returned when using a Conn that was closed.
	ErrClosed = errors.New("conn: connection closed")
)

// Conn is a packet connection. Packets written are buffered until Flush is called, after which they are sent
// as one or more frames. Packets read are decoded a frame at a time and handed out in order.
//
// Writing and reading may happen concurrently, but ReadPacket must only be called by one goroutine at a time
// for the order of packets to be meaningful.
type Conn struct {
	conn    transport.Conn
	pool    packet.Pool
	logger  *slog.Logger
	metrics *metrics.Metrics

	privateKey *ecdsa.PrivateKey

	writeMu        sync.Mutex
	encoder        *packet.Encoder
	pending        [][]byte
	compressionSet bool
	encryptionSet  bool

	readMu  sync.Mutex
	decoder *packet.Decoder
	queue   []packet.Packet

	gameData     GameData
	identityData IdentityData

	once   sync.Once
	closed chan struct{}
}

// Option configures optional behaviour of a Conn.
type Option func(c *Conn)

// WithMetrics makes the Conn record frames and decoding errors in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Conn) {
		c.metrics = m
	}
}

// New creates a Conn reading and writing frames on conn, decoding packets with pool. A new P-384 key pair is
// generated to be used for the handshake. A nil logger is replaced by slog.Default().
func New(conn transport.Conn, pool packet.Pool, logger *slog.Logger, opts ...Option) (*Conn, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate identity key: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		conn:       conn,
		pool:       pool,
		logger:     logger.With("addr", conn.RemoteAddr()),
		privateKey: privateKey,
		encoder:    packet.NewEncoder(),
		decoder:    packet.NewDecoder(),
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics.ConnectionOpened()
	return c, nil
}

// WritePacket encodes pk and adds it to the pending batch. Nothing is sent until Flush is called.
func (c *Conn) WritePacket(pk packet.Packet) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(pk)
}

// WritePackets writes all packets passed and flushes them, without any other write interleaving.
func (c *Conn) WritePackets(pks ...packet.Packet) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	for _, pk := range pks {
		if err := c.writeLocked(pk); err != nil {
			return err
		}
	}
	return c.flushLocked()
}

// Flush sends all pending packets. Batches of more than packet.MaximumBatchSize packets are split over
// multiple frames. The pending batch is cleared whether or not sending succeeds, so packets are never sent
// twice.
func (c *Conn) Flush() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.flushLocked()
}

func (c *Conn) writeLocked(pk packet.Packet) error {
	if c.isClosed() {
		return ErrClosed
	}
	payload, err := packet.Encode(packet.Header{}, pk)
	if err != nil {
		return err
	}
	c.pending = append(c.pending, payload)
	c.logger.Debug("wrote packet", "packet", fmt.Sprintf("%T", pk))
	return nil
}

func (c *Conn) flushLocked() error {
	if len(c.pending) == 0 {
		return nil
	}
	pending := c.pending
	c.pending = nil
	if c.isClosed() {
		return ErrClosed
	}

	for len(pending) > 0 {
		n := min(len(pending), packet.MaximumBatchSize)
		frame, err := c.encoder.Encode(pending[:n])
		if err != nil {
			return err
		}
		if err := c.conn.WriteFrame(frame); err != nil {
			_ = c.Close()
			return fmt.Errorf("%w: write frame: %w", ErrTransport, err)
		}
		c.metrics.Frame(metrics.DirectionSent, len(frame))
		pending = pending[n:]
	}
	return nil
}

// ReadPacket returns the next packet received. If no packets are queued, it blocks until a frame is
// received and queues every packet in it. Packets with an ID not present in the pool are returned as
// *packet.Unknown. Any error decoding a frame closes the Conn. If the peer closed the connection, an error
// wrapping ErrClosed is returned.
func (c *Conn) ReadPacket() (packet.Packet, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.queue) == 0 {
		if err := c.receive(); err != nil {
			return nil, err
		}
	}
	pk := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return pk, nil
}

// receive reads a single frame and queues the packets it carries.
func (c *Conn) receive() error {
	if c.isClosed() {
		return ErrClosed
	}
	frame, err := c.conn.ReadFrame()
	if err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		_ = c.Close()
		if errors.Is(err, transport.ErrClosed) || errors.Is(err, io.EOF) {
			c.logger.Debug("connection closed by peer")
			return fmt.Errorf("%w: closed by peer", ErrClosed)
		}
		return fmt.Errorf("%w: read frame: %w", ErrTransport, err)
	}
	c.metrics.Frame(metrics.DirectionReceived, len(frame))

	payloads, err := c.decoder.Decode(frame)
	if err != nil {
		return c.fail(err)
	}
	for _, payload := range payloads {
		pk, _, err := c.pool.Decode(payload)
		switch {
		case errors.Is(err, packet.ErrUnknownPacket):
			c.metrics.UnknownPacket()
		case err != nil:
			return c.fail(err)
		}
		c.queue = append(c.queue, pk)
	}
	return nil
}

// fail closes the Conn after a frame could not be decoded. Once that happens the encryption counters of both
// sides no longer agree, so the connection cannot recover.
func (c *Conn) fail(err error) error {
	c.metrics.DecodeError(err)
	c.logger.Error("failed to decode frame", "err", err)
	_ = c.Close()
	return err
}

// SetCompression enables compression of frames. Packets written before the call are flushed first, without
// compression. It may only be called once and must not be called while ReadPacket is blocked.
func (c *Conn) SetCompression(compression packet.Compression, threshold int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.compressionSet {
		return errors.New("conn: compression already set")
	}
	if err := c.flushLocked(); err != nil {
		return err
	}
	c.compressionSet = true

	c.encoder.EnableCompression(compression, threshold)
	c.readMu.Lock()
	c.decoder.EnableCompression(compression)
	c.readMu.Unlock()
	return nil
}

// SetEncryption enables encryption of frames with key. Packets written before the call are flushed first,
// without encryption. It may only be called once and must not be called while ReadPacket is blocked.
func (c *Conn) SetEncryption(key [32]byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.encryptionSet {
		return errors.New("conn: encryption already set")
	}
	if err := c.flushLocked(); err != nil {
		return err
	}
	c.encryptionSet = true

	c.encoder.EnableEncryption(key)
	c.readMu.Lock()
	c.decoder.EnableEncryption(key)
	c.readMu.Unlock()
	return nil
}

// Encrypted reports whether encryption was enabled with SetEncryption.
func (c *Conn) Encrypted() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.encryptionSet
}

// IdentityKey returns the key pair generated for the connection.
func (c *Conn) IdentityKey() *ecdsa.PrivateKey {
	return c.privateKey
}

// GameData returns the game data exchanged during login.
func (c *Conn) GameData() GameData {
	return c.gameData
}

// SetGameData sets the game data of the connection. It is set by the login sequence.
func (c *Conn) SetGameData(data GameData) {
	c.gameData = data
}

// IdentityData returns the identity of the client on the other end, as sent during login.
func (c *Conn) IdentityData() IdentityData {
	return c.identityData
}

// SetIdentityData sets the identity data of the connection. It is set by the login sequence.
func (c *Conn) SetIdentityData(data IdentityData) {
	c.identityData = data
}

// Logger returns the logger of the connection.
func (c *Conn) Logger() *slog.Logger {
	return c.logger
}

// RemoteAddr ...
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Closed returns a channel that is closed once the Conn is closed.
func (c *Conn) Closed() <-chan struct{} {
	return c.closed
}

// Close closes the Conn and the transport connection. Pending packets are discarded.
func (c *Conn) Close() (err error) {
	c.once.Do(func() {
		close(c.closed)
		err = c.conn.Close()
		c.metrics.ConnectionClosed()
		c.logger.Debug("closed connection")
	})
	return
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
