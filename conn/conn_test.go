package conn

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/cooldogedev/prism/packet"
	"github.com/cooldogedev/prism/protocol"
	"github.com/cooldogedev/prism/transport"
)

// countingConn counts the frames written to the transport.Conn it wraps.
type countingConn struct {
	transport.Conn
	frames atomic.Int32
}

func (c *countingConn) WriteFrame(frame []byte) error {
	c.frames.Add(1)
	return c.Conn.WriteFrame(frame)
}

func pair(t *testing.T) (*Conn, *Conn, *countingConn) {
	t.Helper()
	a, b := transport.Pipe()
	counting := &countingConn{Conn: a}
	client, err := New(counting, packet.NewPool(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	server, err := New(b, packet.NewPool(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server, counting
}

func text(i int) *packet.Text {
	return &packet.Text{TextType: packet.TextTypeRaw, Message: fmt.Sprint(i)}
}

func expectText(t *testing.T, c *Conn, i int) {
	t.Helper()
	pk, err := c.ReadPacket()
	if err != nil {
		t.Fatalf("read %d: %v", i, err)
	}
	if txt, ok := pk.(*packet.Text); !ok || txt.Message != fmt.Sprint(i) {
		t.Fatalf("got %#v; want text %d", pk, i)
	}
}

func TestWriteBuffersUntilFlush(t *testing.T) {
	client, server, counting := pair(t)
	for i := 0; i < 3; i++ {
		if err := client.WritePacket(text(i)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if n := counting.frames.Load(); n != 0 {
		t.Fatalf("got %d frames before flush; want 0", n)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n := counting.frames.Load(); n != 1 {
		t.Fatalf("got %d frames after flush; want 1", n)
	}
	for i := 0; i < 3; i++ {
		expectText(t, server, i)
	}
	if err := client.Flush(); err != nil || counting.frames.Load() != 1 {
		t.Errorf("empty flush sent a frame or failed: %v", err)
	}
}

func TestFlushSplitsLargeBatches(t *testing.T) {
	client, server, counting := pair(t)
	n := packet.MaximumBatchSize*2 + 1
	pks := make([]packet.Packet, n)
	for i := range pks {
		pks[i] = text(i)
	}
	if err := client.WritePackets(pks...); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := counting.frames.Load(); got != 3 {
		t.Errorf("got %d frames; want 3", got)
	}
	for i := 0; i < n; i++ {
		expectText(t, server, i)
	}
}

func TestCompressionAndEncryption(t *testing.T) {
	for _, compression := range []packet.Compression{packet.FlateCompression, packet.SnappyCompression} {
		t.Run(fmt.Sprintf("%T", compression), func(t *testing.T) {
			client, server, _ := pair(t)
			var key [32]byte
			copy(key[:], "0123456789abcdef0123456789abcdef")
			for _, c := range []*Conn{client, server} {
				if err := c.SetCompression(compression, 1); err != nil {
					t.Fatalf("set compression: %v", err)
				}
				if err := c.SetEncryption(key); err != nil {
					t.Fatalf("set encryption: %v", err)
				}
			}
			for i := 0; i < 10; i++ {
				if err := client.WritePackets(text(i)); err != nil {
					t.Fatalf("write: %v", err)
				}
				expectText(t, server, i)
				if err := server.WritePackets(text(i)); err != nil {
					t.Fatalf("write: %v", err)
				}
				expectText(t, client, i)
			}
			if !client.Encrypted() {
				t.Error("expected client to report encryption")
			}
		})
	}
}

func TestSetOnlyOnce(t *testing.T) {
	client, _, _ := pair(t)
	if err := client.SetCompression(packet.FlateCompression, 0); err != nil {
		t.Fatalf("set compression: %v", err)
	}
	if err := client.SetCompression(packet.SnappyCompression, 0); err == nil {
		t.Error("expected error setting compression twice")
	}
	var key [32]byte
	if err := client.SetEncryption(key); err != nil {
		t.Fatalf("set encryption: %v", err)
	}
	if err := client.SetEncryption(key); err == nil {
		t.Error("expected error setting encryption twice")
	}
}

func TestPendingFlushedBeforeEncryption(t *testing.T) {
	client, server, _ := pair(t)
	if err := client.WritePacket(text(0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var key [32]byte
	if err := client.SetEncryption(key); err != nil {
		t.Fatalf("set encryption: %v", err)
	}
	// The packet written before encryption was enabled is readable in plain text.
	expectText(t, server, 0)
}

func TestUnknownPacketKeepsBatch(t *testing.T) {
	a, b := transport.Pipe()
	c, err := New(b, packet.NewPool(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	known, _ := packet.Encode(packet.Header{}, text(1))
	unknown := append(protocol.AppendVaruint32(nil, 0x3ff), 9, 9)
	frame, err := packet.NewEncoder().Encode([][]byte{known, unknown, known})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := a.WriteFrame(frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	expectText(t, c, 1)
	pk, err := c.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if u, ok := pk.(*packet.Unknown); !ok || u.PacketID != 0x3ff {
		t.Fatalf("got %#v; want unknown packet 0x3ff", pk)
	}
	expectText(t, c, 1)
}

func TestMalformedFrameCloses(t *testing.T) {
	a, b := transport.Pipe()
	c, err := New(b, packet.NewPool(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.WriteFrame([]byte{0x00, 0x01, 0x02}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if _, err := c.ReadPacket(); !errors.Is(err, packet.ErrFraming) {
		t.Fatalf("got %v; want ErrFraming", err)
	}
	select {
	case <-c.Closed():
	default:
		t.Fatal("connection not closed after malformed frame")
	}
	if _, err := c.ReadPacket(); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v; want ErrClosed", err)
	}
	if err := c.WritePacket(text(0)); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v; want ErrClosed", err)
	}
}

func TestTransportFailure(t *testing.T) {
	client, server, _ := pair(t)
	_ = server.Close()
	if err := client.WritePackets(text(0)); !errors.Is(err, ErrTransport) {
		t.Errorf("got %v; want ErrTransport", err)
	}
	select {
	case <-client.Closed():
	default:
		t.Error("connection not closed after transport failure")
	}
}

func TestPeerClose(t *testing.T) {
	client, server, _ := pair(t)
	_ = client.Close()
	_, err := server.ReadPacket()
	if !errors.Is(err, ErrClosed) || errors.Is(err, ErrTransport) {
		t.Errorf("got %v; want ErrClosed", err)
	}
	select {
	case <-server.Closed():
	default:
		t.Error("connection not closed after the peer closed")
	}
}

func TestIdentityKey(t *testing.T) {
	client, server, _ := pair(t)
	if client.IdentityKey().Curve.Params().BitSize != 384 {
		t.Errorf("got curve %v; want P-384", client.IdentityKey().Curve.Params().Name)
	}
	if client.IdentityKey().Equal(server.IdentityKey()) {
		t.Error("connections share an identity key")
	}
}
