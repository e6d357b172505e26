package packet

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/cooldogedev/prism/protocol"
)

func TestCompressionHelloWorld(t *testing.T) {
	for _, c := range []Compression{FlateCompression, SnappyCompression} {
		t.Run(fmt.Sprintf("%T", c), func(t *testing.T) {
			in := []byte("Hello, world!")
			compressed, err := c.Compress(in)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			out, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if !bytes.Equal(in, out) {
				t.Errorf("got %q; want %q", out, in)
			}
		})
	}
}

func TestCompressionMalformed(t *testing.T) {
	garbage := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01, 0x02}
	for _, c := range []Compression{FlateCompression, SnappyCompression} {
		if _, err := c.Decompress(garbage); !errors.Is(err, ErrCompression) {
			t.Errorf("%T: got %v; want ErrCompression", c, err)
		}
	}
}

func TestCompressionByID(t *testing.T) {
	for _, c := range []Compression{FlateCompression, SnappyCompression} {
		got, ok := CompressionByID(c.EncodeCompression())
		if !ok || got != c {
			t.Errorf("CompressionByID(%d) = %v, %v", c.EncodeCompression(), got, ok)
		}
	}
	if _, ok := CompressionByID(CompressionAlgorithmNone); ok {
		t.Error("CompressionByID(none) returned a compression")
	}
}

func testKey(t *testing.T) [32]byte {
	t.Helper()
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		t.Fatalf("read key: %v", err)
	}
	return key
}

func TestEncryptionRoundTrip(t *testing.T) {
	key := testKey(t)
	sender, receiver := NewEncryption(key), NewEncryption(key)
	for i := 0; i < 5; i++ {
		in := []byte(fmt.Sprintf("batch %d", i))
		ciphertext := sender.Encrypt(bytes.Clone(in))
		if bytes.Contains(ciphertext, in) {
			t.Fatalf("ciphertext contains plaintext")
		}
		out, err := receiver.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("decrypt %d: %v", i, err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("got %q; want %q", out, in)
		}
	}
}

func TestEncryptionCounterDesync(t *testing.T) {
	key := testKey(t)
	sender, receiver := NewEncryption(key), NewEncryption(key)
	_ = sender.Encrypt([]byte("lost"))
	if _, err := receiver.Decrypt(sender.Encrypt([]byte("second"))); !errors.Is(err, ErrIntegrity) {
		t.Errorf("got %v; want ErrIntegrity", err)
	}
}

func TestEncryptionShortInput(t *testing.T) {
	if _, err := NewEncryption(testKey(t)).Decrypt([]byte{1, 2, 3}); !errors.Is(err, ErrIntegrity) {
		t.Errorf("got %v; want ErrIntegrity", err)
	}
}

func payloads(n int) [][]byte {
	p := make([][]byte, n)
	for i := range p {
		p[i] = bytes.Repeat([]byte{byte(i), byte(i >> 8)}, 1+i%50)
	}
	return p
}

func TestFrameRoundTrip(t *testing.T) {
	compressions := []struct {
		name string
		c    Compression
	}{
		{"none", nil},
		{"flate", FlateCompression},
		{"snappy", SnappyCompression},
	}
	for _, comp := range compressions {
		for _, encrypted := range []bool{false, true} {
			for _, threshold := range []int{0, 1 << 20} {
				name := fmt.Sprintf("%s/encrypted=%v/threshold=%d", comp.name, encrypted, threshold)
				t.Run(name, func(t *testing.T) {
					enc, dec := NewEncoder(), NewDecoder()
					if comp.c != nil {
						enc.EnableCompression(comp.c, threshold)
						dec.EnableCompression(comp.c)
					}
					if encrypted {
						key := testKey(t)
						enc.EnableEncryption(key)
						dec.EnableEncryption(key)
					}
					for _, n := range []int{1, 2, 100, MaximumBatchSize} {
						want := payloads(n)
						frame, err := enc.Encode(want)
						if err != nil {
							t.Fatalf("encode %d: %v", n, err)
						}
						got, err := dec.Decode(frame)
						if err != nil {
							t.Fatalf("decode %d: %v", n, err)
						}
						if len(got) != len(want) {
							t.Fatalf("got %d payloads; want %d", len(got), len(want))
						}
						for i := range want {
							if !bytes.Equal(got[i], want[i]) {
								t.Fatalf("payload %d: got %x; want %x", i, got[i], want[i])
							}
						}
					}
				})
			}
		}
	}
}

func TestFrameHeader(t *testing.T) {
	frame, err := NewEncoder().Encode([][]byte{{1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if frame[0] != 0xfe {
		t.Errorf("header: got %#x; want 0xfe", frame[0])
	}
	frame[0] = 0x00
	if _, err := NewDecoder().Decode(frame); !errors.Is(err, ErrFraming) {
		t.Errorf("got %v; want ErrFraming", err)
	}
	if _, err := NewDecoder().Decode(nil); !errors.Is(err, ErrFraming) {
		t.Errorf("empty frame: got %v; want ErrFraming", err)
	}
}

func TestFrameChecksumBitFlip(t *testing.T) {
	key := testKey(t)
	enc := NewEncoder()
	enc.EnableEncryption(key)
	frame, err := enc.Encode(payloads(3))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := len(frame) - checksumSize; i < len(frame); i++ {
		for bit := 0; bit < 8; bit++ {
			dec := NewDecoder()
			dec.EnableEncryption(key)
			tampered := bytes.Clone(frame)
			tampered[i] ^= 1 << bit
			got, err := dec.Decode(tampered)
			if !errors.Is(err, ErrIntegrity) {
				t.Fatalf("byte %d bit %d: got %v, %d payloads; want ErrIntegrity", i, bit, err, len(got))
			}
		}
	}
}

func TestFrameTooManyPayloads(t *testing.T) {
	if _, err := NewEncoder().Encode(payloads(MaximumBatchSize + 1)); !errors.Is(err, ErrProtocol) {
		t.Errorf("encode: got %v; want ErrProtocol", err)
	}

	// Build a batch of 769 payloads by hand, as a misbehaving peer would.
	frame := []byte{0xfe}
	for i := 0; i < MaximumBatchSize+1; i++ {
		frame = protocol.AppendVaruint32(frame, 1)
		frame = append(frame, byte(i))
	}
	if _, err := NewDecoder().Decode(frame); !errors.Is(err, ErrProtocol) {
		t.Errorf("decode: got %v; want ErrProtocol", err)
	}
}

func TestFrameMalformedLength(t *testing.T) {
	tests := map[string][]byte{
		"length past end":   {0xfe, 0x05, 0x01},
		"unterminated":      {0xfe, 0x80, 0x80},
		"varuint too long":  {0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		"second past end":   {0xfe, 0x01, 0x00, 0x02, 0x00},
		"huge length claim": {0xfe, 0xff, 0xff, 0xff, 0xff, 0x0f},
	}
	for name, frame := range tests {
		if _, err := NewDecoder().Decode(frame); !errors.Is(err, ErrFraming) {
			t.Errorf("%s: got %v; want ErrFraming", name, err)
		}
	}
}

func TestFrameCompressionMarker(t *testing.T) {
	dec := NewDecoder()
	dec.EnableCompression(FlateCompression)
	if _, err := dec.Decode([]byte{0xfe, 0x01, 0x00}); !errors.Is(err, ErrCompression) {
		t.Errorf("got %v; want ErrCompression", err)
	}
	if _, err := dec.Decode([]byte{0xfe}); !errors.Is(err, ErrCompression) {
		t.Errorf("missing marker: got %v; want ErrCompression", err)
	}
}
