package packet

import (
	"bytes"
	"fmt"

	"github.com/cooldogedev/prism/protocol"
)

const (
	// header is the header of every frame.
	header = 0xfe
	// MaximumBatchSize is the maximum amount of packets that may be sent in a single frame.
	MaximumBatchSize = 768
	// compressionMarkerNone marks a batch that was left uncompressed because it was below the threshold.
	compressionMarkerNone = 0xff
)

// Encoder encodes batches of packet payloads into frames. The zero value is not usable; use NewEncoder.
// Compression and encryption are off until enabled and cannot be disabled afterwards.
type Encoder struct {
	compression Compression
	threshold   int
	encrypt     *Encryption

	buf bytes.Buffer
}

// NewEncoder returns an Encoder with compression and encryption disabled.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EnableCompression enables compression of every batch that is at least threshold bytes long.
func (e *Encoder) EnableCompression(compression Compression, threshold int) {
	e.compression = compression
	e.threshold = threshold
}

// EnableEncryption enables encryption with the key passed.
func (e *Encoder) EnableEncryption(key [32]byte) {
	e.encrypt = NewEncryption(key)
}

// Encode encodes payloads into a single frame. Payloads are prefixed with their length, the batch is
// compressed, then encrypted, and finally prefixed with the frame header.
func (e *Encoder) Encode(payloads [][]byte) ([]byte, error) {
	if len(payloads) > MaximumBatchSize {
		return nil, fmt.Errorf("%w: batch of %d packets exceeds maximum of %d", ErrProtocol, len(payloads), MaximumBatchSize)
	}

	e.buf.Reset()
	var l [protocol.MaxVaruint32Size]byte
	for _, payload := range payloads {
		e.buf.Write(protocol.AppendVaruint32(l[:0], uint32(len(payload))))
		e.buf.Write(payload)
	}

	var data []byte
	if e.compression != nil {
		if e.buf.Len() >= e.threshold {
			compressed, err := e.compression.Compress(e.buf.Bytes())
			if err != nil {
				return nil, err
			}
			data = make([]byte, 0, 1+len(compressed)+checksumSize)
			data = append(data, byte(e.compression.EncodeCompression()))
			data = append(data, compressed...)
		} else {
			data = make([]byte, 0, 1+e.buf.Len()+checksumSize)
			data = append(data, compressionMarkerNone)
			data = append(data, e.buf.Bytes()...)
		}
	} else {
		data = make([]byte, 0, e.buf.Len()+checksumSize)
		data = append(data, e.buf.Bytes()...)
	}

	if e.encrypt != nil {
		data = e.encrypt.Encrypt(data)
	}

	frame := make([]byte, 1, 1+len(data))
	frame[0] = header
	return append(frame, data...), nil
}
