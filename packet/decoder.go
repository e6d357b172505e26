package packet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cooldogedev/prism/protocol"
)

// Decoder decodes frames into the packet payloads they carry. Like Encoder, compression and encryption are off
// until enabled. A Decoder must see every frame received on a connection, in order, for its encryption
// counter to stay in sync with the peer.
type Decoder struct {
	compression Compression
	decrypt     *Encryption
}

// NewDecoder returns a Decoder with compression and encryption disabled.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// EnableCompression enables decompression of batches. The compression passed is used for batches marked
// with its ID; batches may also be marked as sent uncompressed.
func (d *Decoder) EnableCompression(compression Compression) {
	d.compression = compression
}

// EnableEncryption enables decryption with the key passed.
func (d *Decoder) EnableEncryption(key [32]byte) {
	d.decrypt = NewEncryption(key)
}

// Decode decodes a frame into the packet payloads it holds. The frame is decrypted, then decompressed and
// finally split. The returned payloads may share memory with frame.
func (d *Decoder) Decode(frame []byte) ([][]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrFraming)
	}
	if frame[0] != header {
		return nil, fmt.Errorf("%w: invalid frame header %#x, expected %#x", ErrFraming, frame[0], header)
	}
	data := frame[1:]

	if d.decrypt != nil {
		var err error
		if data, err = d.decrypt.Decrypt(data); err != nil {
			return nil, err
		}
	}

	if d.compression != nil {
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: batch is missing its compression marker", ErrCompression)
		}
		switch marker := data[0]; {
		case marker == compressionMarkerNone:
			data = data[1:]
		case uint16(marker) == d.compression.EncodeCompression():
			var err error
			if data, err = d.compression.Decompress(data[1:]); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected compression marker %#x", ErrCompression, marker)
		}
	}
	return split(data)
}

// split splits a batch into the length-prefixed payloads it consists of.
func split(data []byte) ([][]byte, error) {
	r := bytes.NewReader(data)
	var payloads [][]byte
	for r.Len() > 0 {
		if len(payloads) == MaximumBatchSize {
			return nil, fmt.Errorf("%w: batch holds more than %d packets", ErrProtocol, MaximumBatchSize)
		}
		l, err := protocol.ReadVaruint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read packet length: %w", ErrFraming, err)
		}
		if int64(l) > int64(r.Len()) {
			return nil, fmt.Errorf("%w: packet length %d exceeds remaining %d bytes", ErrFraming, l, r.Len())
		}
		offset := len(data) - r.Len()
		payloads = append(payloads, data[offset:offset+int(l)])
		_, _ = r.Seek(int64(l), io.SeekCurrent)
	}
	return payloads, nil
}
