package packet

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
)

const (
	// CompressionAlgorithmFlate is the ID of FlateCompression in the NetworkSettings packet.
	CompressionAlgorithmFlate uint16 = iota
	// CompressionAlgorithmSnappy is the ID of SnappyCompression in the NetworkSettings packet.
	CompressionAlgorithmSnappy
	// CompressionAlgorithmNone disables compression.
	CompressionAlgorithmNone uint16 = 0xffff
)

// maximumDecompressedSize caps the size a single batch may decompress to.
const maximumDecompressedSize = 16 * 1024 * 1024

// Compression represents a whole-buffer compression algorithm used to compress batches.
type Compression interface {
	// EncodeCompression returns the ID of the algorithm as sent in the NetworkSettings packet.
	EncodeCompression() uint16
	// Compress compresses the data passed and returns it.
	Compress(decompressed []byte) ([]byte, error)
	// Decompress decompresses the data passed and returns it. Malformed input results in an error wrapping
	// ErrCompression.
	Decompress(compressed []byte) ([]byte, error)
}

var (
	// FlateCompression is raw DEFLATE compression.
	FlateCompression flateCompression
	// SnappyCompression is Snappy compression using the block format.
	SnappyCompression snappyCompression
)

// CompressionByID returns the Compression with the ID passed. False is returned for CompressionAlgorithmNone
// and unknown IDs.
func CompressionByID(id uint16) (Compression, bool) {
	switch id {
	case CompressionAlgorithmFlate:
		return FlateCompression, true
	case CompressionAlgorithmSnappy:
		return SnappyCompression, true
	}
	return nil, false
}

// CompressionByName returns the Compression matching a configuration name: "flate" or "snappy".
func CompressionByName(name string) (Compression, bool) {
	switch name {
	case "flate", "deflate":
		return FlateCompression, true
	case "snappy":
		return SnappyCompression, true
	}
	return nil, false
}

type flateCompression struct{}

var flateWriterPool = sync.Pool{
	New: func() any {
		w, _ := flate.NewWriter(io.Discard, 6)
		return w
	},
}

// EncodeCompression ...
func (flateCompression) EncodeCompression() uint16 {
	return CompressionAlgorithmFlate
}

// Compress ...
func (flateCompression) Compress(decompressed []byte) ([]byte, error) {
	compressed := bytes.NewBuffer(make([]byte, 0, len(decompressed)/2))
	w := flateWriterPool.Get().(*flate.Writer)
	defer flateWriterPool.Put(w)

	w.Reset(compressed)
	if _, err := w.Write(decompressed); err != nil {
		return nil, fmt.Errorf("%w: flate: %w", ErrCompression, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: flate: %w", ErrCompression, err)
	}
	return compressed.Bytes(), nil
}

// Decompress ...
func (flateCompression) Decompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	decompressed, err := io.ReadAll(io.LimitReader(r, maximumDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: flate: %w", ErrCompression, err)
	}
	if len(decompressed) > maximumDecompressedSize {
		return nil, fmt.Errorf("%w: flate: decompressed size exceeds %d bytes", ErrCompression, maximumDecompressedSize)
	}
	return decompressed, nil
}

type snappyCompression struct{}

// EncodeCompression ...
func (snappyCompression) EncodeCompression() uint16 {
	return CompressionAlgorithmSnappy
}

// Compress ...
func (snappyCompression) Compress(decompressed []byte) ([]byte, error) {
	return snappy.Encode(nil, decompressed), nil
}

// Decompress ...
func (snappyCompression) Decompress(compressed []byte) ([]byte, error) {
	l, err := snappy.DecodedLen(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %w", ErrCompression, err)
	}
	if l > maximumDecompressedSize {
		return nil, fmt.Errorf("%w: snappy: decompressed size %d exceeds %d bytes", ErrCompression, l, maximumDecompressedSize)
	}
	decompressed, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %w", ErrCompression, err)
	}
	return decompressed, nil
}
