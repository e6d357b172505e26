package protocol

import (
	"errors"
	"io"
)

const (
	// MaxVaruint32Size is the maximum amount of bytes a varuint32 may occupy.
	MaxVaruint32Size = 5
	// MaxVaruint64Size is the maximum amount of bytes a varuint64 may occupy.
	MaxVaruint64Size = 10
)

// ErrVarintOverflow is returned when a variable-length integer does not terminate within the maximum amount
// of bytes allowed for its size.
var ErrVarintOverflow = errors.New("varint overflows")

// AppendVaruint32 appends x to dst as a varuint32.
func AppendVaruint32(dst []byte, x uint32) []byte {
	for x >= 0x80 {
		dst = append(dst, byte(x)|0x80)
		x >>= 7
	}
	return append(dst, byte(x))
}

// AppendVaruint64 appends x to dst as a varuint64.
func AppendVaruint64(dst []byte, x uint64) []byte {
	for x >= 0x80 {
		dst = append(dst, byte(x)|0x80)
		x >>= 7
	}
	return append(dst, byte(x))
}

// AppendVarint32 appends the zig-zag encoded x to dst.
func AppendVarint32(dst []byte, x int32) []byte {
	ux := uint32(x) << 1
	if x < 0 {
		ux = ^ux
	}
	return AppendVaruint32(dst, ux)
}

// AppendVarint64 appends the zig-zag encoded x to dst.
func AppendVarint64(dst []byte, x int64) []byte {
	ux := uint64(x) << 1
	if x < 0 {
		ux = ^ux
	}
	return AppendVaruint64(dst, ux)
}

// ReadVaruint32 reads a varuint32 from r. At most five bytes are consumed; bits beyond the 32nd carried by the
// fifth byte are discarded.
func ReadVaruint32(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < MaxVaruint32Size*7; i += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eof(err)
		}
		v |= uint32(b&0x7f) << i
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarintOverflow
}

// ReadVaruint64 reads a varuint64 from r, consuming at most ten bytes.
func ReadVaruint64(r io.ByteReader) (uint64, error) {
	var v uint64
	for i := 0; i < MaxVaruint64Size*7; i += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eof(err)
		}
		v |= uint64(b&0x7f) << i
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarintOverflow
}

// ReadVarint32 reads a zig-zag encoded varint32 from r.
func ReadVarint32(r io.ByteReader) (int32, error) {
	ux, err := ReadVaruint32(r)
	if err != nil {
		return 0, err
	}
	x := int32(ux >> 1)
	if ux&1 != 0 {
		x = ^x
	}
	return x, nil
}

// ReadVarint64 reads a zig-zag encoded varint64 from r.
func ReadVarint64(r io.ByteReader) (int64, error) {
	ux, err := ReadVaruint64(r)
	if err != nil {
		return 0, err
	}
	x := int64(ux >> 1)
	if ux&1 != 0 {
		x = ^x
	}
	return x, nil
}

// eof turns a plain io.EOF met halfway through a value into io.ErrUnexpectedEOF.
func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
