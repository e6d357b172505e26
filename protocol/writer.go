package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cooldogedev/prism/nbt"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Writer implements writing primitive values to a bytes.Buffer. Writing only fails for NBT values that cannot
// be encoded and for legacy strings that do not fit their length prefix. The first such error is kept and
// returned by Err.
type Writer struct {
	buf     *bytes.Buffer
	scratch [binary.MaxVarintLen64]byte
	err     error
}

// NewWriter creates a new Writer that writes to buf.
func NewWriter(buf *bytes.Buffer) *Writer {
	return &Writer{buf: buf}
}

// Err returns the first error met while writing, if any.
func (w *Writer) Err() error {
	return w.err
}

// Uint8 writes a uint8 to the underlying buffer.
func (w *Writer) Uint8(x *uint8) {
	w.buf.WriteByte(*x)
}

// Bool writes a bool as a single byte.
func (w *Writer) Bool(x *bool) {
	if *x {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// Uint16 writes a little-endian uint16.
func (w *Writer) Uint16(x *uint16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(w.scratch[:0], *x))
}

// Int16 writes a little-endian int16.
func (w *Writer) Int16(x *int16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(w.scratch[:0], uint16(*x)))
}

// Uint32 writes a little-endian uint32.
func (w *Writer) Uint32(x *uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(w.scratch[:0], *x))
}

// Int32 writes a little-endian int32.
func (w *Writer) Int32(x *int32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(w.scratch[:0], uint32(*x)))
}

// BEInt32 writes a big-endian int32. Only the protocol version fields of the handshake packets use it.
func (w *Writer) BEInt32(x *int32) {
	w.buf.Write(binary.BigEndian.AppendUint32(w.scratch[:0], uint32(*x)))
}

// Uint64 writes a little-endian uint64.
func (w *Writer) Uint64(x *uint64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(w.scratch[:0], *x))
}

// Int64 writes a little-endian int64.
func (w *Writer) Int64(x *int64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(w.scratch[:0], uint64(*x)))
}

// Float32 writes a little-endian float32.
func (w *Writer) Float32(x *float32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(w.scratch[:0], math.Float32bits(*x)))
}

// Float64 writes a little-endian float64.
func (w *Writer) Float64(x *float64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(w.scratch[:0], math.Float64bits(*x)))
}

// Varuint32 writes a uint32 as 1-5 bytes.
func (w *Writer) Varuint32(x *uint32) {
	w.buf.Write(AppendVaruint32(w.scratch[:0], *x))
}

// Varint32 writes a zig-zag encoded int32 as 1-5 bytes.
func (w *Writer) Varint32(x *int32) {
	w.buf.Write(AppendVarint32(w.scratch[:0], *x))
}

// Varuint64 writes a uint64 as 1-10 bytes.
func (w *Writer) Varuint64(x *uint64) {
	w.buf.Write(AppendVaruint64(w.scratch[:0], *x))
}

// Varint64 writes a zig-zag encoded int64 as 1-10 bytes.
func (w *Writer) Varint64(x *int64) {
	w.buf.Write(AppendVarint64(w.scratch[:0], *x))
}

// String writes a string prefixed with its varuint32 length.
func (w *Writer) String(x *string) {
	l := uint32(len(*x))
	w.Varuint32(&l)
	w.buf.WriteString(*x)
}

// LegacyString writes a string prefixed with its length as a little-endian uint16.
func (w *Writer) LegacyString(x *string) {
	if len(*x) > math.MaxUint16 {
		if w.err == nil {
			w.err = fmt.Errorf("%w: legacy string of %d bytes exceeds %d", ErrLength, len(*x), math.MaxUint16)
		}
		return
	}
	l := uint16(len(*x))
	w.Uint16(&l)
	w.buf.WriteString(*x)
}

// ByteSlice writes a byte slice prefixed with its varuint32 length.
func (w *Writer) ByteSlice(x *[]byte) {
	l := uint32(len(*x))
	w.Varuint32(&l)
	w.buf.Write(*x)
}

// Bytes writes x without a length prefix.
func (w *Writer) Bytes(x *[]byte) {
	w.buf.Write(*x)
}

// Vec3 writes the three float32 components of x.
func (w *Writer) Vec3(x *mgl32.Vec3) {
	w.Float32(&x[0])
	w.Float32(&x[1])
	w.Float32(&x[2])
}

// UUID writes x as two little-endian uint64 halves.
func (w *Writer) UUID(x *uuid.UUID) {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = x[7-i]
		b[8+i] = x[15-i]
	}
	w.buf.Write(b[:])
}

// NBT writes a compound tag using the encoding passed.
func (w *Writer) NBT(x *map[string]any, encoding nbt.Encoding) {
	if w.err != nil {
		return
	}
	m := *x
	if m == nil {
		m = map[string]any{}
	}
	if err := nbt.NewEncoder(w.buf, encoding).Encode(m); err != nil {
		w.err = err
	}
}

// SliceLength writes the length of a slice.
func (w *Writer) SliceLength(x *uint32) {
	w.Varuint32(x)
}
