package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cooldogedev/prism/nbt"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ErrLength is returned when a length prefix points past the end of the input.
var ErrLength = errors.New("length exceeds remaining input")

// Reader implements reading primitive values from a byte slice. Reads never panic: the first failure is kept
// and every read that follows is a no-op that leaves its target untouched. Callers check Err once they are
// done reading.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader creates a new Reader that reads from data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error met while reading, if any.
func (r *Reader) Err() error {
	return r.err
}

// Len returns the amount of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.off
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

// Uint8 reads a uint8.
func (r *Reader) Uint8(x *uint8) {
	if b, ok := r.next(1); ok {
		*x = b[0]
	}
}

// Bool reads a bool from a single byte.
func (r *Reader) Bool(x *bool) {
	if b, ok := r.next(1); ok {
		*x = b[0] != 0
	}
}

// Uint16 reads a little-endian uint16.
func (r *Reader) Uint16(x *uint16) {
	if b, ok := r.next(2); ok {
		*x = binary.LittleEndian.Uint16(b)
	}
}

// Int16 reads a little-endian int16.
func (r *Reader) Int16(x *int16) {
	if b, ok := r.next(2); ok {
		*x = int16(binary.LittleEndian.Uint16(b))
	}
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32(x *uint32) {
	if b, ok := r.next(4); ok {
		*x = binary.LittleEndian.Uint32(b)
	}
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32(x *int32) {
	if b, ok := r.next(4); ok {
		*x = int32(binary.LittleEndian.Uint32(b))
	}
}

// BEInt32 reads a big-endian int32.
func (r *Reader) BEInt32(x *int32) {
	if b, ok := r.next(4); ok {
		*x = int32(binary.BigEndian.Uint32(b))
	}
}

// Uint64 reads a little-endian uint64.
func (r *Reader) Uint64(x *uint64) {
	if b, ok := r.next(8); ok {
		*x = binary.LittleEndian.Uint64(b)
	}
}

// Int64 reads a little-endian int64.
func (r *Reader) Int64(x *int64) {
	if b, ok := r.next(8); ok {
		*x = int64(binary.LittleEndian.Uint64(b))
	}
}

// Float32 reads a little-endian float32.
func (r *Reader) Float32(x *float32) {
	if b, ok := r.next(4); ok {
		*x = math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
}

// Float64 reads a little-endian float64.
func (r *Reader) Float64(x *float64) {
	if b, ok := r.next(8); ok {
		*x = math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
}

// Varuint32 reads up to 5 bytes as a uint32.
func (r *Reader) Varuint32(x *uint32) {
	if r.err != nil {
		return
	}
	v, err := ReadVaruint32(r)
	if err != nil {
		r.fail("varuint32", err)
		return
	}
	*x = v
}

// Varint32 reads up to 5 bytes as a zig-zag encoded int32.
func (r *Reader) Varint32(x *int32) {
	if r.err != nil {
		return
	}
	v, err := ReadVarint32(r)
	if err != nil {
		r.fail("varint32", err)
		return
	}
	*x = v
}

// Varuint64 reads up to 10 bytes as a uint64.
func (r *Reader) Varuint64(x *uint64) {
	if r.err != nil {
		return
	}
	v, err := ReadVaruint64(r)
	if err != nil {
		r.fail("varuint64", err)
		return
	}
	*x = v
}

// Varint64 reads up to 10 bytes as a zig-zag encoded int64.
func (r *Reader) Varint64(x *int64) {
	if r.err != nil {
		return
	}
	v, err := ReadVarint64(r)
	if err != nil {
		r.fail("varint64", err)
		return
	}
	*x = v
}

// String reads a string prefixed with its varuint32 length.
func (r *Reader) String(x *string) {
	var l uint32
	r.Varuint32(&l)
	if b, ok := r.next(int(l)); ok {
		*x = string(b)
	}
}

// LegacyString reads a string prefixed with its length as a little-endian uint16.
func (r *Reader) LegacyString(x *string) {
	var l uint16
	r.Uint16(&l)
	if b, ok := r.next(int(l)); ok {
		*x = string(b)
	}
}

// ByteSlice reads a byte slice prefixed with its varuint32 length.
func (r *Reader) ByteSlice(x *[]byte) {
	var l uint32
	r.Varuint32(&l)
	if b, ok := r.next(int(l)); ok {
		*x = bytes.Clone(b)
	}
}

// Bytes reads all remaining bytes.
func (r *Reader) Bytes(x *[]byte) {
	if b, ok := r.next(r.Len()); ok {
		*x = bytes.Clone(b)
	}
}

// Vec3 reads three float32 components.
func (r *Reader) Vec3(x *mgl32.Vec3) {
	r.Float32(&x[0])
	r.Float32(&x[1])
	r.Float32(&x[2])
}

// UUID reads a UUID written as two little-endian uint64 halves.
func (r *Reader) UUID(x *uuid.UUID) {
	b, ok := r.next(16)
	if !ok {
		return
	}
	for i := 0; i < 8; i++ {
		x[i] = b[7-i]
		x[8+i] = b[15-i]
	}
}

// NBT reads a compound tag using the encoding passed.
func (r *Reader) NBT(x *map[string]any, encoding nbt.Encoding) {
	if r.err != nil {
		return
	}
	br := bytes.NewReader(r.data[r.off:])
	v, err := nbt.NewDecoder(br, encoding).Decode()
	if err != nil {
		r.fail("nbt", err)
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		r.fail("nbt", fmt.Errorf("root tag is %T, not a compound", v))
		return
	}
	r.off = len(r.data) - br.Len()
	*x = m
}

// SliceLength reads the length of a slice. Every element takes at least one byte, so lengths larger than the
// remaining input are rejected before anything is allocated.
func (r *Reader) SliceLength(x *uint32) {
	var l uint32
	r.Varuint32(&l)
	if r.err != nil {
		return
	}
	if int64(l) > int64(r.Len()) {
		r.fail("slice length", fmt.Errorf("%w: %d > %d", ErrLength, l, r.Len()))
		return
	}
	*x = l
}

// next returns the next n bytes and advances the offset.
func (r *Reader) next(n int) ([]byte, bool) {
	if r.err != nil {
		return nil, false
	}
	if n < 0 || n > r.Len() {
		r.fail("read", fmt.Errorf("%w: need %d bytes, have %d", ErrLength, n, r.Len()))
		return nil, false
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, true
}

func (r *Reader) fail(what string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("read %s at offset %d: %w", what, r.off, err)
	}
}
