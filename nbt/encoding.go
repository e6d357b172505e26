package nbt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoding is a binary representation of the NBT format. The two variants differ in how integers and string
// lengths are written; bytes, shorts and floating point values are fixed-width little-endian in both.
type Encoding interface {
	Int16(r *reader) (int16, error)
	Int32(r *reader) (int32, error)
	Int64(r *reader) (int64, error)
	Float32(r *reader) (float32, error)
	Float64(r *reader) (float64, error)
	String(r *reader) (string, error)

	WriteInt16(w *bytes.Buffer, x int16)
	WriteInt32(w *bytes.Buffer, x int32)
	WriteInt64(w *bytes.Buffer, x int64)
	WriteFloat32(w *bytes.Buffer, x float32)
	WriteFloat64(w *bytes.Buffer, x float64)
	WriteString(w *bytes.Buffer, x string) error
}

var (
	// LittleEndian is the legacy encoding: fixed-width little-endian integers and strings prefixed with a
	// little-endian uint16 length. It is used on disk and in some older packet fields.
	LittleEndian littleEndian
	// NetworkLittleEndian is the encoding used in packets: TAG_Int and TAG_Long are zig-zag varints and string
	// lengths are varuint32s.
	NetworkLittleEndian networkLittleEndian
)

type littleEndian struct{}

// Int16 ...
func (littleEndian) Int16(r *reader) (int16, error) {
	b, err := r.fixed(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// Int32 ...
func (littleEndian) Int32(r *reader) (int32, error) {
	b, err := r.fixed(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Int64 ...
func (littleEndian) Int64(r *reader) (int64, error) {
	b, err := r.fixed(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// Float32 ...
func (littleEndian) Float32(r *reader) (float32, error) {
	b, err := r.fixed(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// Float64 ...
func (littleEndian) Float64(r *reader) (float64, error) {
	b, err := r.fixed(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// String ...
func (e littleEndian) String(r *reader) (string, error) {
	b, err := r.fixed(2)
	if err != nil {
		return "", err
	}
	data, err := r.bytes(int64(binary.LittleEndian.Uint16(b)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteInt16 ...
func (littleEndian) WriteInt16(w *bytes.Buffer, x int16) {
	_ = binary.Write(w, binary.LittleEndian, x)
}

// WriteInt32 ...
func (littleEndian) WriteInt32(w *bytes.Buffer, x int32) {
	_ = binary.Write(w, binary.LittleEndian, x)
}

// WriteInt64 ...
func (littleEndian) WriteInt64(w *bytes.Buffer, x int64) {
	_ = binary.Write(w, binary.LittleEndian, x)
}

// WriteFloat32 ...
func (littleEndian) WriteFloat32(w *bytes.Buffer, x float32) {
	_ = binary.Write(w, binary.LittleEndian, x)
}

// WriteFloat64 ...
func (littleEndian) WriteFloat64(w *bytes.Buffer, x float64) {
	_ = binary.Write(w, binary.LittleEndian, x)
}

// WriteString ...
func (littleEndian) WriteString(w *bytes.Buffer, x string) error {
	if len(x) > math.MaxUint16 {
		return fmt.Errorf("%w: string of %d bytes exceeds %d", ErrInvalidLength, len(x), math.MaxUint16)
	}
	_ = binary.Write(w, binary.LittleEndian, uint16(len(x)))
	w.WriteString(x)
	return nil
}

type networkLittleEndian struct {
	littleEndian
}

// Int32 ...
func (networkLittleEndian) Int32(r *reader) (int32, error) {
	ux, err := r.varuint(5)
	if err != nil {
		return 0, err
	}
	x := int32(uint32(ux) >> 1)
	if ux&1 != 0 {
		x = ^x
	}
	return x, nil
}

// Int64 ...
func (networkLittleEndian) Int64(r *reader) (int64, error) {
	ux, err := r.varuint(10)
	if err != nil {
		return 0, err
	}
	x := int64(ux >> 1)
	if ux&1 != 0 {
		x = ^x
	}
	return x, nil
}

// String ...
func (networkLittleEndian) String(r *reader) (string, error) {
	l, err := r.varuint(5)
	if err != nil {
		return "", err
	}
	data, err := r.bytes(int64(uint32(l)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteInt32 ...
func (networkLittleEndian) WriteInt32(w *bytes.Buffer, x int32) {
	ux := uint32(x) << 1
	if x < 0 {
		ux = ^ux
	}
	writeVaruint(w, uint64(ux))
}

// WriteInt64 ...
func (networkLittleEndian) WriteInt64(w *bytes.Buffer, x int64) {
	ux := uint64(x) << 1
	if x < 0 {
		ux = ^ux
	}
	writeVaruint(w, ux)
}

// WriteString ...
func (networkLittleEndian) WriteString(w *bytes.Buffer, x string) error {
	if uint64(len(x)) > math.MaxInt32 {
		return fmt.Errorf("%w: string of %d bytes exceeds %d", ErrInvalidLength, len(x), math.MaxInt32)
	}
	writeVaruint(w, uint64(len(x)))
	w.WriteString(x)
	return nil
}

func writeVaruint(w *bytes.Buffer, x uint64) {
	for x >= 0x80 {
		w.WriteByte(byte(x) | 0x80)
		x >>= 7
	}
	w.WriteByte(byte(x))
}

// maximumAllocation bounds single allocations when the size of the input is not known up front.
const maximumAllocation = 1 << 24

// reader wraps the input of a Decoder. If the underlying reader exposes its remaining length, every length
// read from the input is checked against it before anything is allocated.
type reader struct {
	r interface {
		io.Reader
		io.ByteReader
	}
	lenner interface{ Len() int }
}

// remaining returns the bytes left in the input, or maximumAllocation if unknown.
func (r *reader) remaining() int64 {
	if r.lenner != nil {
		return int64(r.lenner.Len())
	}
	return maximumAllocation
}

func (r *reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, unexpected(err)
	}
	return b, nil
}

func (r *reader) fixed(n int) ([]byte, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:n]); err != nil {
		return nil, unexpected(err)
	}
	return b[:n], nil
}

func (r *reader) bytes(n int64) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, ErrInvalidLength
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, unexpected(err)
	}
	return b, nil
}

func (r *reader) varuint(maxBytes int) (uint64, error) {
	var v uint64
	for i := 0; i < maxBytes; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarintOverflow
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
