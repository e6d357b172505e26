package protocol

import (
	"github.com/cooldogedev/prism/nbt"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// IO represents a packet IO direction. Implementations of this interface are Reader and Writer. Reader reads
// data from the input stream into the pointers passed, whereas Writer writes the values the pointers point to
// to the output stream.
type IO interface {
	Uint8(x *uint8)
	Bool(x *bool)
	Uint16(x *uint16)
	Int16(x *int16)
	Uint32(x *uint32)
	Int32(x *int32)
	BEInt32(x *int32)
	Uint64(x *uint64)
	Int64(x *int64)
	Float32(x *float32)
	Float64(x *float64)
	Varuint32(x *uint32)
	Varint32(x *int32)
	Varuint64(x *uint64)
	Varint64(x *int64)
	String(x *string)
	LegacyString(x *string)
	ByteSlice(x *[]byte)
	Bytes(x *[]byte)
	Vec3(x *mgl32.Vec3)
	UUID(x *uuid.UUID)
	NBT(x *map[string]any, encoding nbt.Encoding)
	SliceLength(x *uint32)
}

// Slice reads/writes a varuint32 prefixed slice of T, using f to read/write every element.
func Slice[T any](io IO, x *[]T, f func(io IO, x *T)) {
	l := uint32(len(*x))
	io.SliceLength(&l)
	if uint32(len(*x)) != l {
		*x = make([]T, l)
	}
	for i := range *x {
		f(io, &(*x)[i])
	}
}

// Marshaler is a type that can be written to and read from an IO.
type Marshaler interface {
	Marshal(io IO)
}

// SliceOf reads/writes a varuint32 prefixed slice of Marshalers.
func SliceOf[T any, S interface {
	*T
	Marshaler
}](io IO, x *[]T) {
	Slice(io, x, func(io IO, x *T) {
		S(x).Marshal(io)
	})
}
