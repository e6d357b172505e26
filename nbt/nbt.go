// Package nbt implements the tagged binary tree format (Named Binary Tag) used for structured payloads
// embedded in packets.
//
// Values are represented by plain Go types:
//
//	TAG_Byte       uint8
//	TAG_Short      int16
//	TAG_Int        int32
//	TAG_Long       int64
//	TAG_Float      float32
//	TAG_Double     float64
//	TAG_Byte_Array []byte
//	TAG_String     string
//	TAG_List       []any
//	TAG_Compound   map[string]any
//	TAG_Int_Array  []int32
//	TAG_Long_Array []int64
//
// An empty list is always written with TAG_End as its element type and a length of zero, and is decoded back
// into an empty []any.
package nbt

import (
	"bytes"
	"errors"
	"fmt"
)

// Tag is the type identifier written in front of every value.
type Tag byte

const (
	TagEnd Tag = iota
	TagByte
	TagInt16
	TagInt32
	TagInt64
	TagFloat32
	TagFloat64
	TagByteArray
	TagString
	TagList
	TagCompound
	TagInt32Array
	TagInt64Array
)

// String ...
func (t Tag) String() string {
	switch t {
	case TagEnd:
		return "TAG_End"
	case TagByte:
		return "TAG_Byte"
	case TagInt16:
		return "TAG_Short"
	case TagInt32:
		return "TAG_Int"
	case TagInt64:
		return "TAG_Long"
	case TagFloat32:
		return "TAG_Float"
	case TagFloat64:
		return "TAG_Double"
	case TagByteArray:
		return "TAG_Byte_Array"
	case TagString:
		return "TAG_String"
	case TagList:
		return "TAG_List"
	case TagCompound:
		return "TAG_Compound"
	case TagInt32Array:
		return "TAG_Int_Array"
	case TagInt64Array:
		return "TAG_Long_Array"
	}
	return fmt.Sprintf("TAG_Unknown(%d)", byte(t))
}

// maximumDepth is the deepest nesting of lists and compounds accepted in either direction.
const maximumDepth = 512

var (
	// ErrInvalidTag is returned when a tag byte does not name a known type.
	ErrInvalidTag = errors.New("nbt: invalid tag")
	// ErrInvalidLength is returned for negative lengths or lengths that cannot be satisfied by the input.
	ErrInvalidLength = errors.New("nbt: invalid length")
	// ErrMaxDepth is returned when values are nested deeper than allowed.
	ErrMaxDepth = errors.New("nbt: maximum nesting depth exceeded")
	// ErrMixedList is returned when writing a list whose elements do not share one tag.
	ErrMixedList = errors.New("nbt: list elements have different tags")
	// ErrUnsupportedType is returned when writing a Go value with no NBT representation.
	ErrUnsupportedType = errors.New("nbt: unsupported type")
	// ErrDuplicateKey is returned when a compound holds the same name twice.
	ErrDuplicateKey = errors.New("nbt: duplicate compound key")
	// ErrVarintOverflow is returned when a varint in the network encoding does not terminate in time.
	ErrVarintOverflow = errors.New("nbt: varint overflows")
)

// Marshal encodes v, with an empty root name, using the encoding passed.
func Marshal(v any, encoding Encoding) ([]byte, error) {
	return MarshalNamed("", v, encoding)
}

// MarshalNamed encodes v with the root name passed.
func MarshalNamed(name string, v any, encoding Encoding) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := NewEncoder(buf, encoding).EncodeNamed(name, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single root value from data. Bytes following the root value are ignored.
func Unmarshal(data []byte, encoding Encoding) (any, error) {
	return NewDecoder(bytes.NewReader(data), encoding).Decode()
}

// TagOf returns the tag v is encoded with, or false if v has no NBT representation.
func TagOf(v any) (Tag, bool) {
	switch v.(type) {
	case uint8:
		return TagByte, true
	case int16:
		return TagInt16, true
	case int32:
		return TagInt32, true
	case int64:
		return TagInt64, true
	case float32:
		return TagFloat32, true
	case float64:
		return TagFloat64, true
	case []byte:
		return TagByteArray, true
	case string:
		return TagString, true
	case []any:
		return TagList, true
	case map[string]any:
		return TagCompound, true
	case []int32:
		return TagInt32Array, true
	case []int64:
		return TagInt64Array, true
	}
	return TagEnd, false
}
