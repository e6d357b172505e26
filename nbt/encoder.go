package nbt

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
)

// Encoder writes NBT values to an io.Writer.
type Encoder struct {
	w        io.Writer
	encoding Encoding
	buf      bytes.Buffer
	depth    int
}

// NewEncoder returns an Encoder that writes to w using the encoding passed.
func NewEncoder(w io.Writer, encoding Encoding) *Encoder {
	return &Encoder{w: w, encoding: encoding}
}

// Encode writes v as a root value with an empty name.
func (e *Encoder) Encode(v any) error {
	return e.EncodeNamed("", v)
}

// EncodeNamed writes v as a root value with the name passed. Nothing is written to the underlying writer if
// v cannot be encoded.
func (e *Encoder) EncodeNamed(name string, v any) error {
	e.buf.Reset()
	e.depth = 0

	tag, ok := TagOf(v)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	e.buf.WriteByte(byte(tag))
	if err := e.encoding.WriteString(&e.buf, name); err != nil {
		return err
	}
	if err := e.value(tag, v); err != nil {
		return err
	}
	_, err := e.w.Write(e.buf.Bytes())
	return err
}

func (e *Encoder) value(tag Tag, v any) error {
	switch tag {
	case TagByte:
		e.buf.WriteByte(v.(uint8))
	case TagInt16:
		e.encoding.WriteInt16(&e.buf, v.(int16))
	case TagInt32:
		e.encoding.WriteInt32(&e.buf, v.(int32))
	case TagInt64:
		e.encoding.WriteInt64(&e.buf, v.(int64))
	case TagFloat32:
		e.encoding.WriteFloat32(&e.buf, v.(float32))
	case TagFloat64:
		e.encoding.WriteFloat64(&e.buf, v.(float64))
	case TagString:
		return e.encoding.WriteString(&e.buf, v.(string))
	case TagByteArray:
		b := v.([]byte)
		if err := e.length(len(b)); err != nil {
			return err
		}
		e.buf.Write(b)
	case TagInt32Array:
		a := v.([]int32)
		if err := e.length(len(a)); err != nil {
			return err
		}
		for _, x := range a {
			e.encoding.WriteInt32(&e.buf, x)
		}
	case TagInt64Array:
		a := v.([]int64)
		if err := e.length(len(a)); err != nil {
			return err
		}
		for _, x := range a {
			e.encoding.WriteInt64(&e.buf, x)
		}
	case TagList:
		return e.list(v.([]any))
	case TagCompound:
		return e.compound(v.(map[string]any))
	default:
		return fmt.Errorf("%w: %v", ErrInvalidTag, tag)
	}
	return nil
}

func (e *Encoder) list(l []any) error {
	if err := e.push(); err != nil {
		return err
	}
	defer e.pop()

	if len(l) == 0 {
		e.buf.WriteByte(byte(TagEnd))
		e.encoding.WriteInt32(&e.buf, 0)
		return nil
	}
	tag, ok := TagOf(l[0])
	if !ok {
		return fmt.Errorf("%w: list element %T", ErrUnsupportedType, l[0])
	}
	e.buf.WriteByte(byte(tag))
	if err := e.length(len(l)); err != nil {
		return err
	}
	for i, v := range l {
		if t, _ := TagOf(v); t != tag {
			return fmt.Errorf("%w: element %d is %T, list holds %v", ErrMixedList, i, v, tag)
		}
		if err := e.value(tag, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) compound(m map[string]any) error {
	if err := e.push(); err != nil {
		return err
	}
	defer e.pop()

	// Keys are written in sorted order so that equal compounds always produce equal bytes.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m[k]
		tag, ok := TagOf(v)
		if !ok {
			return fmt.Errorf("%w: %q is %T", ErrUnsupportedType, k, v)
		}
		e.buf.WriteByte(byte(tag))
		if err := e.encoding.WriteString(&e.buf, k); err != nil {
			return fmt.Errorf("key: %w", err)
		}
		if err := e.value(tag, v); err != nil {
			return fmt.Errorf("%q: %w", k, err)
		}
	}
	e.buf.WriteByte(byte(TagEnd))
	return nil
}

func (e *Encoder) length(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	e.encoding.WriteInt32(&e.buf, int32(n))
	return nil
}

func (e *Encoder) push() error {
	e.depth++
	if e.depth > maximumDepth {
		return ErrMaxDepth
	}
	return nil
}

func (e *Encoder) pop() {
	e.depth--
}
