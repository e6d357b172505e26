package nbt

import (
	"bufio"
	"fmt"
	"io"
)

// Decoder reads NBT values from an io.Reader.
type Decoder struct {
	r        reader
	encoding Encoding
	depth    int
}

// NewDecoder returns a Decoder reading from r using the encoding passed. Readers that do not implement
// io.ByteReader are wrapped in a bufio.Reader, which may read past the end of the value. Readers exposing a
// Len method, such as *bytes.Reader, have every length checked against the bytes they have left.
func NewDecoder(r io.Reader, encoding Encoding) *Decoder {
	d := &Decoder{encoding: encoding}
	if br, ok := r.(interface {
		io.Reader
		io.ByteReader
	}); ok {
		d.r.r = br
	} else {
		d.r.r = bufio.NewReader(r)
	}
	if l, ok := r.(interface{ Len() int }); ok {
		d.r.lenner = l
	}
	return d
}

// Decode reads a root value, discarding its name.
func (d *Decoder) Decode() (any, error) {
	_, v, err := d.DecodeNamed()
	return v, err
}

// DecodeNamed reads a root value and returns it with its name.
func (d *Decoder) DecodeNamed() (name string, v any, err error) {
	d.depth = 0
	t, err := d.r.readByte()
	if err != nil {
		return "", nil, err
	}
	tag := Tag(t)
	if tag == TagEnd || tag > TagInt64Array {
		return "", nil, fmt.Errorf("%w: root tag %v", ErrInvalidTag, tag)
	}
	if name, err = d.encoding.String(&d.r); err != nil {
		return "", nil, err
	}
	v, err = d.value(tag)
	return name, v, err
}

func (d *Decoder) value(tag Tag) (any, error) {
	switch tag {
	case TagByte:
		return d.r.readByte()
	case TagInt16:
		return d.encoding.Int16(&d.r)
	case TagInt32:
		return d.encoding.Int32(&d.r)
	case TagInt64:
		return d.encoding.Int64(&d.r)
	case TagFloat32:
		return d.encoding.Float32(&d.r)
	case TagFloat64:
		return d.encoding.Float64(&d.r)
	case TagString:
		return d.encoding.String(&d.r)
	case TagByteArray:
		n, err := d.length(1)
		if err != nil {
			return nil, err
		}
		return d.r.bytes(n)
	case TagInt32Array:
		n, err := d.length(1)
		if err != nil {
			return nil, err
		}
		a := make([]int32, n)
		for i := range a {
			if a[i], err = d.encoding.Int32(&d.r); err != nil {
				return nil, err
			}
		}
		return a, nil
	case TagInt64Array:
		n, err := d.length(1)
		if err != nil {
			return nil, err
		}
		a := make([]int64, n)
		for i := range a {
			if a[i], err = d.encoding.Int64(&d.r); err != nil {
				return nil, err
			}
		}
		return a, nil
	case TagList:
		return d.list()
	case TagCompound:
		return d.compound()
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidTag, tag)
}

func (d *Decoder) list() (any, error) {
	if err := d.push(); err != nil {
		return nil, err
	}
	defer d.pop()

	t, err := d.r.readByte()
	if err != nil {
		return nil, err
	}
	tag := Tag(t)
	if tag > TagInt64Array {
		return nil, fmt.Errorf("%w: list element %v", ErrInvalidTag, tag)
	}
	n, err := d.length(1)
	if err != nil {
		return nil, err
	}
	if tag == TagEnd {
		if n != 0 {
			return nil, fmt.Errorf("%w: %d elements of %v", ErrInvalidLength, n, tag)
		}
		return []any{}, nil
	}
	l := make([]any, n)
	for i := range l {
		if l[i], err = d.value(tag); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (d *Decoder) compound() (any, error) {
	if err := d.push(); err != nil {
		return nil, err
	}
	defer d.pop()

	m := map[string]any{}
	for {
		t, err := d.r.readByte()
		if err != nil {
			return nil, err
		}
		tag := Tag(t)
		if tag == TagEnd {
			return m, nil
		}
		if tag > TagInt64Array {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTag, tag)
		}
		name, err := d.encoding.String(&d.r)
		if err != nil {
			return nil, err
		}
		if _, ok := m[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, name)
		}
		if m[name], err = d.value(tag); err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
	}
}

// length reads an element count and checks it against the input left, assuming every element takes at least
// minSize bytes.
func (d *Decoder) length(minSize int64) (int64, error) {
	n32, err := d.encoding.Int32(&d.r)
	if err != nil {
		return 0, err
	}
	n := int64(n32)
	if n < 0 || n*minSize > d.r.remaining() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	return n, nil
}

func (d *Decoder) push() error {
	d.depth++
	if d.depth > maximumDepth {
		return ErrMaxDepth
	}
	return nil
}

func (d *Decoder) pop() {
	d.depth--
}
