package nbt

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	gtnbt "github.com/sandertv/gophertunnel/minecraft/nbt"
)

var encodings = []struct {
	name     string
	encoding Encoding
}{
	{"little endian", LittleEndian},
	{"network little endian", NetworkLittleEndian},
}

func sampleCompound() map[string]any {
	return map[string]any{
		"byte":   uint8(200),
		"short":  int16(-1234),
		"int":    int32(-70000),
		"long":   int64(1) << 42,
		"float":  float32(3.5),
		"double": -0.125,
		"string": "minecraft:stone",
		"bytes":  []byte{0, 1, 2, 255},
		"ints":   []int32{-1, 0, 1 << 30},
		"longs":  []int64{-1 << 60, 7},
		"list":   []any{int32(1), int32(2), int32(3)},
		"nested": map[string]any{
			"name":  "inner",
			"lists": []any{[]any{"a", "b"}, []any{"c"}},
			"structs": []any{
				map[string]any{"x": int32(1)},
				map[string]any{"x": int32(2), "y": float32(1)},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, e := range encodings {
		t.Run(e.name, func(t *testing.T) {
			want := sampleCompound()
			data, err := Marshal(want, e.encoding)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got, err := Unmarshal(data, e.encoding)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %#v; want %#v", got, want)
			}
		})
	}
}

func TestRoundTripScalarRoot(t *testing.T) {
	for _, e := range encodings {
		for _, v := range []any{uint8(1), int16(2), int32(-3), int64(4), float32(5), 6.0, "seven", []int64{8}} {
			data, err := Marshal(v, e.encoding)
			if err != nil {
				t.Fatalf("%s: marshal %T: %v", e.name, v, err)
			}
			got, err := Unmarshal(data, e.encoding)
			if err != nil {
				t.Fatalf("%s: unmarshal %T: %v", e.name, v, err)
			}
			if !reflect.DeepEqual(got, v) {
				t.Errorf("%s: got %#v; want %#v", e.name, got, v)
			}
		}
	}
}

func TestNamedRoot(t *testing.T) {
	data, err := MarshalNamed("root", map[string]any{"a": uint8(1)}, LittleEndian)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	name, _, err := NewDecoder(bytes.NewReader(data), LittleEndian).DecodeNamed()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name != "root" {
		t.Errorf("got name %q; want root", name)
	}
}

func TestEncodingDifferences(t *testing.T) {
	v := map[string]any{"i": int32(1)}
	legacy, _ := Marshal(v, LittleEndian)
	network, _ := Marshal(v, NetworkLittleEndian)

	wantLegacy := []byte{byte(TagCompound), 0, 0, byte(TagInt32), 1, 0, 'i', 1, 0, 0, 0, byte(TagEnd)}
	wantNetwork := []byte{byte(TagCompound), 0, byte(TagInt32), 1, 'i', 2, byte(TagEnd)}
	if !bytes.Equal(legacy, wantLegacy) {
		t.Errorf("legacy: got %x; want %x", legacy, wantLegacy)
	}
	if !bytes.Equal(network, wantNetwork) {
		t.Errorf("network: got %x; want %x", network, wantNetwork)
	}
}

func TestEmptyList(t *testing.T) {
	for _, e := range encodings {
		data, err := Marshal(map[string]any{"l": []any{}}, e.encoding)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		// The last three bytes are the element tag, the zero length and the compound end.
		tail := data[len(data)-3:]
		if tail[0] != byte(TagEnd) || tail[1] != 0 {
			t.Errorf("%s: empty list written as %x", e.name, tail)
		}
		got, err := Unmarshal(data, e.encoding)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if l, ok := got.(map[string]any)["l"].([]any); !ok || len(l) != 0 {
			t.Errorf("%s: got %#v; want empty list", e.name, got)
		}
	}
}

func TestMixedList(t *testing.T) {
	_, err := Marshal(map[string]any{"l": []any{int32(1), "two"}}, NetworkLittleEndian)
	if !errors.Is(err, ErrMixedList) {
		t.Errorf("got %v; want ErrMixedList", err)
	}
}

func TestUnsupportedType(t *testing.T) {
	_, err := Marshal(map[string]any{"b": true}, NetworkLittleEndian)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v; want ErrUnsupportedType", err)
	}
}

func TestLegacyStringTooLong(t *testing.T) {
	long := strings.Repeat("a", 70000)
	values := map[string]any{
		"key":   map[string]any{long: int32(1)},
		"value": map[string]any{"s": long},
		"list":  map[string]any{"l": []any{long}},
	}
	for name, v := range values {
		if _, err := Marshal(v, LittleEndian); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("%s: got %v; want ErrInvalidLength", name, err)
		}
	}
	if _, err := MarshalNamed(long, int32(1), LittleEndian); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("root name: got %v; want ErrInvalidLength", err)
	}

	// The network encoding has no 16-bit limit.
	data, err := Marshal(map[string]any{long: long}, NetworkLittleEndian)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data, NetworkLittleEndian)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s, _ := got.(map[string]any)[long].(string); len(s) != len(long) {
		t.Errorf("got string of %d bytes; want %d", len(s), len(long))
	}
}

func TestNegativeLength(t *testing.T) {
	// Compound with a byte array claiming -1 elements.
	data := []byte{byte(TagCompound), 0, 0, byte(TagByteArray), 1, 0, 'b', 0xff, 0xff, 0xff, 0xff}
	if _, err := Unmarshal(data, LittleEndian); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("got %v; want ErrInvalidLength", err)
	}
}

func TestOversizedLength(t *testing.T) {
	// A list claiming a million int elements in a tiny input.
	data := []byte{byte(TagList), 0, 0, byte(TagInt32), 0x40, 0x42, 0x0f, 0x00}
	if _, err := Unmarshal(data, LittleEndian); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("got %v; want ErrInvalidLength", err)
	}
}

func TestInvalidTag(t *testing.T) {
	data := []byte{byte(TagCompound), 0, 42, 0}
	if _, err := Unmarshal(data, NetworkLittleEndian); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("got %v; want ErrInvalidTag", err)
	}
}

func TestDuplicateKey(t *testing.T) {
	data := []byte{byte(TagCompound), 0, byte(TagByte), 1, 'a', 1, byte(TagByte), 1, 'a', 2, byte(TagEnd)}
	if _, err := Unmarshal(data, NetworkLittleEndian); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("got %v; want ErrDuplicateKey", err)
	}
}

func TestMaxDepth(t *testing.T) {
	var v any = map[string]any{}
	for i := 0; i < maximumDepth+1; i++ {
		v = []any{v}
	}
	if _, err := Marshal(v, NetworkLittleEndian); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("marshal: got %v; want ErrMaxDepth", err)
	}

	// Hand-built input nesting lists of lists past the limit.
	data := []byte{byte(TagList), 0}
	for i := 0; i < maximumDepth+1; i++ {
		data = append(data, byte(TagList), 2)
	}
	if _, err := Unmarshal(data, NetworkLittleEndian); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("unmarshal: got %v; want ErrMaxDepth", err)
	}
}

func TestTruncatedInput(t *testing.T) {
	data, _ := Marshal(sampleCompound(), NetworkLittleEndian)
	for i := 0; i < len(data); i++ {
		if _, err := Unmarshal(data[:i], NetworkLittleEndian); err == nil {
			t.Fatalf("truncated input of %d/%d bytes decoded without error", i, len(data))
		}
	}
}

func TestInteropWithGophertunnel(t *testing.T) {
	tests := []struct {
		name   string
		ours   Encoding
		theirs gtnbt.Encoding
	}{
		{"little endian", LittleEndian, gtnbt.LittleEndian},
		{"network little endian", NetworkLittleEndian, gtnbt.NetworkLittleEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := map[string]any{"name": "minecraft:plains"}
			theirs, err := gtnbt.MarshalEncoding(v, tt.theirs)
			if err != nil {
				t.Fatalf("gophertunnel marshal: %v", err)
			}
			ours, err := Marshal(v, tt.ours)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !bytes.Equal(ours, theirs) {
				t.Errorf("got %x; gophertunnel wrote %x", ours, theirs)
			}

			theirs, err = gtnbt.MarshalEncoding(map[string]any{"temperature": float32(0.8), "id": int32(1)}, tt.theirs)
			if err != nil {
				t.Fatalf("gophertunnel marshal: %v", err)
			}
			got, err := Unmarshal(theirs, tt.ours)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			m := got.(map[string]any)
			if m["temperature"] != float32(0.8) || m["id"] != int32(1) {
				t.Errorf("got %#v", m)
			}
		})
	}
}
