package codec

import (
	"encoding/json"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamin-larsen/bincodec/schema"
)

func mustSchema(t *testing.T, yamlSrc string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(yamlSrc))
	require.NoError(t, err)
	return s
}

// Seed scenario 1: header + payload.
func TestHeaderPayloadRoundTrip(t *testing.T) {
	s := mustSchema(t, `
endianness: little
fields:
  - name: magic
    type: uint32
  - name: ver
    type: uint16
  - name: flags
    type: uint16
  - name: name
    type: string
    size: 32
  - name: n
    type: uint32
  - name: data
    type: array
    length_field: n
    element_type: float32
`)
	c, err := New(s)
	require.NoError(t, err)

	doc := map[string]any{
		"magic": int64(0x12345678),
		"ver":   int64(1),
		"flags": int64(1),
		"name":  "Test",
		"n":     int64(3),
		"data":  []any{float64(1.0), float64(2.5), float64(3.14)},
	}

	out, err := c.Encode(doc)
	require.NoError(t, err)
	require.Len(t, out, 56)
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, out[:4])

	decoded, err := c.Decode(out)
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.Equal(t, int64(0x12345678), m["magic"])
	assert.Equal(t, int64(1), m["ver"])
	assert.Equal(t, int64(1), m["flags"])
	assert.Equal(t, "Test", m["name"])
	assert.Equal(t, int64(3), m["n"])
	data := m["data"].([]any)
	require.Len(t, data, 3)
	assert.InDelta(t, 1.0, data[0], 0.0001)
	assert.InDelta(t, 2.5, data[1], 0.0001)
	assert.InDelta(t, 3.14, data[2], 0.001)
}

// Seed scenario 2: variable-length string.
func TestVariableStringRoundTrip(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: s
    type: string
`)
	c, err := New(s)
	require.NoError(t, err)

	out, err := c.Encode(map[string]any{"s": "hi"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00, 0x68, 0x69}, out)

	decoded, err := c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "hi", decoded.(map[string]any)["s"])
}

// Seed scenario 3: CRC-32 over a field_range scope.
func TestCRC32FieldRange(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: a
    type: uint8
  - name: b
    type: uint16
  - name: crc
    type: uint32
    function: crc32
    function_scope: field_range
    function_scope_start: a
    function_scope_end: b
`)
	c, err := New(s)
	require.NoError(t, err)

	out, err := c.Encode(map[string]any{"a": int64(0xAA), "b": int64(0xBBCC), "crc": "auto"})
	require.NoError(t, err)
	require.Len(t, out, 7)

	want := crc32.ChecksumIEEE([]byte{0xAA, 0xCC, 0xBB})
	got := uint32(out[3]) | uint32(out[4])<<8 | uint32(out[5])<<16 | uint32(out[6])<<24
	assert.Equal(t, want, got)

	decoded, err := c.Decode(out)
	require.NoError(t, err)
	assert.EqualValues(t, want, decoded.(map[string]any)["crc"])
}

// Seed scenario 4: discriminated union.
func TestUnionRoundTrip(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: msg
    type: union
    discriminator_field: type
    union_variants:
      "1":
        - name: type
          type: uint8
        - name: x
          type: uint16
      "2":
        - name: type
          type: uint8
        - name: s
          type: string
          size: 4
`)
	c, err := New(s)
	require.NoError(t, err)

	out, err := c.Encode(map[string]any{
		"msg": map[string]any{"type": int64(1), "x": int64(513)},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0x02}, out)

	decoded, err := c.Decode(out)
	require.NoError(t, err)
	msg := decoded.(map[string]any)["msg"].(map[string]any)
	assert.Equal(t, int64(1), msg["type"])
	assert.Equal(t, int64(513), msg["x"])
}

func TestUnionUnknownVariant(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: msg
    type: union
    discriminator_field: type
    union_variants:
      "1":
        - name: type
          type: uint8
`)
	c, err := New(s)
	require.NoError(t, err)

	_, err = c.Encode(map[string]any{"msg": map[string]any{"type": int64(9)}})
	require.Error(t, err)
	ue, ok := err.(*UnionError)
	require.True(t, ok)
	assert.Equal(t, UnknownVariant, ue.Kind)
}

// Seed scenario 5: open-ended array, terminated by EOF.
func TestOpenArrayEOF(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: items
    type: array
    size: -1
    element_type: uint16
`)
	c, err := New(s)
	require.NoError(t, err)

	decoded, err := c.Decode([]byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00})
	require.NoError(t, err)
	items := decoded.(map[string]any)["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, items)
}

// Seed scenario 6: conditional field.
func TestConditionalField(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: count
    type: uint8
  - name: opt
    type: uint16
    condition: "count > 0"
`)
	c, err := New(s)
	require.NoError(t, err)

	out, err := c.Encode(map[string]any{"count": int64(0)})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	decoded, err := c.Decode(out)
	require.NoError(t, err)
	_, present := decoded.(map[string]any)["opt"]
	assert.False(t, present)

	out, err = c.Encode(map[string]any{"count": int64(5), "opt": int64(1234)})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	decoded, err = c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), decoded.(map[string]any)["opt"])
}

func TestByteOrderSymmetry(t *testing.T) {
	little := mustSchema(t, `
fields:
  - name: v
    type: uint32
`)
	big, err := schema.Parse([]byte(`
endianness: big
fields:
  - name: v
    type: uint32
`))
	require.NoError(t, err)

	cl, _ := New(little)
	cb, _ := New(big)

	outLittle, err := cl.Encode(map[string]any{"v": int64(0x01020304)})
	require.NoError(t, err)
	outBig, err := cb.Encode(map[string]any{"v": int64(0x01020304)})
	require.NoError(t, err)

	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, outLittle)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, outBig)
}

func TestEncodeMissingFieldError(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: a
    type: uint8
`)
	c, err := New(s)
	require.NoError(t, err)
	_, err = c.Encode(map[string]any{})
	require.Error(t, err)
	ee, ok := err.(*EncodeError)
	require.True(t, ok)
	assert.Equal(t, MissingField, ee.Kind)
}

func TestDecodeUnexpectedEnd(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: a
    type: uint32
`)
	c, err := New(s)
	require.NoError(t, err)
	_, err = c.Decode([]byte{0x01, 0x02})
	require.Error(t, err)
	de, ok := err.(*DecodeError)
	require.True(t, ok)
	assert.Equal(t, UnexpectedEnd, de.Kind)
}

func TestInt24RoundTrip(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: v
    type: int24
`)
	c, err := New(s)
	require.NoError(t, err)

	out, err := c.Encode(map[string]any{"v": int64(-1)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, out)

	decoded, err := c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), decoded.(map[string]any)["v"])
}

func TestOutOfRangeError(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: v
    type: uint8
`)
	c, err := New(s)
	require.NoError(t, err)
	_, err = c.Encode(map[string]any{"v": int64(300)})
	require.Error(t, err)
	ee, ok := err.(*EncodeError)
	require.True(t, ok)
	assert.Equal(t, OutOfRange, ee.Kind)
}

func TestFixedArrayZeroPadding(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: items
    type: array
    size: 3
    element_type: uint8
`)
	c, err := New(s)
	require.NoError(t, err)

	out, err := c.Encode(map[string]any{"items": []any{int64(7)}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x00, 0x00}, out)
}

func TestNestedStructRoundTrip(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: header
    type: struct
    fields:
      - name: a
        type: uint8
      - name: b
        type: uint8
  - name: footer
    type: uint16
`)
	c, err := New(s)
	require.NoError(t, err)

	doc := map[string]any{
		"header": map[string]any{"a": int64(1), "b": int64(2)},
		"footer": int64(300),
	}
	out, err := c.Encode(doc)
	require.NoError(t, err)

	decoded, err := c.Decode(out)
	require.NoError(t, err)
	m := decoded.(map[string]any)
	header := m["header"].(map[string]any)
	assert.Equal(t, int64(1), header["a"])
	assert.Equal(t, int64(2), header["b"])
	assert.Equal(t, int64(300), m["footer"])
}

// A document built by encoding/json.Unmarshal into map[string]any carries
// every number as float64, including the field a length_field expression
// resolves. Encode must accept that the same way it accepts int64.
func TestLengthFieldFromJSONFloat64(t *testing.T) {
	s := mustSchema(t, `
fields:
  - name: n
    type: uint32
  - name: data
    type: array
    length_field: n
    element_type: uint8
`)
	c, err := New(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"n": 3, "data": [1, 2, 3]}`), &doc))

	out, err := c.Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03}, out)
}
