package codec

import (
	"encoding/binary"
	"math"

	"github.com/benjamin-larsen/bincodec/schema"
)

// toInt64 widens any document-shaped numeric value to int64. Schema
// documents decoded from YAML/JSON commonly carry int, int64, uint64 or
// float64 (when the loader round-trips through interface{}); all are
// accepted as long as a float has no fractional part.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case float32:
		if float32(int64(x)) != x {
			return 0, false
		}
		return int64(x), true
	case float64:
		if float64(int64(x)) != x {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

func intRange(kind schema.PrimitiveKind) (lo, hi int64) {
	switch kind {
	case schema.Int8:
		return math.MinInt8, math.MaxInt8
	case schema.Int16:
		return math.MinInt16, math.MaxInt16
	case schema.Int24:
		return -(1 << 23), (1 << 23) - 1
	case schema.Int32:
		return math.MinInt32, math.MaxInt32
	case schema.Int64:
		return math.MinInt64, math.MaxInt64
	case schema.Uint8:
		return 0, math.MaxUint8
	case schema.Uint16:
		return 0, math.MaxUint16
	case schema.Uint24:
		return 0, (1 << 24) - 1
	case schema.Uint32:
		return 0, math.MaxUint32
	case schema.Uint64:
		return 0, math.MaxInt64 // int64 can't represent MaxUint64; a uint64 above MaxInt64 wraps negative in toInt64 and fails this range
	default:
		return 0, 0
	}
}

// encodePrimitive renders val as the wire bytes for kind, in order. A
// nil val (a missing array element past the supplied list's end) encodes
// as the primitive's zero value.
func encodePrimitive(order binary.ByteOrder, kind schema.PrimitiveKind, val any) ([]byte, error) {
	if val == nil {
		return make([]byte, kind.Width()), nil
	}
	if kind.Float() {
		f, ok := toFloat64(val)
		if !ok {
			return nil, errTypeMismatch("expected a numeric value for float field")
		}
		buf := make([]byte, kind.Width())
		if kind == schema.Float32 {
			order.PutUint32(buf, math.Float32bits(float32(f)))
		} else {
			order.PutUint64(buf, math.Float64bits(f))
		}
		return buf, nil
	}

	if kind == schema.Char {
		s, ok := val.(string)
		if !ok || len(s) != 1 {
			return nil, errTypeMismatch("expected a single-character string for char field")
		}
		return []byte{s[0]}, nil
	}

	i, ok := toInt64(val)
	if !ok {
		return nil, errTypeMismatch("expected an integer value")
	}
	lo, hi := intRange(kind)
	if i < lo || i > hi {
		return nil, errOutOfRange("value out of range for its field type")
	}

	switch kind {
	case schema.Int8, schema.Uint8:
		return []byte{byte(i)}, nil
	case schema.Int16, schema.Uint16:
		buf := make([]byte, 2)
		order.PutUint16(buf, uint16(i))
		return buf, nil
	case schema.Int24, schema.Uint24:
		return encode24(order, uint32(i)), nil
	case schema.Int32, schema.Uint32:
		buf := make([]byte, 4)
		order.PutUint32(buf, uint32(i))
		return buf, nil
	case schema.Int64, schema.Uint64:
		buf := make([]byte, 8)
		order.PutUint64(buf, uint64(i))
		return buf, nil
	default:
		return nil, errTypeMismatch("unsupported primitive kind")
	}
}

// putPrimitive writes val into buf[0:width] in place — used by phase 2 to
// patch a calculated field's placeholder bytes.
func putPrimitive(buf []byte, order binary.ByteOrder, kind schema.PrimitiveKind, value int64) {
	switch kind {
	case schema.Int8, schema.Uint8:
		buf[0] = byte(value)
	case schema.Int16, schema.Uint16:
		order.PutUint16(buf, uint16(value))
	case schema.Int24, schema.Uint24:
		copy(buf, encode24(order, uint32(value)))
	case schema.Int32, schema.Uint32:
		order.PutUint32(buf, uint32(value))
	case schema.Int64, schema.Uint64:
		order.PutUint64(buf, uint64(value))
	}
}

func encode24(order binary.ByteOrder, v uint32) []byte {
	buf := make([]byte, 3)
	if order == binary.LittleEndian {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
	} else {
		buf[0] = byte(v >> 16)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v)
	}
	return buf
}

func decode24(order binary.ByteOrder, b []byte) uint32 {
	if order == binary.LittleEndian {
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	}
	return uint32(b[2]) | uint32(b[1])<<8 | uint32(b[0])<<16
}

// decodePrimitive reads kind's wire bytes from b (len(b) == kind.Width())
// into the corresponding document-shaped Go value.
func decodePrimitive(order binary.ByteOrder, kind schema.PrimitiveKind, b []byte) any {
	if kind.Float() {
		if kind == schema.Float32 {
			return float64(math.Float32frombits(order.Uint32(b)))
		}
		return math.Float64frombits(order.Uint64(b))
	}
	if kind == schema.Char {
		return string(b[:1])
	}

	switch kind {
	case schema.Int8:
		return int64(int8(b[0]))
	case schema.Uint8:
		return int64(b[0])
	case schema.Int16:
		return int64(int16(order.Uint16(b)))
	case schema.Uint16:
		return int64(order.Uint16(b))
	case schema.Int24:
		raw := decode24(order, b)
		if raw&0x800000 != 0 {
			return int64(raw) - (1 << 24)
		}
		return int64(raw)
	case schema.Uint24:
		return int64(decode24(order, b))
	case schema.Int32:
		return int64(int32(order.Uint32(b)))
	case schema.Uint32:
		return int64(order.Uint32(b))
	case schema.Int64:
		return int64(order.Uint64(b))
	case schema.Uint64:
		return int64(order.Uint64(b))
	default:
		return nil
	}
}
