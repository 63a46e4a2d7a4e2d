package function

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The standard library's reflected CRC-32/IEEE is a well-known ground
// truth for bit-exactness; we use it only to validate the hand-rolled
// parametrized implementation in a test, never from crc.go's own code
// path.
func TestCRC32MatchesIEEE(t *testing.T) {
	data := []byte("123456789")
	got, err := crc32Func(data, nil, nil)
	require.NoError(t, err)
	want := crc32.ChecksumIEEE(data)
	assert.EqualValues(t, want, uint32(got))
}

func TestCRC32KnownVector(t *testing.T) {
	// "123456789" is the canonical CRC check string; CRC-32/ISO-HDLC
	// (our default parameters) must produce 0xCBF43926.
	got, err := crc32Func([]byte("123456789"), nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0xCBF43926, uint32(got))
}

func TestCRC16ModbusKnownVector(t *testing.T) {
	// CRC-16/MODBUS check value for "123456789" is 0x4B37.
	got, err := crc16Func([]byte("123456789"), nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0x4B37, uint16(got))
}

func TestLengthFunc(t *testing.T) {
	got, err := lengthFunc(make([]byte, 10), nil, map[string]any{"multiplier": int64(2), "offset": int64(3)})
	require.NoError(t, err)
	assert.EqualValues(t, 23, got)
}

func TestFileSizeFunc(t *testing.T) {
	got, err := fileSizeFunc(make([]byte, 10), nil, map[string]any{"_field_size": int64(4)})
	require.NoError(t, err)
	assert.EqualValues(t, 14, got)
}

func TestCountFunc(t *testing.T) {
	doc := map[string]any{"items": []any{1, 2, 3}}
	got, err := countFunc(nil, doc, map[string]any{"key": "items"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, got)

	got, err = countFunc(nil, doc, map[string]any{"key": "missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, got)
}

func TestUnknownFunction(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("nonexistent", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, Unknown, err.(*Error).Kind)
}
