package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldRange(t *testing.T) {
	f := Fields{
		Offsets: map[string]uint32{"a": 0, "b": 1, "crc": 3},
		Sizes:   map[string]uint32{"a": 1, "b": 2, "crc": 4},
	}
	spec := Spec{Kind: FieldRange, StartField: "a", EndField: "b"}
	start, end, err := spec.Resolve(f, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, start)
	assert.EqualValues(t, 3, end)
}

func TestAllPrevious(t *testing.T) {
	spec := Spec{Kind: AllPrevious}
	start, end, err := spec.Resolve(Fields{}, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, start)
	assert.EqualValues(t, 10, end)
}

func TestLastNBytes(t *testing.T) {
	spec := Spec{Kind: LastNBytes, N: 4}
	start, end, err := spec.Resolve(Fields{}, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 6, start)
	assert.EqualValues(t, 10, end)
}

func TestSpecificBytesRange(t *testing.T) {
	spec, err := ParseSpecificBytes("2:5")
	require.NoError(t, err)
	start, end, err := spec.Resolve(Fields{}, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, start)
	assert.EqualValues(t, 5, end)
}

func TestSpecificBytesSingle(t *testing.T) {
	spec, err := ParseSpecificBytes("3")
	require.NoError(t, err)
	start, end, err := spec.Resolve(Fields{}, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, start)
	assert.EqualValues(t, 4, end)
}

func TestMissingFieldError(t *testing.T) {
	spec := Spec{Kind: FromField, StartField: "nope"}
	_, _, err := spec.Resolve(Fields{Offsets: map[string]uint32{}}, 10)
	require.Error(t, err)
	assert.Equal(t, UnknownField, err.(*Error).Kind)
}
