package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	path, err := ParsePath("header.items[3].value")
	require.NoError(t, err)
	require.Len(t, path, 4)
	assert.Equal(t, "header", path[0].Name)
	assert.Equal(t, "items", path[1].Name)
	assert.True(t, path[2].IsIndex)
	assert.Equal(t, 3, path[2].Index)
	assert.Equal(t, "value", path[3].Name)
	assert.Equal(t, "header.items[3].value", path.String())
}

func TestParsePathErrors(t *testing.T) {
	_, err := ParsePath("")
	assert.Error(t, err)

	_, err = ParsePath("items[abc]")
	assert.Error(t, err)

	_, err = ParsePath("items[3")
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	doc := map[string]any{
		"header": map[string]any{
			"items": []any{
				map[string]any{"value": int64(42)},
			},
		},
	}

	v, ok, err := GetString(doc, "header.items[0].value")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 42, v)

	_, ok, err = GetString(doc, "header.missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
