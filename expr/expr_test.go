package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamin-larsen/bincodec/document"
)

func evalBool(t *testing.T, src string, scopes document.Scopes) bool {
	t.Helper()
	e, err := Compile(src)
	require.NoError(t, err)
	v, err := e.EvalBool(scopes)
	require.NoError(t, err)
	return v
}

func evalInt(t *testing.T, src string, scopes document.Scopes) int64 {
	t.Helper()
	e, err := Compile(src)
	require.NoError(t, err)
	v, err := e.EvalInt(scopes)
	require.NoError(t, err)
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	scopes := document.Scopes{map[string]any{"n": int64(3)}}
	assert.EqualValues(t, 2+3*4, evalInt(t, "2 + 3 * 4", scopes))
	assert.EqualValues(t, (2+3)*4, evalInt(t, "(2 + 3) * 4", scopes))
	assert.EqualValues(t, 10, evalInt(t, "n * 3 + 1", scopes))
}

func TestBooleanLogic(t *testing.T) {
	scopes := document.Scopes{map[string]any{"count": int64(5)}}
	assert.True(t, evalBool(t, "count > 0", scopes))
	assert.False(t, evalBool(t, "count > 0 && count < 0", scopes))
	assert.True(t, evalBool(t, "count > 0 || false", scopes))
	assert.True(t, evalBool(t, "!(count == 0)", scopes))
}

func TestFieldReferenceNested(t *testing.T) {
	scopes := document.Scopes{map[string]any{
		"header": map[string]any{"count": int64(2)},
	}}
	assert.EqualValues(t, 2, evalInt(t, "header.count", scopes))
}

func TestUnknownFieldError(t *testing.T) {
	scopes := document.Scopes{map[string]any{}}
	e, err := Compile("missing > 0")
	require.NoError(t, err)
	_, err = e.EvalBool(scopes)
	require.Error(t, err)
	exprErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnknownField, exprErr.Kind)
}

func TestDivByZero(t *testing.T) {
	e, err := Compile("1 / 0")
	require.NoError(t, err)
	_, err = e.Eval(nil)
	require.Error(t, err)
	assert.Equal(t, DivByZero, err.(*Error).Kind)
}

func TestSyntaxError(t *testing.T) {
	_, err := Compile("1 +")
	require.Error(t, err)
	assert.Equal(t, Syntax, err.(*Error).Kind)
}

func TestIndexedPath(t *testing.T) {
	scopes := document.Scopes{map[string]any{
		"items": []any{int64(10), int64(20), int64(30)},
	}}
	assert.EqualValues(t, 20, evalInt(t, "items[1]", scopes))
}

// A document decoded from JSON (encoding/json.Unmarshal into
// map[string]any) carries every number as float64, even one a
// length_field expression expects to resolve as an integer.
func TestEvalIntAcceptsWholeFloat(t *testing.T) {
	scopes := document.Scopes{map[string]any{"n": float64(3)}}
	assert.EqualValues(t, 3, evalInt(t, "n", scopes))
}

func TestEvalIntRejectsFractionalFloat(t *testing.T) {
	scopes := document.Scopes{map[string]any{"n": float64(3.5)}}
	e, err := Compile("n")
	require.NoError(t, err)
	_, err = e.EvalInt(scopes)
	require.Error(t, err)
	assert.Equal(t, TypeMismatch, err.(*Error).Kind)
}
