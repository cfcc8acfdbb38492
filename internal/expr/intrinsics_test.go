package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrinsicFormat(t *testing.T) {
	out, err := Intrinsic("Format", []interface{}{"Hello {}, you are {}", "Alice", 30.0})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice, you are 30", out)
}

func TestIntrinsicArrayPartition(t *testing.T) {
	out, err := Intrinsic("ArrayPartition", []interface{}{
		[]interface{}{1.0, 2.0, 3.0, 4.0, 5.0}, 2.0,
	})
	require.NoError(t, err)
	partitions, ok := out.([]interface{})
	require.True(t, ok)
	assert.Len(t, partitions, 3)
	assert.Equal(t, []interface{}{1.0, 2.0}, partitions[0])
	assert.Equal(t, []interface{}{5.0}, partitions[2])
}

func TestIntrinsicArrayContains(t *testing.T) {
	out, err := Intrinsic("ArrayContains", []interface{}{[]interface{}{"a", "b"}, "b"})
	require.NoError(t, err)
	assert.Equal(t, true, out)

	out, err = Intrinsic("ArrayContains", []interface{}{[]interface{}{"a", "b"}, "z"})
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestIntrinsicArrayRange(t *testing.T) {
	out, err := Intrinsic("ArrayRange", []interface{}{1.0, 9.0, 2.0})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 3, 5, 7, 9}, out)
}

func TestIntrinsicArrayRangeRejectsZeroStep(t *testing.T) {
	_, err := Intrinsic("ArrayRange", []interface{}{1.0, 9.0, 0.0})
	assert.Error(t, err)
}

func TestIntrinsicArrayUnique(t *testing.T) {
	out, err := Intrinsic("ArrayUnique", []interface{}{[]interface{}{"a", "b", "a", "c", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b", "c"}, out)
}

func TestIntrinsicMathAdd(t *testing.T) {
	out, err := Intrinsic("MathAdd", []interface{}{3.0, 4.0})
	require.NoError(t, err)
	assert.Equal(t, 7.0, out)
}

func TestIntrinsicUUIDIsWellFormed(t *testing.T) {
	out, err := Intrinsic("UUID", nil)
	require.NoError(t, err)
	s, ok := out.(string)
	require.True(t, ok)
	assert.Len(t, s, 36)
}

func TestIntrinsicUnsupportedNameErrors(t *testing.T) {
	_, err := Intrinsic("NotReal", nil)
	assert.Error(t, err)
}

func TestParseIntrinsicCall(t *testing.T) {
	name, args, ok := ParseIntrinsicCall("States.Format('{}-{}', $.a, $.b)")
	require.True(t, ok)
	assert.Equal(t, "Format", name)
	assert.Equal(t, []string{"'{}-{}'", "$.a", "$.b"}, args)
}

func TestParseIntrinsicCallRejectsNonIntrinsic(t *testing.T) {
	_, _, ok := ParseIntrinsicCall("$.a.b")
	assert.False(t, ok)
}

func TestParseIntrinsicCallHandlesNestedParens(t *testing.T) {
	name, args, ok := ParseIntrinsicCall("States.ArrayLength(States.Array(1, 2, 3))")
	require.True(t, ok)
	assert.Equal(t, "ArrayLength", name)
	require.Len(t, args, 1)
	assert.Equal(t, "States.Array(1, 2, 3)", args[0])
}
