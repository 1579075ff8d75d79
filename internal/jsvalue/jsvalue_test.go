package jsvalue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/jsvalue"
)

func TestToStringCoercion(t *testing.T) {
	assert.Equal(t, "undefined", jsvalue.ToString(jsvalue.UndefinedValue))
	assert.Equal(t, "null", jsvalue.ToString(jsvalue.NullValue))
	assert.Equal(t, "3", jsvalue.ToString(jsvalue.Number(3)))
	assert.Equal(t, "3.5", jsvalue.ToString(jsvalue.Number(3.5)))
	assert.Equal(t, "NaN", jsvalue.ToString(jsvalue.Number(nan())))
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestLooseVsStrictEquals(t *testing.T) {
	assert.True(t, jsvalue.LooseEquals(jsvalue.Number(1), jsvalue.String("1")))
	assert.False(t, jsvalue.StrictEquals(jsvalue.Number(1), jsvalue.String("1")))
	assert.True(t, jsvalue.LooseEquals(jsvalue.NullValue, jsvalue.UndefinedValue))
	assert.False(t, jsvalue.StrictEquals(jsvalue.NullValue, jsvalue.UndefinedValue))
}

func TestSameValueZeroTreatsNaNAsEqualToItself(t *testing.T) {
	n := jsvalue.Number(nan())
	assert.True(t, jsvalue.SameValueZero(n, n))
	assert.False(t, jsvalue.StrictEquals(n, n), "=== must treat NaN as unequal to itself")
}

func TestObjectSharedHandleSemantics(t *testing.T) {
	obj := jsvalue.NewObject()
	obj.Set("a", jsvalue.Number(1))

	alias := obj // same pointer: simulates two variables referencing one object
	alias.Set("a", jsvalue.Number(2))

	assert.Equal(t, jsvalue.Number(2), obj.Get("a"), "mutation through alias must be visible through the original handle")
}

func TestArrayObjectLengthAndIndexing(t *testing.T) {
	arr := jsvalue.NewArray([]jsvalue.Value{jsvalue.Number(1), jsvalue.Number(2)})
	assert.Equal(t, jsvalue.Number(2), arr.Get("length"))
	arr.Set("2", jsvalue.Number(3))
	assert.Equal(t, jsvalue.Number(3), arr.Get("length"))
	assert.Equal(t, "1,2,3", jsvalue.ToString(arr))
}

func TestMapPreservesInsertionOrderAndSameValueZeroKeys(t *testing.T) {
	m := jsvalue.NewMapData()
	m.Set(jsvalue.String("b"), jsvalue.Number(2))
	m.Set(jsvalue.String("a"), jsvalue.Number(1))
	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, jsvalue.String("b"), entries[0][0])
	assert.Equal(t, jsvalue.String("a"), entries[1][0])

	nan1 := jsvalue.Number(nan())
	m.Set(nan1, jsvalue.String("x"))
	assert.True(t, m.Has(jsvalue.Number(nan())), "NaN must be usable as its own Map key")
}

func TestURLAndSearchParamsShareState(t *testing.T) {
	d, err := jsvalue.ParseURL("https://例え.jp/path?a=1#frag")
	require.NoError(t, err)
	urlObj := jsvalue.NewURLObject(d)
	params := jsvalue.NewURLParamsObject(d, urlObj)

	d.SetParam("a", "2")
	v, ok := d.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, "?a=2", jsvalue.ToString(params))
	assert.Contains(t, jsvalue.ToString(urlObj), "xn--")
}

func TestTypedArrayViewsShareBuffer(t *testing.T) {
	buf := jsvalue.NewArrayBuffer(4)
	view1 := jsvalue.NewTypedArray(jsvalue.Int32Array, buf, 0, 1)
	view1.Typed.SetAt(0, 42)

	view2 := jsvalue.NewTypedArray(jsvalue.Uint8Array, buf, 0, 4)
	assert.Equal(t, jsvalue.Number(42), view2.Typed.At(0), "typed array views over one buffer must observe each other's writes")
}
