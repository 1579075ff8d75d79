package jsvalue

import (
	"encoding/binary"
	"math"
)

// TypedArrayKind names one of the supported typed array constructors.
type TypedArrayKind string

const (
	Int8Array    TypedArrayKind = "Int8Array"
	Uint8Array   TypedArrayKind = "Uint8Array"
	Uint8Clamped TypedArrayKind = "Uint8ClampedArray"
	Int16Array   TypedArrayKind = "Int16Array"
	Uint16Array  TypedArrayKind = "Uint16Array"
	Int32Array   TypedArrayKind = "Int32Array"
	Uint32Array  TypedArrayKind = "Uint32Array"
	Float16Array TypedArrayKind = "Float16Array"
	Float32Array TypedArrayKind = "Float32Array"
	Float64Array TypedArrayKind = "Float64Array"
)

// ElementSize returns the byte width of one element of kind.
func ElementSize(kind TypedArrayKind) int {
	switch kind {
	case Int8Array, Uint8Array, Uint8Clamped:
		return 1
	case Int16Array, Uint16Array, Float16Array:
		return 2
	case Int32Array, Uint32Array, Float32Array:
		return 4
	case Float64Array:
		return 8
	default:
		return 1
	}
}

// TypedArrayData is a view over a shared ArrayBuffer's backing bytes.
// Because Buffer is held on the ArrayBuffer Object by pointer, two typed
// arrays over the same buffer observe each other's writes.
type TypedArrayData struct {
	Kind   TypedArrayKind
	Buffer *Object // ClassArrayBuf
	Offset int
	Length int // element count
}

// DataViewData is a byte-addressable view over a shared ArrayBuffer.
type DataViewData struct {
	Buffer *Object
	Offset int
	Length int
}

// NewArrayBuffer allocates a zero-filled buffer of n bytes.
func NewArrayBuffer(n int) *Object {
	return &Object{Class: ClassArrayBuf, index: map[string]int{}, Buffer: make([]byte, n)}
}

// NewTypedArray builds a typed-array view over buf starting at byteOffset,
// covering length elements of kind.
func NewTypedArray(kind TypedArrayKind, buf *Object, byteOffset, length int) *Object {
	return &Object{Class: ClassTypedArr, index: map[string]int{}, Typed: &TypedArrayData{Kind: kind, Buffer: buf, Offset: byteOffset, Length: length}}
}

// At reads element i of a typed array as a Number.
func (t *TypedArrayData) At(i int) Number {
	size := ElementSize(t.Kind)
	off := t.Offset + i*size
	b := t.Buffer.Buffer[off : off+size]
	switch t.Kind {
	case Int8Array:
		return Number(int8(b[0]))
	case Uint8Array, Uint8Clamped:
		return Number(b[0])
	case Int16Array:
		return Number(int16(binary.LittleEndian.Uint16(b)))
	case Uint16Array:
		return Number(binary.LittleEndian.Uint16(b))
	case Int32Array:
		return Number(int32(binary.LittleEndian.Uint32(b)))
	case Uint32Array:
		return Number(binary.LittleEndian.Uint32(b))
	case Float32Array:
		return Number(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case Float64Array:
		return Number(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	default:
		return 0
	}
}

// SetAt writes element i of a typed array from a Number, truncating per
// the element kind (clamping for Uint8ClampedArray) the way JS
// typed-array writes do.
func (t *TypedArrayData) SetAt(i int, v Number) {
	size := ElementSize(t.Kind)
	off := t.Offset + i*size
	b := t.Buffer.Buffer[off : off+size]
	switch t.Kind {
	case Int8Array, Uint8Array:
		b[0] = byte(int64(v))
	case Uint8Clamped:
		f := float64(v)
		switch {
		case isNaN(f) || f <= 0:
			b[0] = 0
		case f >= 255:
			b[0] = 255
		default:
			b[0] = byte(math.RoundToEven(f))
		}
	case Int16Array, Uint16Array:
		binary.LittleEndian.PutUint16(b, uint16(int64(v)))
	case Int32Array, Uint32Array:
		binary.LittleEndian.PutUint32(b, uint32(int64(v)))
	case Float32Array:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case Float64Array:
		binary.LittleEndian.PutUint64(b, math.Float64bits(float64(v)))
	}
}
