// Package volume provides the n-dimensional array type shared by all
// voximg transforms. A Volume stores its elements as a flat, row-major
// []float64 buffer together with a shape and a nominal element type.
// Spatial transforms follow the channel-first convention: axis 0
// indexes channel/modality, the remaining axes are spatial.
package volume

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DType is the nominal element type carried by a Volume. Values are
// always held as float64 internally; the tag records how they should
// be quantized when the volume is written out or explicitly cast.
type DType int

const (
	Float64 DType = iota
	Float32
	Int32
	Int16
	Uint16
	Uint8
)

// String returns the lower-case name of the type.
func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Uint8:
		return "uint8"
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// ParseDType resolves a type name as used in pipeline configuration.
func ParseDType(name string) (DType, error) {
	switch name {
	case "float64", "":
		return Float64, nil
	case "float32":
		return Float32, nil
	case "int32":
		return Int32, nil
	case "int16":
		return Int16, nil
	case "uint16":
		return Uint16, nil
	case "uint8":
		return Uint8, nil
	}
	return Float64, fmt.Errorf("unknown dtype %q", name)
}

// quantize maps v onto the representable values of the type: float32
// round-trips through single precision, integer types clamp to their
// range and truncate toward zero.
func (d DType) quantize(v float64) float64 {
	switch d {
	case Float64:
		return v
	case Float32:
		return float64(float32(v))
	case Int32:
		return clampTrunc(v, math.MinInt32, math.MaxInt32)
	case Int16:
		return clampTrunc(v, math.MinInt16, math.MaxInt16)
	case Uint16:
		return clampTrunc(v, 0, math.MaxUint16)
	case Uint8:
		return clampTrunc(v, 0, math.MaxUint8)
	}
	return v
}

func clampTrunc(v, lo, hi float64) float64 {
	v = math.Trunc(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Volume is an n-dimensional numeric array. The zero value is not
// usable; construct with New, FromValues or one of the shape-deriving
// methods. The backing buffer is always contiguous in row-major order.
type Volume struct {
	data  []float64
	shape []int
	dtype DType
}

// New allocates a zero-filled volume with the given shape and dtype.
func New(shape []int, dtype DType) (*Volume, error) {
	n := 1
	for i, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("volume: negative extent %d on axis %d", s, i)
		}
		n *= s
	}
	return &Volume{
		data:  make([]float64, n),
		shape: append([]int(nil), shape...),
		dtype: dtype,
	}, nil
}

// FromValues wraps the given data in a Float64 volume of the given
// shape. The slice is used directly, not copied.
func FromValues(data []float64, shape []int) (*Volume, error) {
	n := 1
	for i, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("volume: negative extent %d on axis %d", s, i)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("volume: %d values do not fill shape %v (need %d)", len(data), shape, n)
	}
	return &Volume{data: data, shape: append([]int(nil), shape...), dtype: Float64}, nil
}

// Shape returns a copy of the volume's shape.
func (v *Volume) Shape() []int { return append([]int(nil), v.shape...) }

// NDim returns the number of axes.
func (v *Volume) NDim() int { return len(v.shape) }

// Len returns the total number of elements.
func (v *Volume) Len() int { return len(v.data) }

// DType returns the nominal element type.
func (v *Volume) DType() DType { return v.dtype }

// SetDType retags the volume without touching the stored values.
func (v *Volume) SetDType(d DType) { v.dtype = d }

// Data returns the backing buffer. Mutations are visible to the volume.
func (v *Volume) Data() []float64 { return v.data }

// Clone returns a deep copy.
func (v *Volume) Clone() *Volume {
	return &Volume{
		data:  append([]float64(nil), v.data...),
		shape: append([]int(nil), v.shape...),
		dtype: v.dtype,
	}
}

// AsType returns a copy of the volume cast to the given dtype, with
// every element quantized to the target type's representable values.
func (v *Volume) AsType(d DType) *Volume {
	out := v.Clone()
	out.dtype = d
	if d != Float64 {
		for i, x := range out.data {
			out.data[i] = d.quantize(x)
		}
	}
	return out
}

// Strides returns the row-major element strides for the shape.
func (v *Volume) Strides() []int {
	strides := make([]int, len(v.shape))
	acc := 1
	for i := len(v.shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= v.shape[i]
	}
	return strides
}

// At returns the element at the given multi-index. The index must have
// one entry per axis and be in bounds; out-of-range access panics like
// a slice access would.
func (v *Volume) At(idx ...int) float64 {
	return v.data[v.offset(idx)]
}

// Set stores val at the given multi-index.
func (v *Volume) Set(val float64, idx ...int) {
	v.data[v.offset(idx)] = val
}

func (v *Volume) offset(idx []int) int {
	if len(idx) != len(v.shape) {
		panic(fmt.Sprintf("volume: index has %d entries for %d axes", len(idx), len(v.shape)))
	}
	off := 0
	acc := 1
	for i := len(v.shape) - 1; i >= 0; i-- {
		if idx[i] < 0 || idx[i] >= v.shape[i] {
			panic(fmt.Sprintf("volume: index %d out of range on axis %d (extent %d)", idx[i], i, v.shape[i]))
		}
		off += idx[i] * acc
		acc *= v.shape[i]
	}
	return off
}

// MinMax returns the smallest and largest element. An empty volume
// yields (0, 0).
func (v *Volume) MinMax() (min, max float64) {
	if len(v.data) == 0 {
		return 0, 0
	}
	return floats.Min(v.data), floats.Max(v.data)
}

// Equal reports whether o has the same shape and exactly equal values.
// The dtype tag is not compared.
func (v *Volume) Equal(o *Volume) bool {
	if len(v.shape) != len(o.shape) {
		return false
	}
	for i := range v.shape {
		if v.shape[i] != o.shape[i] {
			return false
		}
	}
	return floats.Equal(v.data, o.data)
}

// unravel decomposes a linear row-major offset into idx for the shape.
func unravel(lin int, shape, idx []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 0 {
			idx[i] = 0
			continue
		}
		idx[i] = lin % shape[i]
		lin /= shape[i]
	}
}

// Transpose returns a fresh volume with axes permuted per perm, which
// must be a permutation of 0..ndim-1.
func (v *Volume) Transpose(perm []int) (*Volume, error) {
	if len(perm) != len(v.shape) {
		return nil, fmt.Errorf("volume: permutation has %d entries for %d axes", len(perm), len(v.shape))
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, fmt.Errorf("volume: %v is not a permutation of axes 0..%d", perm, len(perm)-1)
		}
		seen[p] = true
	}
	outShape := make([]int, len(perm))
	for i, p := range perm {
		outShape[i] = v.shape[p]
	}
	out, _ := New(outShape, v.dtype)
	outIdx := make([]int, len(perm))
	inIdx := make([]int, len(perm))
	for lin := range out.data {
		unravel(lin, outShape, outIdx)
		for i, p := range perm {
			inIdx[p] = outIdx[i]
		}
		out.data[lin] = v.data[v.offset(inIdx)]
	}
	return out, nil
}

// MoveAxis moves the axis at position from to position to, keeping the
// relative order of the remaining axes.
func (v *Volume) MoveAxis(from, to int) (*Volume, error) {
	n := len(v.shape)
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("volume: move axis %d to %d out of range for %d axes", from, to, n)
	}
	rest := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != from {
			rest = append(rest, i)
		}
	}
	perm := make([]int, 0, n)
	perm = append(perm, rest[:to]...)
	perm = append(perm, from)
	perm = append(perm, rest[to:]...)
	return v.Transpose(perm)
}

// ExpandDims returns a copy with a new length-1 axis inserted at the
// given position.
func (v *Volume) ExpandDims(axis int) (*Volume, error) {
	n := len(v.shape)
	if axis < 0 {
		axis += n + 1
	}
	if axis < 0 || axis > n {
		return nil, fmt.Errorf("volume: cannot insert axis at %d for %d axes", axis, n)
	}
	shape := make([]int, 0, n+1)
	shape = append(shape, v.shape[:axis]...)
	shape = append(shape, 1)
	shape = append(shape, v.shape[axis:]...)
	out := v.Clone()
	out.shape = shape
	return out, nil
}

// Flip reverses element order along the given axes. With no axes it
// flips every axis.
func (v *Volume) Flip(axes ...int) (*Volume, error) {
	n := len(v.shape)
	flip := make([]bool, n)
	if len(axes) == 0 {
		for i := range flip {
			flip[i] = true
		}
	}
	for _, a := range axes {
		if a < 0 {
			a += n
		}
		if a < 0 || a >= n {
			return nil, fmt.Errorf("volume: flip axis %d out of range for %d axes", a, n)
		}
		flip[a] = true
	}
	out, _ := New(v.shape, v.dtype)
	outIdx := make([]int, n)
	inIdx := make([]int, n)
	for lin := range out.data {
		unravel(lin, v.shape, outIdx)
		for i := 0; i < n; i++ {
			if flip[i] {
				inIdx[i] = v.shape[i] - 1 - outIdx[i]
			} else {
				inIdx[i] = outIdx[i]
			}
		}
		out.data[lin] = v.data[v.offset(inIdx)]
	}
	return out, nil
}

// Rot90 rotates the volume by 90 degrees k times in the plane spanned
// by axes ax0 and ax1. The result is always a fresh contiguous volume,
// also for k that is a multiple of 4.
func (v *Volume) Rot90(k, ax0, ax1 int) (*Volume, error) {
	n := len(v.shape)
	if ax0 < 0 {
		ax0 += n
	}
	if ax1 < 0 {
		ax1 += n
	}
	if ax0 < 0 || ax0 >= n || ax1 < 0 || ax1 >= n {
		return nil, fmt.Errorf("volume: rotation axes (%d, %d) out of range for %d axes", ax0, ax1, n)
	}
	if ax0 == ax1 {
		return nil, fmt.Errorf("volume: rotation axes must differ, got (%d, %d)", ax0, ax1)
	}
	k = ((k % 4) + 4) % 4
	out := v.Clone()
	for i := 0; i < k; i++ {
		out = out.rot90Once(ax0, ax1)
	}
	return out, nil
}

// rot90Once applies one counter-clockwise quarter turn in the
// (ax0, ax1) plane: out[..., i, ..., j, ...] = in[..., j, ..., n1-1-i, ...].
func (v *Volume) rot90Once(ax0, ax1 int) *Volume {
	n := len(v.shape)
	outShape := append([]int(nil), v.shape...)
	outShape[ax0], outShape[ax1] = v.shape[ax1], v.shape[ax0]
	out, _ := New(outShape, v.dtype)
	outIdx := make([]int, n)
	inIdx := make([]int, n)
	for lin := range out.data {
		unravel(lin, outShape, outIdx)
		copy(inIdx, outIdx)
		inIdx[ax0] = outIdx[ax1]
		inIdx[ax1] = v.shape[ax1] - 1 - outIdx[ax0]
		out.data[lin] = v.data[v.offset(inIdx)]
	}
	return out
}

// SliceRanges copies the half-open sub-volume [start[i], end[i]) per
// axis. Bounds are validated before any element is copied; a
// zero-length range on an axis is valid and yields an empty axis.
func (v *Volume) SliceRanges(start, end []int) (*Volume, error) {
	n := len(v.shape)
	if len(start) != n || len(end) != n {
		return nil, fmt.Errorf("volume: slice ranges need %d entries, got %d/%d", n, len(start), len(end))
	}
	for i := 0; i < n; i++ {
		if start[i] < 0 {
			return nil, fmt.Errorf("volume: slice start %d negative on axis %d", start[i], i)
		}
		if end[i] > v.shape[i] {
			return nil, fmt.Errorf("volume: slice end %d exceeds extent %d on axis %d", end[i], v.shape[i], i)
		}
		if end[i] < start[i] {
			return nil, fmt.Errorf("volume: slice end %d before start %d on axis %d", end[i], start[i], i)
		}
	}
	outShape := make([]int, n)
	for i := 0; i < n; i++ {
		outShape[i] = end[i] - start[i]
	}
	out, _ := New(outShape, v.dtype)
	outIdx := make([]int, n)
	inIdx := make([]int, n)
	for lin := range out.data {
		unravel(lin, outShape, outIdx)
		for i := 0; i < n; i++ {
			inIdx[i] = start[i] + outIdx[i]
		}
		out.data[lin] = v.data[v.offset(inIdx)]
	}
	return out, nil
}
