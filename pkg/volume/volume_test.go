package volume

import (
	"math"
	"testing"
)

// TestFromValuesShapeMismatch verifies that data not filling the shape
// is rejected.
func TestFromValuesShapeMismatch(t *testing.T) {
	if _, err := FromValues([]float64{1, 2, 3}, []int{2, 2}); err == nil {
		t.Fatal("expected error for 3 values in a 2x2 shape")
	}
	if _, err := FromValues([]float64{1, 2, 3, 4}, []int{2, -2}); err == nil {
		t.Fatal("expected error for negative extent")
	}
}

// TestTransposeValues verifies axis permutation on a small 2x3 array.
func TestTransposeValues(t *testing.T) {
	v, _ := FromValues([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	tr, err := v.Transpose([]int{1, 0})
	if err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	wantShape := []int{3, 2}
	gotShape := tr.Shape()
	for i := range wantShape {
		if gotShape[i] != wantShape[i] {
			t.Fatalf("expected shape %v, got %v", wantShape, gotShape)
		}
	}
	if tr.At(0, 1) != 4 || tr.At(2, 0) != 3 {
		t.Errorf("transpose values wrong: got %v", tr.Data())
	}
}

// TestTransposeRejectsNonPermutation verifies validation of the axis
// index sequence.
func TestTransposeRejectsNonPermutation(t *testing.T) {
	v, _ := FromValues(make([]float64, 6), []int{2, 3})
	for _, perm := range [][]int{{0, 0}, {0, 2}, {0}, {1, 0, 2}} {
		if _, err := v.Transpose(perm); err == nil {
			t.Errorf("expected error for permutation %v", perm)
		}
	}
}

// TestMoveAxisKeepsRelativeOrder verifies that moving an axis to the
// front leaves the remaining axes in their original relative order.
func TestMoveAxisKeepsRelativeOrder(t *testing.T) {
	v, _ := New([]int{2, 3, 4}, Float64)
	moved, err := v.MoveAxis(-1, 0)
	if err != nil {
		t.Fatalf("move axis failed: %v", err)
	}
	got := moved.Shape()
	want := []int{4, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected shape %v, got %v", want, got)
		}
	}
}

// TestExpandDimsRemoveRoundTrip verifies that prepending an axis and
// dropping it again restores the original shape.
func TestExpandDimsRemoveRoundTrip(t *testing.T) {
	v, _ := New([]int{3, 4}, Float64)
	up, err := v.ExpandDims(0)
	if err != nil {
		t.Fatalf("expand dims failed: %v", err)
	}
	if up.NDim() != 3 || up.Shape()[0] != 1 {
		t.Fatalf("expected leading length-1 axis, got shape %v", up.Shape())
	}
	// Dropping the axis is a slice over the full extent reshaped back.
	down, err := up.SliceRanges([]int{0, 0, 0}, []int{1, 3, 4})
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if down.Len() != v.Len() {
		t.Errorf("expected %d elements after round trip, got %d", v.Len(), down.Len())
	}
}

// TestFlipRoundTrip verifies that flipping twice along the same axis
// returns the original array exactly.
func TestFlipRoundTrip(t *testing.T) {
	v, _ := FromValues([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	once, err := v.Flip(1)
	if err != nil {
		t.Fatalf("flip failed: %v", err)
	}
	if once.At(0, 0) != 3 {
		t.Errorf("expected first row reversed, got %v", once.Data())
	}
	twice, err := once.Flip(1)
	if err != nil {
		t.Fatalf("second flip failed: %v", err)
	}
	if !twice.Equal(v) {
		t.Errorf("double flip did not restore original: %v", twice.Data())
	}
}

// TestFlipAllAxes verifies the no-argument form flips every axis.
func TestFlipAllAxes(t *testing.T) {
	v, _ := FromValues([]float64{1, 2, 3, 4}, []int{2, 2})
	f, err := v.Flip()
	if err != nil {
		t.Fatalf("flip failed: %v", err)
	}
	if f.At(0, 0) != 4 || f.At(1, 1) != 1 {
		t.Errorf("expected full reversal, got %v", f.Data())
	}
}

// TestRot90 verifies one counter-clockwise quarter turn on a 2x2
// array and that four turns restore the original.
func TestRot90(t *testing.T) {
	v, _ := FromValues([]float64{1, 2, 3, 4}, []int{2, 2})
	r, err := v.Rot90(1, 0, 1)
	if err != nil {
		t.Fatalf("rot90 failed: %v", err)
	}
	// [[1 2] [3 4]] -> [[2 4] [1 3]]
	want := []float64{2, 4, 1, 3}
	for i, x := range r.Data() {
		if x != want[i] {
			t.Fatalf("expected %v after one turn, got %v", want, r.Data())
		}
	}
	full, err := v.Rot90(4, 0, 1)
	if err != nil {
		t.Fatalf("rot90 failed: %v", err)
	}
	if !full.Equal(v) {
		t.Errorf("four turns did not restore original: %v", full.Data())
	}
	if &full.Data()[0] == &v.Data()[0] {
		t.Error("rot90 must return a fresh buffer")
	}
}

// TestSliceRangesBounds verifies validation before any copy happens.
func TestSliceRangesBounds(t *testing.T) {
	v, _ := New([]int{2, 4, 4}, Float64)
	if _, err := v.SliceRanges([]int{0, 0, 0}, []int{2, 5, 4}); err == nil {
		t.Error("expected error for end beyond extent")
	}
	if _, err := v.SliceRanges([]int{0, -1, 0}, []int{2, 4, 4}); err == nil {
		t.Error("expected error for negative start")
	}
	if _, err := v.SliceRanges([]int{0, 3, 0}, []int{2, 2, 4}); err == nil {
		t.Error("expected error for end before start")
	}
	// Zero-length range is valid and yields an empty axis.
	s, err := v.SliceRanges([]int{0, 2, 0}, []int{2, 2, 4})
	if err != nil {
		t.Fatalf("zero-length slice failed: %v", err)
	}
	if s.Shape()[1] != 0 || s.Len() != 0 {
		t.Errorf("expected empty axis, got shape %v", s.Shape())
	}
}

// TestAsTypeQuantizes verifies integer clamping and float32 rounding.
func TestAsTypeQuantizes(t *testing.T) {
	v, _ := FromValues([]float64{-3.7, 0.5, 300.2}, []int{3})
	u8 := v.AsType(Uint8)
	want := []float64{0, 0, 255}
	for i, x := range u8.Data() {
		if x != want[i] {
			t.Fatalf("expected %v after uint8 cast, got %v", want, u8.Data())
		}
	}
	f32 := v.AsType(Float32)
	if f32.At(2) != float64(float32(300.2)) {
		t.Errorf("expected float32 round trip, got %v", f32.At(2))
	}
	if v.At(0) != -3.7 {
		t.Error("cast must not mutate the source volume")
	}
}

// TestPadConstant verifies constant padding amounts and fill value.
func TestPadConstant(t *testing.T) {
	v, _ := FromValues([]float64{1, 2, 3, 4}, []int{2, 2})
	p, err := v.Pad([][2]int{{0, 0}, {1, 2}}, PadConstant, -1)
	if err != nil {
		t.Fatalf("pad failed: %v", err)
	}
	if got := p.Shape(); got[0] != 2 || got[1] != 5 {
		t.Fatalf("expected shape [2 5], got %v", got)
	}
	if p.At(0, 0) != -1 || p.At(0, 1) != 1 || p.At(0, 4) != -1 {
		t.Errorf("constant pad values wrong: %v", p.Data())
	}
}

// TestPadModes verifies the fill rules of the non-constant modes on a
// single row.
func TestPadModes(t *testing.T) {
	v, _ := FromValues([]float64{1, 2, 3}, []int{3})
	cases := []struct {
		mode PadMode
		want []float64
	}{
		{PadEdge, []float64{1, 1, 1, 2, 3, 3, 3}},
		{PadReflect, []float64{3, 2, 1, 2, 3, 2, 1}},
		{PadSymmetric, []float64{2, 1, 1, 2, 3, 3, 2}},
		{PadWrap, []float64{2, 3, 1, 2, 3, 1, 2}},
	}
	for _, tc := range cases {
		p, err := v.Pad([][2]int{{2, 2}}, tc.mode, 0)
		if err != nil {
			t.Fatalf("%v pad failed: %v", tc.mode, err)
		}
		for i, x := range p.Data() {
			if x != tc.want[i] {
				t.Errorf("%v: expected %v, got %v", tc.mode, tc.want, p.Data())
				break
			}
		}
	}
}

// TestMinMax verifies the range helper.
func TestMinMax(t *testing.T) {
	v, _ := FromValues([]float64{3, -2, 7, 0}, []int{4})
	lo, hi := v.MinMax()
	if lo != -2 || hi != 7 {
		t.Errorf("expected range [-2, 7], got [%g, %g]", lo, hi)
	}
}

// TestParseDType verifies name resolution including the empty default.
func TestParseDType(t *testing.T) {
	d, err := ParseDType("")
	if err != nil || d != Float64 {
		t.Errorf("empty name should default to float64, got %v, %v", d, err)
	}
	if _, err := ParseDType("complex128"); err == nil {
		t.Error("expected error for unsupported dtype")
	}
}

// TestQuantizeNaNSafe documents that float casts pass NaN through
// unchanged rather than clamping it.
func TestQuantizeNaNSafe(t *testing.T) {
	v, _ := FromValues([]float64{math.NaN()}, []int{1})
	f := v.AsType(Float32)
	if !math.IsNaN(f.At(0)) {
		t.Errorf("expected NaN to survive a float cast, got %g", f.At(0))
	}
}
