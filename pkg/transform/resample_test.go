package transform

import (
	"math"
	"testing"

	"voximg/pkg/volume"
)

// TestResizeTransformShape verifies the output shape and constructor
// validation.
func TestResizeTransformShape(t *testing.T) {
	v, _ := volume.New([]int{1, 8, 8}, volume.Float64)
	r, err := NewResize([]int{1, 4, 16}, 1, volume.PadReflect, 0, true, true, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Shape()
	want := []int{1, 4, 16}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got shape %v, want %v", got, want)
		}
	}
	if _, err := NewResize([]int{1, 4}, 6, volume.PadReflect, 0, true, true, true, nil); err == nil {
		t.Error("expected error for order above 5")
	}
	if _, err := NewResize(nil, 1, volume.PadReflect, 0, true, true, true, nil); err == nil {
		t.Error("expected error for empty shape")
	}
}

// TestRotateTransformZeroAngle verifies the near-identity of a zero
// rotation at the default interpolation order.
func TestRotateTransformZeroAngle(t *testing.T) {
	v, _ := volume.FromValues([]float64{1, 2, 3, 4}, []int{1, 2, 2})
	r, err := NewRotate(0, [2]int{1, 2}, true, RotateDefaultOrder, volume.PadConstant, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range out.Data() {
		if math.Abs(x-v.Data()[i]) > 1e-12 {
			t.Fatalf("got %v, want the input back", out.Data())
		}
	}
}

// TestRotateTransformReshape verifies the grown bounding box for a
// 90-degree rotation of a rectangular plane.
func TestRotateTransformReshape(t *testing.T) {
	v, _ := volume.New([]int{1, 3, 7}, volume.Float64)
	r, err := NewRotate(90, [2]int{1, 2}, true, RotateDefaultOrder, volume.PadConstant, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Shape()
	want := []int{1, 7, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got shape %v, want %v", got, want)
		}
	}
}

// TestZoomKeepSizeRestoresShape verifies crop-and-pad reconciliation
// back to the input extents for mixed up- and down-sampling.
func TestZoomKeepSizeRestoresShape(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 1
	}
	v, _ := volume.FromValues(data, []int{1, 8, 8})
	z, err := NewZoom([]float64{1, 0.5, 2}, 1, volume.PadConstant, 0, false, false, true)
	if err != nil {
		t.Fatal(err)
	}
	out, err := z.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Shape()
	want := []int{1, 8, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got shape %v, want %v", got, want)
		}
	}
	// The down-sampled axis was padded symmetrically with the fill;
	// the first and last rows of the plane are fill rows.
	if out.At(0, 0, 0) != 0 || out.At(0, 7, 7) != 0 {
		t.Error("expected constant fill at the padded border")
	}
	if out.At(0, 4, 4) != 1 {
		t.Error("expected original content in the interior")
	}
}

// TestZoomKeepSizeOddPadGoesLast verifies that an odd pad amount puts
// the extra element at the end of the axis.
func TestZoomKeepSizeOddPadGoesLast(t *testing.T) {
	data := make([]float64, 5*5)
	for i := range data {
		data[i] = 1
	}
	v, _ := volume.FromValues(data, []int{1, 5, 5})
	// Factor 0.6 on a length-5 axis yields 3 samples, missing 2 is
	// split 1/1; factor 0.2 yields 1 sample, missing 4 splits 2/2.
	// Use 0.8 for 4 samples, missing 1 goes to the end.
	z, err := NewZoom([]float64{1, 0.8, 1}, 0, volume.PadConstant, -1, false, false, true)
	if err != nil {
		t.Fatal(err)
	}
	out, err := z.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	if out.Shape()[1] != 5 {
		t.Fatalf("got shape %v, want the input extents", out.Shape())
	}
	if out.At(0, 0, 0) != 1 {
		t.Error("expected content at the start of the padded axis")
	}
	if out.At(0, 4, 0) != -1 {
		t.Error("expected the odd fill element at the end of the axis")
	}
}

// TestZoomKeepSizeNeedsThreeAxes verifies the dimensionality guard.
func TestZoomKeepSizeNeedsThreeAxes(t *testing.T) {
	v, _ := volume.New([]int{4, 4}, volume.Float64)
	z, err := NewZoom([]float64{0.5, 0.5}, 1, volume.PadConstant, 0, false, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := z.Apply(v); err == nil {
		t.Error("expected error for keep size on a 2-axis image")
	}
}

// TestZoomFastPathMatchesExact verifies that enabling the accelerated
// path does not change the result when it is eligible.
func TestZoomFastPathMatchesExact(t *testing.T) {
	data := make([]float64, 2*12*12)
	for i := range data {
		data[i] = math.Cos(float64(i) * 0.07)
	}
	v, _ := volume.FromValues(data, []int{2, 12, 12})
	slow, err := NewZoom([]float64{1, 2, 0.5}, 1, volume.PadEdge, 0, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	fast, err := NewZoom([]float64{1, 2, 0.5}, 1, volume.PadEdge, 0, false, true, false)
	if err != nil {
		t.Fatal(err)
	}
	a, err := slow.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fast.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("accelerated zoom diverged from the sequential result")
	}
}

// TestZoomUniformFactorExpands verifies the single-factor form
// covers every axis.
func TestZoomUniformFactorExpands(t *testing.T) {
	v, _ := volume.New([]int{2, 4, 6}, volume.Float64)
	z, err := NewZoom([]float64{2}, 0, volume.PadEdge, 0, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	out, err := z.Apply(v)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Shape()
	want := []int{4, 8, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got shape %v, want %v", got, want)
		}
	}
}

// TestZoomRejectsBadConfig verifies constructor and call-time
// validation.
func TestZoomRejectsBadConfig(t *testing.T) {
	if _, err := NewZoom(nil, 1, volume.PadConstant, 0, false, false, false); err == nil {
		t.Error("expected error for no factors")
	}
	if _, err := NewZoom([]float64{-1}, 1, volume.PadConstant, 0, false, false, false); err == nil {
		t.Error("expected error for negative factor")
	}
	if _, err := NewZoom([]float64{1}, 9, volume.PadConstant, 0, false, false, false); err == nil {
		t.Error("expected error for order above 5")
	}
	z, err := NewZoom([]float64{1, 1}, 1, volume.PadConstant, 0, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := volume.New([]int{2, 2, 2}, volume.Float64)
	if _, err := z.Apply(v); err == nil {
		t.Error("expected error for factor count not matching the axes")
	}
}
