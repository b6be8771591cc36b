package dicomio

import (
	"math"
	"testing"

	"github.com/suyashkumar/dicom"
	"gonum.org/v1/gonum/mat"

	"voximg/pkg/volume"
)

// TestCross verifies the handedness of the orientation normal.
func TestCross(t *testing.T) {
	got := cross([]float64{1, 0, 0}, []float64{0, 1, 0})
	want := []float64{0, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestKeepValueKind verifies the element filter: scalar kinds stay,
// payload kinds are dropped.
func TestKeepValueKind(t *testing.T) {
	keep := []dicom.ValueType{dicom.Strings, dicom.Ints, dicom.Floats}
	drop := []dicom.ValueType{dicom.Bytes, dicom.PixelData, dicom.SequenceItem, dicom.Sequences}
	for _, vt := range keep {
		if !keepValueKind(vt) {
			t.Errorf("value type %v should be kept", vt)
		}
	}
	for _, vt := range drop {
		if keepValueKind(vt) {
			t.Errorf("value type %v should be dropped", vt)
		}
	}
}

func identityAffine() *mat.Dense {
	a := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		a.Set(i, i, 1)
	}
	return a
}

// TestCanonicalizeIdentity verifies that an already-canonical volume
// passes through unchanged but is marked as reoriented.
func TestCanonicalizeIdentity(t *testing.T) {
	v, _ := volume.FromValues([]float64{1, 2, 3, 4, 5, 6, 7, 8}, []int{1, 2, 2, 2})
	meta := &Metadata{Affine: identityAffine()}
	out, err := canonicalize(v, meta)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(v) {
		t.Error("identity orientation changed the volume")
	}
	if !meta.CanonicalApplied {
		t.Error("reorientation not recorded")
	}
}

// TestCanonicalizePermutesAndFlips verifies axis reordering by
// dominant patient direction and the flip of a negated axis, with the
// affine updated to match.
func TestCanonicalizePermutesAndFlips(t *testing.T) {
	v, _ := volume.New([]int{1, 2, 3, 4}, volume.Float64)
	// Axis 0 points along patient axis 2, axis 1 along -1, axis 2
	// along 0.
	a := mat.NewDense(4, 4, []float64{
		0, 0, 3, 10,
		0, -1, 0, 20,
		2, 0, 0, 30,
		0, 0, 0, 1,
	})
	meta := &Metadata{Affine: a, OriginalAffine: cloneAffine(a)}
	out, err := canonicalize(v, meta)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Shape()
	want := []int{1, 4, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got shape %v, want %v", got, want)
		}
	}
	if !meta.CanonicalApplied {
		t.Fatal("reorientation not recorded")
	}
	// The flipped axis had direction (0, -1, 0) over 3 voxels: its
	// column turns positive and the origin shifts by -1 * 2.
	if meta.Affine.At(1, 1) != 1 {
		t.Errorf("flipped column not negated: %g", meta.Affine.At(1, 1))
	}
	if meta.Affine.At(1, 3) != 18 {
		t.Errorf("origin not shifted to the axis end: %g", meta.Affine.At(1, 3))
	}
	// Columns reordered: the new leading column is the old axis-2
	// direction.
	if meta.Affine.At(0, 0) != 3 || meta.Affine.At(2, 2) != 2 {
		t.Errorf("columns not permuted: %v", mat.Formatted(meta.Affine))
	}
	// The load-time affine is untouched.
	if meta.OriginalAffine.At(1, 1) != -1 {
		t.Error("original affine modified")
	}
}

// TestCanonicalizeDegenerateGeometry verifies that a rank-deficient
// orientation is left alone instead of reoriented.
func TestCanonicalizeDegenerateGeometry(t *testing.T) {
	v, _ := volume.New([]int{1, 2, 2, 2}, volume.Float64)
	a := mat.NewDense(4, 4, []float64{
		1, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 0,
		0, 0, 0, 1,
	})
	meta := &Metadata{Affine: a}
	out, err := canonicalize(v, meta)
	if err != nil {
		t.Fatal(err)
	}
	if out != v {
		t.Error("degenerate geometry should return the volume as loaded")
	}
	if meta.CanonicalApplied {
		t.Error("degenerate geometry must not be marked reoriented")
	}
}

// TestCanonicalizeNeedsFourAxes verifies the dimensionality guard.
func TestCanonicalizeNeedsFourAxes(t *testing.T) {
	v, _ := volume.New([]int{2, 2, 2}, volume.Float64)
	if _, err := canonicalize(v, &Metadata{Affine: identityAffine()}); err == nil {
		t.Error("expected error for a volume without a channel axis")
	}
}

// TestAffineDefaultsToIdentityDirections verifies the fallback affine
// for a dataset without orientation elements.
func TestAffineDefaultsToIdentityDirections(t *testing.T) {
	ds := &dicom.Dataset{}
	a := affineFromDataset(ds, 2.5)
	// Normal of the default row/col directions is (0, 0, 1), scaled
	// by the slice spacing.
	if a.At(2, 0) != 2.5 {
		t.Errorf("slice column %g, want 2.5", a.At(2, 0))
	}
	if a.At(1, 1) != 1 || a.At(0, 2) != 1 || a.At(3, 3) != 1 {
		t.Errorf("unexpected defaults: %v", mat.Formatted(a))
	}
	for i := 0; i < 3; i++ {
		if a.At(i, 3) != 0 {
			t.Errorf("default origin not zero: %v", mat.Formatted(a))
		}
	}
	if math.Abs(a.At(0, 0))+math.Abs(a.At(1, 0)) != 0 {
		t.Errorf("slice direction not aligned with patient z: %v", mat.Formatted(a))
	}
}
