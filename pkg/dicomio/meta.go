package dicomio

import (
	"fmt"
	"math"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/mat"

	"voximg/pkg/volume"
)

// Metadata carries the load-time context of a volume: where it came
// from, the spatial affine mapping voxel indices (z, y, x order,
// channel excluded) to patient coordinates, and the scalar DICOM
// elements that survived the value-kind filter.
type Metadata struct {
	// Path is the source file or series directory.
	Path string

	// OriginalAffine is the 4x4 voxel-to-patient transform at load
	// time. It is never modified after loading.
	OriginalAffine *mat.Dense

	// Affine is the current voxel-to-patient transform; it differs
	// from OriginalAffine after a canonical-axis reorientation.
	Affine *mat.Dense

	// CanonicalApplied records whether reorientation took place.
	CanonicalApplied bool

	// Elements holds the filtered DICOM element values, keyed by the
	// dictionary name of their tag.
	Elements map[string]any
}

// keepValueKind is the predicate deciding which element values enter
// the metadata: plain string, integer and float values stay; raw byte
// payloads, pixel data and sequences are dropped.
func keepValueKind(vt dicom.ValueType) bool {
	switch vt {
	case dicom.Strings, dicom.Ints, dicom.Floats:
		return true
	}
	return false
}

func newMetadata(path string, ds *dicom.Dataset) *Metadata {
	meta := &Metadata{Path: path, Elements: make(map[string]any)}
	for _, el := range ds.Elements {
		if el.Value == nil || !keepValueKind(el.Value.ValueType()) {
			continue
		}
		name := fmt.Sprintf("(%04x,%04x)", el.Tag.Group, el.Tag.Element)
		if info, err := tag.Find(el.Tag); err == nil && info.Name != "" {
			name = info.Name
		}
		meta.Elements[name] = el.Value.GetValue()
	}
	return meta
}

// affineFromDataset builds the voxel-to-patient affine from the image
// orientation, pixel spacing and position elements, with identity
// directions for anything missing. Columns are ordered by the spatial
// volume axes (slice, row, column).
func affineFromDataset(ds *dicom.Dataset, sliceSpacing float64) *mat.Dense {
	rowDir := []float64{1, 0, 0}
	colDir := []float64{0, 1, 0}
	if v, ok := elementFloats(ds, tagImageOrientationPatient); ok && len(v) == 6 {
		rowDir = v[:3]
		colDir = v[3:]
	}
	rowSp, colSp := 1.0, 1.0
	if v, ok := elementFloats(ds, tagPixelSpacing); ok && len(v) == 2 {
		rowSp, colSp = v[0], v[1]
	}
	pos := []float64{0, 0, 0}
	if v, ok := elementFloats(ds, tagImagePositionPatient); ok && len(v) == 3 {
		pos = v
	}
	normal := cross(rowDir, colDir)

	a := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		a.Set(i, 0, normal[i]*sliceSpacing)
		a.Set(i, 1, colDir[i]*rowSp)
		a.Set(i, 2, rowDir[i]*colSp)
		a.Set(i, 3, pos[i])
	}
	a.Set(3, 3, 1)
	return a
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func cloneAffine(a *mat.Dense) *mat.Dense {
	out := mat.NewDense(4, 4, nil)
	out.Copy(a)
	return out
}

// canonicalize permutes and flips the spatial axes of a channel-first
// volume so each axis's dominant patient direction is positive and the
// axes appear in patient-coordinate order. The metadata's current
// affine is updated accordingly; the original affine stays untouched.
func canonicalize(vol *volume.Volume, meta *Metadata) (*volume.Volume, error) {
	if vol.NDim() != 4 {
		return nil, fmt.Errorf("canonical reorientation needs a channel plus 3 spatial axes, image has %d axes", vol.NDim())
	}
	r := meta.Affine

	// Dominant patient direction per spatial axis.
	dominant := make([]int, 3)
	negative := make([]bool, 3)
	used := make(map[int]bool)
	for j := 0; j < 3; j++ {
		best, bestAbs := 0, -1.0
		for i := 0; i < 3; i++ {
			if abs := math.Abs(r.At(i, j)); abs > bestAbs {
				best, bestAbs = i, abs
			}
		}
		dominant[j] = best
		negative[j] = r.At(best, j) < 0
		if used[best] {
			// Degenerate geometry: two axes share a dominant
			// direction, leave the volume as loaded.
			return vol, nil
		}
		used[best] = true
	}

	// perm[k] = old spatial axis that lands at position k.
	perm := make([]int, 3)
	for j := 0; j < 3; j++ {
		perm[dominant[j]] = j
	}

	shape := vol.Shape()
	out, err := vol.Transpose([]int{0, 1 + perm[0], 1 + perm[1], 1 + perm[2]})
	if err != nil {
		return nil, err
	}
	var flipAxes []int
	for k := 0; k < 3; k++ {
		if negative[perm[k]] {
			flipAxes = append(flipAxes, 1+k)
		}
	}
	if len(flipAxes) > 0 {
		out, err = out.Flip(flipAxes...)
		if err != nil {
			return nil, err
		}
	}

	// Rebuild the affine: permuted columns, flipped axes negate their
	// column and shift the origin to the opposite end of the axis.
	updated := cloneAffine(r)
	for k := 0; k < 3; k++ {
		j := perm[k]
		sign := 1.0
		if negative[j] {
			sign = -1
		}
		n := shape[1+j]
		for i := 0; i < 3; i++ {
			col := r.At(i, j)
			updated.Set(i, k, sign*col)
			if negative[j] && n > 1 {
				updated.Set(i, 3, updated.At(i, 3)+col*float64(n-1))
			}
		}
	}
	meta.Affine = updated
	meta.CanonicalApplied = true
	return out, nil
}
