package transform

import (
	"fmt"

	"voximg/pkg/random"
)

// ValidPatchSize clamps a requested patch size against the actual
// image shape, one entry per axis. A requested entry of zero or less
// means the full extent of that axis. The result never exceeds the
// available extent on any axis.
func ValidPatchSize(imageShape, requested []int) ([]int, error) {
	if len(requested) != len(imageShape) {
		return nil, fmt.Errorf("patch size has %d entries for %d axes", len(requested), len(imageShape))
	}
	out := make([]int, len(imageShape))
	for i, r := range requested {
		if r <= 0 || r > imageShape[i] {
			out[i] = imageShape[i]
		} else {
			out[i] = r
		}
	}
	return out, nil
}

// RandomPatchStart samples a start position for a patch of patchShape
// inside imageShape, each axis independently and uniform over every
// position where the patch still fits. patchShape must already be
// clamped (see ValidPatchSize).
func RandomPatchStart(imageShape, patchShape []int, src *random.Source) ([]int, error) {
	if len(patchShape) != len(imageShape) {
		return nil, fmt.Errorf("patch shape has %d entries for %d axes", len(patchShape), len(imageShape))
	}
	start := make([]int, len(imageShape))
	for i := range imageShape {
		room := imageShape[i] - patchShape[i]
		if room < 0 {
			return nil, fmt.Errorf("patch extent %d exceeds image extent %d on axis %d", patchShape[i], imageShape[i], i)
		}
		if room == 0 {
			start[i] = 0
			continue
		}
		start[i] = src.Intn(room + 1)
	}
	return start, nil
}
