package transform

import (
	"errors"
	"fmt"

	"voximg/pkg/random"
	"voximg/pkg/volume"
)

// SpatialCrop produces a sub-volume region of interest from a
// channel-first image, supporting 1, 2 or 3 spatial dimensions. The
// channel axis is carried over whole. The ROI is fixed at
// construction, either as a center and size or as start and end
// coordinates, and must sit within the image at call time.
type SpatialCrop struct {
	start []int
	end   []int
}

// NewSpatialCropCenter builds the crop from a per-axis center and
// size, both strictly positive. The start is center - size/2 (floor
// division), the end is start + size.
func NewSpatialCropCenter(center, size []int) (*SpatialCrop, error) {
	if len(center) == 0 || len(center) != len(size) {
		return nil, fmt.Errorf("roi center has %d entries, size has %d", len(center), len(size))
	}
	for i := range center {
		if center[i] <= 0 {
			return nil, fmt.Errorf("roi center %d on axis %d must be positive", center[i], i)
		}
		if size[i] <= 0 {
			return nil, fmt.Errorf("roi size %d on axis %d must be positive", size[i], i)
		}
	}
	start := make([]int, len(center))
	end := make([]int, len(center))
	for i := range center {
		start[i] = center[i] - size[i]/2
		end[i] = start[i] + size[i]
	}
	return &SpatialCrop{start: start, end: end}, nil
}

// NewSpatialCropRange builds the crop directly from start and end
// coordinates; start entries must be non-negative and end entries
// positive.
func NewSpatialCropRange(start, end []int) (*SpatialCrop, error) {
	if len(start) == 0 || len(start) != len(end) {
		return nil, fmt.Errorf("roi start has %d entries, end has %d", len(start), len(end))
	}
	for i := range start {
		if start[i] < 0 {
			return nil, fmt.Errorf("roi start %d on axis %d must not be negative", start[i], i)
		}
		if end[i] <= 0 {
			return nil, fmt.Errorf("roi end %d on axis %d must be positive", end[i], i)
		}
	}
	return &SpatialCrop{
		start: append([]int(nil), start...),
		end:   append([]int(nil), end...),
	}, nil
}

// Start returns the per-axis ROI start.
func (t *SpatialCrop) Start() []int { return append([]int(nil), t.start...) }

// End returns the per-axis ROI end.
func (t *SpatialCrop) End() []int { return append([]int(nil), t.end...) }

func (t *SpatialCrop) Apply(img *volume.Volume) (*volume.Volume, error) {
	nd := len(t.start)
	if nd < 1 || nd > 3 {
		return nil, fmt.Errorf("spatial crop supports 1 to 3 spatial dimensions, got %d", nd)
	}
	if img.NDim() != nd+1 {
		return nil, fmt.Errorf("image has %d axes, expected channel plus %d spatial", img.NDim(), nd)
	}
	spatial := img.Shape()[1:]
	for i := 0; i < nd; i++ {
		if t.start[i] < 0 {
			return nil, fmt.Errorf("roi start %d out of image space on axis %d", t.start[i], i)
		}
		if t.end[i] > spatial[i] {
			return nil, fmt.Errorf("roi end %d out of image space on axis %d (extent %d)", t.end[i], i, spatial[i])
		}
		if t.end[i] < t.start[i] {
			return nil, fmt.Errorf("invalid roi range [%d, %d) on axis %d", t.start[i], t.end[i], i)
		}
	}
	start := append([]int{0}, t.start...)
	end := append([]int{img.Shape()[0]}, t.end...)
	return img.SliceRanges(start, end)
}

// UniformRandomPatch crops a patch of the requested size at a
// uniformly random position. Requested extents are clamped against the
// image's spatial shape; entries of zero or less select the full axis.
// The channel axis is never cropped.
type UniformRandomPatch struct {
	patchSize []int
	src       *random.Source

	lastStart []int
}

// NewUniformRandomPatch creates the transform with one requested
// extent per spatial axis and the injected source.
func NewUniformRandomPatch(patchSize []int, src *random.Source) (*UniformRandomPatch, error) {
	if len(patchSize) == 0 {
		return nil, errors.New("random patch needs a non-empty patch size")
	}
	if src == nil {
		return nil, errors.New("random patch needs a random source")
	}
	return &UniformRandomPatch{patchSize: append([]int(nil), patchSize...), src: src}, nil
}

// LastStart returns the patch start drawn on the most recent call,
// one entry per spatial axis.
func (t *UniformRandomPatch) LastStart() []int {
	return append([]int(nil), t.lastStart...)
}

func (t *UniformRandomPatch) Apply(img *volume.Volume) (*volume.Volume, error) {
	spatial := img.Shape()[1:]
	if len(t.patchSize) != len(spatial) {
		return nil, fmt.Errorf("patch size has %d entries for %d spatial axes", len(t.patchSize), len(spatial))
	}
	size, err := ValidPatchSize(spatial, t.patchSize)
	if err != nil {
		return nil, err
	}
	start, err := RandomPatchStart(spatial, size, t.src)
	if err != nil {
		return nil, err
	}
	t.lastStart = start
	fullStart := append([]int{0}, start...)
	fullEnd := make([]int, 0, img.NDim())
	fullEnd = append(fullEnd, img.Shape()[0])
	for i := range start {
		fullEnd = append(fullEnd, start[i]+size[i])
	}
	return img.SliceRanges(fullStart, fullEnd)
}
