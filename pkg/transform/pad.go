package transform

import (
	"errors"
	"fmt"

	"voximg/pkg/volume"
)

// Flip reverses element order along the configured axes, preserving
// shape. With no axes configured, every axis is flipped.
type Flip struct {
	axes []int
}

// NewFlip creates the transform. axes nil means all axes.
func NewFlip(axes []int) *Flip {
	return &Flip{axes: append([]int(nil), axes...)}
}

func (t *Flip) Apply(img *volume.Volume) (*volume.Volume, error) {
	return img.Flip(t.axes...)
}

// ImageEndPadder pads the image so that each trailing axis covered by
// outSize reaches at least the requested extent. Padding is appended
// only at the end of an axis, never the start, and floors at zero when
// an axis already meets its target. Leading axes not covered by
// outSize (batch, channel) are never padded.
type ImageEndPadder struct {
	outSize []int
	mode    volume.PadMode
	cval    float64
	dtype   volume.DType
}

// NewImageEndPadder creates the transform. outSize must be non-empty;
// mode uses the shared pad-mode vocabulary.
func NewImageEndPadder(outSize []int, mode volume.PadMode, cval float64, dtype volume.DType) (*ImageEndPadder, error) {
	if len(outSize) == 0 {
		return nil, errors.New("end padder needs a non-empty out size")
	}
	for i, s := range outSize {
		if s < 0 {
			return nil, fmt.Errorf("end padder out size %d negative on axis %d", s, i)
		}
	}
	return &ImageEndPadder{
		outSize: append([]int(nil), outSize...),
		mode:    mode,
		cval:    cval,
		dtype:   dtype,
	}, nil
}

func (t *ImageEndPadder) Apply(img *volume.Volume) (*volume.Volume, error) {
	shape := img.Shape()
	if len(t.outSize) > len(shape) {
		return nil, fmt.Errorf("end padder out size covers %d axes, image has %d", len(t.outSize), len(shape))
	}
	widths := make([][2]int, len(shape))
	lead := len(shape) - len(t.outSize)
	for i, target := range t.outSize {
		axis := lead + i
		pad := target - shape[axis]
		if pad < 0 {
			pad = 0
		}
		widths[axis] = [2]int{0, pad}
	}
	out, err := img.Pad(widths, t.mode, t.cval)
	if err != nil {
		return nil, err
	}
	return out.AsType(t.dtype), nil
}
