package transform

import (
	"fmt"
	"runtime"

	"voximg/pkg/interp"
	"voximg/pkg/volume"
)

// Resize resamples the image to a fixed output shape with spline
// interpolation, optionally low-pass filtering axes that are being
// down-sampled.
type Resize struct {
	outputShape []int
	opts        interp.ResizeOptions
}

// NewResize creates the transform. order must lie in 0..5.
func NewResize(outputShape []int, order int, mode volume.PadMode, cval float64,
	clip, preserveRange, antiAliasing bool, antiAliasingSigma []float64) (*Resize, error) {
	if order < 0 || order > 5 {
		return nil, fmt.Errorf("resize order %d out of range 0..5", order)
	}
	if len(outputShape) == 0 {
		return nil, fmt.Errorf("resize needs a non-empty output shape")
	}
	return &Resize{
		outputShape: append([]int(nil), outputShape...),
		opts: interp.ResizeOptions{
			Options: interp.Options{
				Order:     order,
				Mode:      mode,
				CVal:      cval,
				Prefilter: true,
			},
			Clip:              clip,
			PreserveRange:     preserveRange,
			AntiAliasing:      antiAliasing,
			AntiAliasingSigma: append([]float64(nil), antiAliasingSigma...),
		},
	}, nil
}

func (t *Resize) Apply(img *volume.Volume) (*volume.Volume, error) {
	return interp.Resize(img, t.outputShape, t.opts)
}

// Rotate rotates the image by a fixed angle, in degrees, in the plane
// given by two axes. By default the plane is the first two spatial
// axes of a channel-first volume.
type Rotate struct {
	angle   float64
	ax0     int
	ax1     int
	reshape bool
	opts    interp.Options
}

// NewRotate creates the transform. The interpolation order defaults to
// 1 when callers pass the RotateDefaultOrder constant; any order in
// 0..5 is accepted.
func NewRotate(angle float64, axes [2]int, reshape bool, order int,
	mode volume.PadMode, cval float64, prefilter bool) (*Rotate, error) {
	if order < 0 || order > 5 {
		return nil, fmt.Errorf("rotate order %d out of range 0..5", order)
	}
	return &Rotate{
		angle:   angle,
		ax0:     axes[0],
		ax1:     axes[1],
		reshape: reshape,
		opts: interp.Options{
			Order:     order,
			Mode:      mode,
			CVal:      cval,
			Prefilter: prefilter,
		},
	}, nil
}

// RotateDefaultOrder is the interpolation order Rotate uses unless
// configured otherwise. It is deliberately 1, not the order-3 default
// of the underlying interpolation primitive.
const RotateDefaultOrder = 1

func (t *Rotate) Apply(img *volume.Volume) (*volume.Volume, error) {
	return interp.RotatePlane(img, t.angle, t.ax0, t.ax1, t.reshape, t.opts)
}

// Zoom scales the image by a per-axis factor (or one factor for all
// axes). An optional fast path fans the work out over worker
// goroutines; it only supports order <= 1 and fill modes other than
// wrap and reflect, and incompatible requests silently use the
// sequential exact path instead. With keepSize the zoomed result is
// reconciled back to the input shape along the first three axes.
type Zoom struct {
	factors   []float64
	uniform   float64
	perAxis   bool
	keepSize  bool
	useFast   bool
	prefilter bool
	opts      interp.Options
}

// NewZoom creates the transform. Pass a single factor for uniform
// zoom, or one factor per axis.
func NewZoom(factors []float64, order int, mode volume.PadMode, cval float64,
	prefilter, useFast, keepSize bool) (*Zoom, error) {
	if order < 0 || order > 5 {
		return nil, fmt.Errorf("zoom order %d out of range 0..5", order)
	}
	if len(factors) == 0 {
		return nil, fmt.Errorf("zoom needs at least one factor")
	}
	for i, f := range factors {
		if f <= 0 {
			return nil, fmt.Errorf("zoom factor %g on axis %d not positive", f, i)
		}
	}
	z := &Zoom{
		keepSize:  keepSize,
		useFast:   useFast,
		prefilter: prefilter,
		opts: interp.Options{
			Order:     order,
			Mode:      mode,
			CVal:      cval,
			Prefilter: prefilter,
		},
	}
	if len(factors) == 1 {
		z.uniform = factors[0]
	} else {
		z.perAxis = true
		z.factors = append([]float64(nil), factors...)
	}
	return z, nil
}

func (t *Zoom) Apply(img *volume.Volume) (*volume.Volume, error) {
	factors := t.factors
	if !t.perAxis {
		factors = make([]float64, img.NDim())
		for i := range factors {
			factors[i] = t.uniform
		}
	} else if len(factors) != img.NDim() {
		return nil, fmt.Errorf("zoom has %d factors for %d axes", len(factors), img.NDim())
	}

	opts := t.opts
	if t.useFast && interp.FastZoomSupported(opts.Order, opts.Mode) {
		opts.Workers = runtime.NumCPU()
	}
	zoomed, err := interp.Zoom(img, factors, opts)
	if err != nil {
		return nil, err
	}
	if !t.keepSize {
		return zoomed, nil
	}
	return reconcileKeepSize(zoomed, img.Shape(), opts.CVal)
}

// reconcileKeepSize crops or pads the zoomed result back to the
// original extent along the first three axes only. Larger axes are
// cropped from the start; smaller axes are padded symmetrically with
// the constant fill, the odd extra element going at the end. The
// three-axis restriction is part of the contract and deliberately not
// generalized to other dimensionalities.
func reconcileKeepSize(zoomed *volume.Volume, origShape []int, cval float64) (*volume.Volume, error) {
	if zoomed.NDim() < 3 {
		return nil, fmt.Errorf("keep size needs at least 3 axes, image has %d", zoomed.NDim())
	}
	zShape := zoomed.Shape()
	start := make([]int, zoomed.NDim())
	end := append([]int(nil), zShape...)
	widths := make([][2]int, zoomed.NDim())
	for d := 0; d < 3; d++ {
		switch {
		case zShape[d] > origShape[d]:
			end[d] = origShape[d]
		case zShape[d] < origShape[d]:
			missing := origShape[d] - zShape[d]
			widths[d] = [2]int{missing / 2, missing - missing/2}
		}
	}
	out, err := zoomed.SliceRanges(start, end)
	if err != nil {
		return nil, err
	}
	return out.Pad(widths, volume.PadConstant, cval)
}
