package interp

import (
	"fmt"
	"math"

	"voximg/pkg/volume"
)

// ResizeOptions control Resize beyond the shared resampling options.
type ResizeOptions struct {
	Options

	// Clip clamps the result to the value range of the input. Spline
	// interpolation above order 1 can overshoot; clipping restores
	// the input range.
	Clip bool

	// PreserveRange keeps the input values as-is. When false, volumes
	// with an integer dtype are scaled into [0, 1] floats first.
	PreserveRange bool

	// AntiAliasing applies a Gaussian low-pass along every axis that
	// is being down-sampled, before resampling.
	AntiAliasing bool

	// AntiAliasingSigma overrides the per-axis filter widths. Nil
	// derives sigma from the per-axis scale factor.
	AntiAliasingSigma []float64
}

// Resize resamples v to exactly outShape. Sample positions follow the
// pixel-center convention: input coordinate (i + 0.5)*factor - 0.5 for
// output index i, factor being inLen/outLen per axis.
func Resize(v *volume.Volume, outShape []int, o ResizeOptions) (*volume.Volume, error) {
	if len(outShape) != v.NDim() {
		return nil, fmt.Errorf("interp: resize shape %v for %d axes", outShape, v.NDim())
	}
	if err := o.check(); err != nil {
		return nil, err
	}
	if o.AntiAliasingSigma != nil && len(o.AntiAliasingSigma) != v.NDim() {
		return nil, fmt.Errorf("interp: %d anti-aliasing sigmas for %d axes", len(o.AntiAliasingSigma), v.NDim())
	}

	out := v
	if !o.PreserveRange {
		out = toFloatRange(out)
	}
	loIn, hiIn := out.MinMax()

	factors := make([]float64, v.NDim())
	inShape := v.Shape()
	for i := range factors {
		if outShape[i] <= 0 {
			return nil, fmt.Errorf("interp: resize extent %d on axis %d not positive", outShape[i], i)
		}
		factors[i] = float64(inShape[i]) / float64(outShape[i])
	}

	if o.AntiAliasing {
		for axis, f := range factors {
			sigma := math.Max(0, (f-1)/2)
			if o.AntiAliasingSigma != nil {
				sigma = o.AntiAliasingSigma[axis]
			}
			if sigma <= 0 {
				continue
			}
			var err error
			out, err = gaussianBlurAxis(out, axis, sigma, o.Mode, o.CVal)
			if err != nil {
				return nil, err
			}
		}
	}

	for axis := 0; axis < v.NDim(); axis++ {
		if outShape[axis] == out.Shape()[axis] && factors[axis] == 1 {
			continue
		}
		f := factors[axis]
		var err error
		out, err = resampleAxis(out, axis, outShape[axis], func(i int) float64 {
			return (float64(i)+0.5)*f - 0.5
		}, o.Options)
		if err != nil {
			return nil, err
		}
	}
	if out == v {
		out = v.Clone()
	}
	if o.Clip {
		data := out.Data()
		for i, x := range data {
			if x < loIn {
				data[i] = loIn
			} else if x > hiIn {
				data[i] = hiIn
			}
		}
	}
	return out, nil
}

// toFloatRange rescales integer-typed volumes into [0, 1] floats, the
// way float conversion of integer images is conventionally defined.
// Float volumes pass through unchanged.
func toFloatRange(v *volume.Volume) *volume.Volume {
	var max float64
	switch v.DType() {
	case volume.Uint8:
		max = math.MaxUint8
	case volume.Uint16:
		max = math.MaxUint16
	case volume.Int16:
		max = math.MaxInt16
	case volume.Int32:
		max = math.MaxInt32
	default:
		return v
	}
	out := v.Clone()
	out.SetDType(volume.Float64)
	data := out.Data()
	for i := range data {
		data[i] /= max
	}
	return out
}

// gaussianBlurAxis convolves one axis with a normalized Gaussian of
// the given sigma, truncated at four standard deviations. Boundary
// samples follow mode/cval like the resampling itself.
func gaussianBlurAxis(v *volume.Volume, axis int, sigma float64, mode volume.PadMode, cval float64) (*volume.Volume, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("interp: negative blur sigma %g", sigma)
	}
	radius := int(math.Ceil(4 * sigma))
	if radius == 0 {
		return v.Clone(), nil
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	out, err := volume.New(v.Shape(), v.DType())
	if err != nil {
		return nil, err
	}
	it := newLineIterator(v, axis)
	line := make([]float64, it.length)
	res := make([]float64, it.length)
	for li := 0; li < it.numLines; li++ {
		it.read(v.Data(), li, line)
		for i := 0; i < it.length; i++ {
			acc := 0.0
			for k, w := range kernel {
				j := i + k - radius
				if j < 0 || j >= it.length {
					if mode == volume.PadConstant {
						acc += w * cval
						continue
					}
					j = volume.MapIndex(j, it.length, mode)
				}
				acc += w * line[j]
			}
			res[i] = acc
		}
		it.write(out.Data(), li, res)
	}
	return out, nil
}
