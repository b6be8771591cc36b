package transform

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"voximg/pkg/random"
	"voximg/pkg/volume"
)

// Rescale affinely maps the image's value range to [minv, maxv] and
// casts the result to the configured dtype.
type Rescale struct {
	minv, maxv float64
	dtype      volume.DType
}

// NewRescale creates the transform.
func NewRescale(minv, maxv float64, dtype volume.DType) *Rescale {
	return &Rescale{minv: minv, maxv: maxv, dtype: dtype}
}

func (t *Rescale) Apply(img *volume.Volume) (*volume.Volume, error) {
	lo, hi := img.MinMax()
	if lo == hi {
		// Constant image: no range to stretch, return it unchanged
		// apart from the dtype cast.
		return img.AsType(t.dtype), nil
	}
	out := img.Clone()
	data := out.Data()
	scale := (t.maxv - t.minv) / (hi - lo)
	for i, x := range data {
		data[i] = (x-lo)*scale + t.minv
	}
	return out.AsType(t.dtype), nil
}

// GaussianNoise adds elementwise Gaussian noise to the image. The
// noise standard deviation is itself drawn once per call, uniform over
// [0, std], so consecutive calls perturb with varying strength.
type GaussianNoise struct {
	mean, std float64
	src       *random.Source

	lastSigma float64
}

// NewGaussianNoise creates the transform with the injected source.
func NewGaussianNoise(mean, std float64, src *random.Source) (*GaussianNoise, error) {
	if std < 0 {
		return nil, fmt.Errorf("gaussian noise std %g negative", std)
	}
	if src == nil {
		return nil, errors.New("gaussian noise needs a random source")
	}
	return &GaussianNoise{mean: mean, std: std, src: src}, nil
}

// LastSigma returns the noise spread drawn on the most recent call.
func (t *GaussianNoise) LastSigma() float64 { return t.lastSigma }

func (t *GaussianNoise) Apply(img *volume.Volume) (*volume.Volume, error) {
	t.lastSigma = t.src.Uniform(0, t.std)
	noise := t.src.Normal(t.mean, t.lastSigma, img.Len())
	out := img.Clone()
	data := out.Data()
	for i := range data {
		data[i] += noise[i]
	}
	return out, nil
}

// IntensityNormalizer normalizes the image either with a fixed
// subtrahend/divisor pair or, when neither is given, with the image's
// own global mean and (population) standard deviation. The carried
// buffer is updated in place before the dtype cast check.
type IntensityNormalizer struct {
	subtrahend *volume.Volume
	divisor    *volume.Volume
	dtype      volume.DType
}

// NewIntensityNormalizer creates the transform. subtrahend and divisor
// must be supplied together or not at all; when supplied, each must be
// either a single element or match the image shape at call time.
func NewIntensityNormalizer(subtrahend, divisor *volume.Volume, dtype volume.DType) (*IntensityNormalizer, error) {
	if (subtrahend == nil) != (divisor == nil) {
		return nil, errors.New("subtrahend and divisor must be set as a pair")
	}
	return &IntensityNormalizer{subtrahend: subtrahend, divisor: divisor, dtype: dtype}, nil
}

func (t *IntensityNormalizer) Apply(img *volume.Volume) (*volume.Volume, error) {
	data := img.Data()
	if t.subtrahend != nil {
		if err := applyOperand(data, img.Shape(), t.subtrahend, func(a, b float64) float64 { return a - b }); err != nil {
			return nil, fmt.Errorf("subtrahend: %w", err)
		}
		if err := applyOperand(data, img.Shape(), t.divisor, func(a, b float64) float64 { return a / b }); err != nil {
			return nil, fmt.Errorf("divisor: %w", err)
		}
	} else {
		mean := stat.Mean(data, nil)
		std := stat.PopStdDev(data, nil)
		for i := range data {
			data[i] -= mean
		}
		if std != 0 {
			for i := range data {
				data[i] /= std
			}
		}
	}
	if t.dtype != img.DType() {
		return img.AsType(t.dtype), nil
	}
	return img, nil
}

// applyOperand combines data elementwise with op, which must hold
// either a single value or one value per element.
func applyOperand(data []float64, shape []int, op *volume.Volume, f func(a, b float64) float64) error {
	vals := op.Data()
	switch {
	case len(vals) == 1:
		for i := range data {
			data[i] = f(data[i], vals[0])
		}
	case len(vals) == len(data):
		for i := range data {
			data[i] = f(data[i], vals[i])
		}
	default:
		return fmt.Errorf("operand has %d elements for image shape %v", len(vals), shape)
	}
	return nil
}
