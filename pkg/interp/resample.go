package interp

import (
	"fmt"
	"math"
	"sync"

	"voximg/pkg/volume"
)

// Options control a resampling operation.
type Options struct {
	// Order is the spline interpolation order, 0 to 5.
	Order int

	// Mode selects how sample positions outside the input are filled.
	// The vocabulary is shared with volume.Pad.
	Mode volume.PadMode

	// CVal is the fill value for volume.PadConstant.
	CVal float64

	// Prefilter applies the B-spline prefilter before interpolation
	// with Order >= 2. Without it the result is smoothed rather than
	// interpolating.
	Prefilter bool

	// Workers is the number of goroutines resampling lines or planes
	// concurrently. Values below 2 select the sequential path.
	Workers int
}

// check validates the option set shared by all entry points.
func (o Options) check() error {
	if o.Order < 0 || o.Order > 5 {
		return fmt.Errorf("interp: spline order %d out of range 0..5", o.Order)
	}
	return nil
}

// interpAt evaluates the spline interpolant of a line at coordinate c.
// For orders >= 2 the line must already contain B-spline coefficients.
func interpAt(line []float64, c float64, order int, mode volume.PadMode, cval float64) float64 {
	n := len(line)
	if n == 0 {
		return cval
	}
	if mode == volume.PadConstant && (c < 0 || c > float64(n-1)) {
		return cval
	}
	if order == 0 {
		// Nearest neighbor, rounding half up.
		j := int(math.Floor(c + 0.5))
		if j < 0 || j >= n {
			m := mode
			if m == volume.PadConstant {
				m = volume.PadReflect
			}
			j = volume.MapIndex(j, n, m)
		}
		return line[j]
	}
	start := tapStart(c, order)
	sum := 0.0
	for k := 0; k <= order; k++ {
		j := start + k
		w := bspline(c-float64(j), order)
		if w == 0 {
			continue
		}
		if j < 0 || j >= n {
			// Constant mode folds edge taps mirror-style; truly
			// outside coordinates were handled above.
			m := mode
			if m == volume.PadConstant {
				m = volume.PadReflect
			}
			j = volume.MapIndex(j, n, m)
		}
		sum += w * line[j]
	}
	return sum
}

// lineIterator walks all 1-D lines of a volume along one axis.
type lineIterator struct {
	stride      int
	length      int
	outerShape  []int
	outerStride []int
	numLines    int
}

func newLineIterator(v *volume.Volume, axis int) *lineIterator {
	shape := v.Shape()
	strides := v.Strides()
	it := &lineIterator{stride: strides[axis], length: shape[axis], numLines: 1}
	for i := range shape {
		if i == axis {
			continue
		}
		it.outerShape = append(it.outerShape, shape[i])
		it.outerStride = append(it.outerStride, strides[i])
		it.numLines *= shape[i]
	}
	return it
}

// start returns the buffer offset of line li.
func (it *lineIterator) start(li int) int {
	off := 0
	for i := len(it.outerShape) - 1; i >= 0; i-- {
		if it.outerShape[i] == 0 {
			continue
		}
		off += (li % it.outerShape[i]) * it.outerStride[i]
		li /= it.outerShape[i]
	}
	return off
}

func (it *lineIterator) read(data []float64, li int, dst []float64) {
	off := it.start(li)
	for i := 0; i < it.length; i++ {
		dst[i] = data[off+i*it.stride]
	}
}

func (it *lineIterator) write(data []float64, li int, src []float64) {
	off := it.start(li)
	for i := range src {
		data[off+i*it.stride] = src[i]
	}
}

// resampleAxis resamples a single axis of v to outLen elements, with
// coord giving the input coordinate for each output index. All other
// axes are untouched. Lines are processed independently, fanned out
// over opts.Workers goroutines when more than one is requested.
func resampleAxis(v *volume.Volume, axis, outLen int, coord func(int) float64, opts Options) (*volume.Volume, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	shape := v.Shape()
	if axis < 0 || axis >= len(shape) {
		return nil, fmt.Errorf("interp: axis %d out of range for %d axes", axis, len(shape))
	}
	outShape := append([]int(nil), shape...)
	outShape[axis] = outLen
	out, err := volume.New(outShape, v.DType())
	if err != nil {
		return nil, err
	}
	if out.Len() == 0 {
		return out, nil
	}

	poles, err := splinePoles(opts.Order)
	if err != nil {
		return nil, err
	}
	if !opts.Prefilter {
		poles = nil
	}

	coords := make([]float64, outLen)
	for i := range coords {
		coords[i] = coord(i)
	}

	inIt := newLineIterator(v, axis)
	outIt := newLineIterator(out, axis)

	work := func(first, last int) {
		line := make([]float64, inIt.length)
		res := make([]float64, outLen)
		for li := first; li < last; li++ {
			inIt.read(v.Data(), li, line)
			filterLine(line, poles)
			for i, c := range coords {
				res[i] = interpAt(line, c, opts.Order, opts.Mode, opts.CVal)
			}
			outIt.write(out.Data(), li, res)
		}
	}

	workers := opts.Workers
	if workers < 2 || inIt.numLines < 2 {
		work(0, inIt.numLines)
		return out, nil
	}
	if workers > inIt.numLines {
		workers = inIt.numLines
	}
	per := (inIt.numLines + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		first := w * per
		last := first + per
		if last > inIt.numLines {
			last = inIt.numLines
		}
		if first >= last {
			break
		}
		wg.Add(1)
		go func(first, last int) {
			defer wg.Done()
			work(first, last)
		}(first, last)
	}
	wg.Wait()
	return out, nil
}

// ZoomShape returns the output shape for zooming shape by the given
// per-axis factors, rounding each scaled extent to the nearest
// integer.
func ZoomShape(shape []int, factors []float64) []int {
	out := make([]int, len(shape))
	for i := range shape {
		out[i] = int(math.Round(float64(shape[i]) * factors[i]))
	}
	return out
}

// Zoom resamples every axis of v by the matching factor in factors.
// The axis scaling maps the first and last samples of the input onto
// the first and last samples of the output.
func Zoom(v *volume.Volume, factors []float64, opts Options) (*volume.Volume, error) {
	if len(factors) != v.NDim() {
		return nil, fmt.Errorf("interp: %d zoom factors for %d axes", len(factors), v.NDim())
	}
	if err := opts.check(); err != nil {
		return nil, err
	}
	for i, f := range factors {
		if f <= 0 {
			return nil, fmt.Errorf("interp: zoom factor %g on axis %d not positive", f, i)
		}
	}
	outShape := ZoomShape(v.Shape(), factors)
	out := v
	var err error
	for axis := 0; axis < v.NDim(); axis++ {
		inLen := out.Shape()[axis]
		outLen := outShape[axis]
		if outLen == inLen && factors[axis] == 1 {
			continue
		}
		scale := 0.0
		if outLen > 1 {
			scale = float64(inLen-1) / float64(outLen-1)
		}
		out, err = resampleAxis(out, axis, outLen, func(i int) float64 {
			return float64(i) * scale
		}, opts)
		if err != nil {
			return nil, err
		}
	}
	if out == v {
		out = v.Clone()
	}
	return out, nil
}

// FastZoomSupported reports whether the parallel zoom path can serve
// the requested order and mode. The fast path handles orders 0 and 1
// and every fill mode except wrap and reflect; callers fall back to
// the sequential exact path otherwise.
func FastZoomSupported(order int, mode volume.PadMode) bool {
	if order > 1 {
		return false
	}
	return mode != volume.PadWrap && mode != volume.PadReflect
}
