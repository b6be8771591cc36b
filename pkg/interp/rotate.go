package interp

import (
	"fmt"
	"math"

	"voximg/pkg/volume"
)

// RotatePlane rotates v by angleDeg degrees in the plane spanned by
// axes ax0 and ax1, interpolating with the configured spline order.
// With reshape the output plane grows to the bounding box of the
// rotated content; otherwise the output keeps the input shape and
// content rotated outside the bounds is discarded.
func RotatePlane(v *volume.Volume, angleDeg float64, ax0, ax1 int, reshape bool, opts Options) (*volume.Volume, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	n := v.NDim()
	if ax0 < 0 {
		ax0 += n
	}
	if ax1 < 0 {
		ax1 += n
	}
	if ax0 < 0 || ax0 >= n || ax1 < 0 || ax1 >= n {
		return nil, fmt.Errorf("interp: rotation axes (%d, %d) out of range for %d axes", ax0, ax1, n)
	}
	if ax0 == ax1 {
		return nil, fmt.Errorf("interp: rotation axes must differ, got (%d, %d)", ax0, ax1)
	}

	shape := v.Shape()
	h, w := shape[ax0], shape[ax1]
	theta := angleDeg * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	outH, outW := h, w
	if reshape {
		outH = int(math.Round(float64(h)*math.Abs(cos) + float64(w)*math.Abs(sin)))
		outW = int(math.Round(float64(h)*math.Abs(sin) + float64(w)*math.Abs(cos)))
	}
	outShape := append([]int(nil), shape...)
	outShape[ax0] = outH
	outShape[ax1] = outW
	out, err := volume.New(outShape, v.DType())
	if err != nil {
		return nil, err
	}
	if out.Len() == 0 || v.Len() == 0 {
		return out, nil
	}

	poles, err := splinePoles(opts.Order)
	if err != nil {
		return nil, err
	}
	if !opts.Prefilter {
		poles = nil
	}

	inCH := float64(h-1) / 2
	inCW := float64(w-1) / 2
	outCH := float64(outH-1) / 2
	outCW := float64(outW-1) / 2

	inStrides := v.Strides()
	outStrides := out.Strides()
	// Offsets of every plane: the product of the remaining axes.
	planeOffsets := planeStarts(shape, inStrides, ax0, ax1)
	outOffsets := planeStarts(outShape, outStrides, ax0, ax1)

	plane := make([]float64, h*w)
	res := make([]float64, outH*outW)
	row := make([]float64, w)
	col := make([]float64, h)
	for p := range planeOffsets {
		readPlane(v.Data(), planeOffsets[p], inStrides[ax0], inStrides[ax1], h, w, plane)
		if len(poles) > 0 {
			for i := 0; i < h; i++ {
				copy(row, plane[i*w:(i+1)*w])
				filterLine(row, poles)
				copy(plane[i*w:(i+1)*w], row)
			}
			for j := 0; j < w; j++ {
				for i := 0; i < h; i++ {
					col[i] = plane[i*w+j]
				}
				filterLine(col, poles)
				for i := 0; i < h; i++ {
					plane[i*w+j] = col[i]
				}
			}
		}
		for i := 0; i < outH; i++ {
			di := float64(i) - outCH
			for j := 0; j < outW; j++ {
				dj := float64(j) - outCW
				ci := cos*di + sin*dj + inCH
				cj := -sin*di + cos*dj + inCW
				res[i*outW+j] = interpPlaneAt(plane, h, w, ci, cj, opts)
			}
		}
		writePlane(out.Data(), outOffsets[p], outStrides[ax0], outStrides[ax1], outH, outW, res)
	}
	return out, nil
}

// interpPlaneAt evaluates the tensor-product spline interpolant of a
// prefiltered plane at (ci, cj).
func interpPlaneAt(plane []float64, h, w int, ci, cj float64, opts Options) float64 {
	if opts.Mode == volume.PadConstant &&
		(ci < 0 || ci > float64(h-1) || cj < 0 || cj > float64(w-1)) {
		return opts.CVal
	}
	order := opts.Order
	if order == 0 {
		ii := foldIndex(int(math.Floor(ci+0.5)), h, opts.Mode)
		jj := foldIndex(int(math.Floor(cj+0.5)), w, opts.Mode)
		return plane[ii*w+jj]
	}
	si := tapStart(ci, order)
	sj := tapStart(cj, order)
	sum := 0.0
	for a := 0; a <= order; a++ {
		ii := si + a
		wi := bspline(ci-float64(ii), order)
		if wi == 0 {
			continue
		}
		ii = foldIndex(ii, h, opts.Mode)
		for b := 0; b <= order; b++ {
			jj := sj + b
			wj := bspline(cj-float64(jj), order)
			if wj == 0 {
				continue
			}
			jj = foldIndex(jj, w, opts.Mode)
			sum += wi * wj * plane[ii*w+jj]
		}
	}
	return sum
}

// foldIndex maps a tap index into range, treating constant mode like
// reflect for edge taps (outside coordinates are filled before taps
// are gathered).
func foldIndex(j, n int, mode volume.PadMode) int {
	if j >= 0 && j < n {
		return j
	}
	if mode == volume.PadConstant {
		mode = volume.PadReflect
	}
	return volume.MapIndex(j, n, mode)
}

// planeStarts enumerates the buffer offsets of every (ax0, ax1) plane.
func planeStarts(shape, strides []int, ax0, ax1 int) []int {
	count := 1
	var outerShape, outerStride []int
	for i := range shape {
		if i == ax0 || i == ax1 {
			continue
		}
		outerShape = append(outerShape, shape[i])
		outerStride = append(outerStride, strides[i])
		count *= shape[i]
	}
	starts := make([]int, count)
	for p := 0; p < count; p++ {
		off := 0
		rem := p
		for i := len(outerShape) - 1; i >= 0; i-- {
			if outerShape[i] == 0 {
				continue
			}
			off += (rem % outerShape[i]) * outerStride[i]
			rem /= outerShape[i]
		}
		starts[p] = off
	}
	return starts
}

func readPlane(data []float64, base, s0, s1, h, w int, dst []float64) {
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			dst[i*w+j] = data[base+i*s0+j*s1]
		}
	}
}

func writePlane(data []float64, base, s0, s1, h, w int, src []float64) {
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			data[base+i*s0+j*s1] = src[i*w+j]
		}
	}
}
