// Package interp implements the spline resampling engine behind the
// geometric transforms: zooming, resizing and in-plane rotation of
// volumes with B-spline interpolation of order 0 to 5.
//
// For orders 2 and up, interpolation through the sample values
// requires turning the samples into B-spline coefficients first. This
// is done with the classic recursive prefilter: a causal and an
// anticausal first-order pass per pole, with mirror boundary
// initialization. Orders 0 and 1 interpolate the samples directly.
package interp

import (
	"fmt"
	"math"
)

// bspline evaluates the centered B-spline basis of the given order at
// x using the Cox–de Boor recursion. The support of the basis is
// [-(order+1)/2, (order+1)/2].
func bspline(x float64, order int) float64 {
	if order == 0 {
		ax := math.Abs(x)
		switch {
		case ax < 0.5:
			return 1
		case ax == 0.5:
			return 0.5
		}
		return 0
	}
	half := float64(order+1) / 2
	if x <= -half || x >= half {
		return 0
	}
	n := float64(order)
	return ((x+half)*bspline(x+0.5, order-1) + (half-x)*bspline(x-0.5, order-1)) / n
}

// splinePoles returns the z-transform poles of the direct B-spline
// filter for the given order. Orders 0 and 1 need no prefilter and
// yield an empty set.
func splinePoles(order int) ([]float64, error) {
	switch order {
	case 0, 1:
		return nil, nil
	case 2:
		return []float64{math.Sqrt(8) - 3}, nil
	case 3:
		return []float64{math.Sqrt(3) - 2}, nil
	case 4:
		return []float64{
			math.Sqrt(664-math.Sqrt(438976)) + math.Sqrt(304) - 19,
			math.Sqrt(664+math.Sqrt(438976)) - math.Sqrt(304) - 19,
		}, nil
	case 5:
		return []float64{
			math.Sqrt(67.5-math.Sqrt(4436.25)) + math.Sqrt(26.25) - 6.5,
			math.Sqrt(67.5+math.Sqrt(4436.25)) - math.Sqrt(26.25) - 6.5,
		}, nil
	}
	return nil, fmt.Errorf("interp: spline order %d out of range 0..5", order)
}

// filterLine converts the samples in line (in place) into B-spline
// coefficients for the given poles, using mirror-symmetric boundary
// handling for the recursion start values.
func filterLine(line []float64, poles []float64) {
	n := len(line)
	if n < 2 || len(poles) == 0 {
		return
	}
	gain := 1.0
	for _, z := range poles {
		gain *= (1 - z) * (1 - 1/z)
	}
	for i := range line {
		line[i] *= gain
	}
	for _, z := range poles {
		line[0] = initialCausal(line, z)
		for i := 1; i < n; i++ {
			line[i] += z * line[i-1]
		}
		line[n-1] = initialAnticausal(line, z)
		for i := n - 2; i >= 0; i-- {
			line[i] = z * (line[i+1] - line[i])
		}
	}
}

// initialCausal computes the start value of the causal pass under a
// mirror boundary. The geometric series is truncated once additional
// terms fall below double precision.
func initialCausal(line []float64, z float64) float64 {
	n := len(line)
	horizon := int(math.Ceil(math.Log(1e-15) / math.Log(math.Abs(z))))
	if horizon < n {
		zk := z
		sum := line[0]
		for k := 1; k < horizon; k++ {
			sum += zk * line[k]
			zk *= z
		}
		return sum
	}
	// Short line: use the full mirror-periodic closed form.
	zk := z
	iz := 1 / z
	z2n := math.Pow(z, float64(n-1))
	sum := line[0] + z2n*line[n-1]
	z2n *= z2n * iz
	for k := 1; k <= n-2; k++ {
		sum += (zk + z2n) * line[k]
		zk *= z
		z2n *= iz
	}
	return sum / (1 - math.Pow(z, float64(2*n-2)))
}

// initialAnticausal computes the start value of the anticausal pass.
func initialAnticausal(line []float64, z float64) float64 {
	n := len(line)
	return (z / (z*z - 1)) * (z*line[n-2] + line[n-1])
}

// tapStart returns the first of the order+1 sample indices supporting
// interpolation at coordinate c.
func tapStart(c float64, order int) int {
	if order%2 == 1 {
		return int(math.Floor(c)) - (order-1)/2
	}
	return int(math.Floor(c+0.5)) - order/2
}
