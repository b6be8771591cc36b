package volume

import "fmt"

// PadMode selects how padded regions are filled. The vocabulary
// matches the general-purpose pad primitives of numeric array
// libraries: constant, edge, reflect (edge element not repeated),
// symmetric (edge element repeated) and wrap.
type PadMode int

const (
	PadConstant PadMode = iota
	PadEdge
	PadReflect
	PadSymmetric
	PadWrap
)

func (m PadMode) String() string {
	switch m {
	case PadConstant:
		return "constant"
	case PadEdge:
		return "edge"
	case PadReflect:
		return "reflect"
	case PadSymmetric:
		return "symmetric"
	case PadWrap:
		return "wrap"
	}
	return fmt.Sprintf("padmode(%d)", int(m))
}

// ParsePadMode resolves a named pad mode.
func ParsePadMode(name string) (PadMode, error) {
	switch name {
	case "constant", "":
		return PadConstant, nil
	case "edge", "nearest":
		return PadEdge, nil
	case "reflect":
		return PadReflect, nil
	case "symmetric":
		return PadSymmetric, nil
	case "wrap":
		return PadWrap, nil
	}
	return PadConstant, fmt.Errorf("unknown pad mode %q", name)
}

// Pad returns a copy of the volume grown by widths[i][0] elements
// before and widths[i][1] elements after axis i, filled per mode.
// cval is the fill value for PadConstant and ignored otherwise.
func (v *Volume) Pad(widths [][2]int, mode PadMode, cval float64) (*Volume, error) {
	n := len(v.shape)
	if len(widths) != n {
		return nil, fmt.Errorf("volume: pad needs %d width pairs, got %d", n, len(widths))
	}
	outShape := make([]int, n)
	for i, w := range widths {
		if w[0] < 0 || w[1] < 0 {
			return nil, fmt.Errorf("volume: negative pad width %v on axis %d", w, i)
		}
		outShape[i] = v.shape[i] + w[0] + w[1]
	}
	out, err := New(outShape, v.dtype)
	if err != nil {
		return nil, err
	}
	outIdx := make([]int, n)
	inIdx := make([]int, n)
	for lin := range out.data {
		unravel(lin, outShape, outIdx)
		outside := false
		for i := 0; i < n; i++ {
			j := outIdx[i] - widths[i][0]
			if j < 0 || j >= v.shape[i] {
				if mode == PadConstant {
					outside = true
					break
				}
				j = MapIndex(j, v.shape[i], mode)
			}
			inIdx[i] = j
		}
		if outside {
			out.data[lin] = cval
			continue
		}
		out.data[lin] = v.data[v.offset(inIdx)]
	}
	return out, nil
}

// MapIndex folds an out-of-range coordinate back into [0, n) for the
// non-constant fill modes. n must be positive. PadConstant has no
// index mapping and panics; callers handle constant fill themselves.
func MapIndex(j, n int, mode PadMode) int {
	switch mode {
	case PadEdge:
		if j < 0 {
			return 0
		}
		return n - 1
	case PadWrap:
		j %= n
		if j < 0 {
			j += n
		}
		return j
	case PadReflect:
		// abcd -> dcb|abcd|cba
		if n == 1 {
			return 0
		}
		period := 2 * (n - 1)
		j %= period
		if j < 0 {
			j += period
		}
		if j >= n {
			j = period - j
		}
		return j
	case PadSymmetric:
		// abcd -> dcba|abcd|dcba
		period := 2 * n
		j %= period
		if j < 0 {
			j += period
		}
		if j >= n {
			j = period - 1 - j
		}
		return j
	}
	panic(fmt.Sprintf("volume: unhandled pad mode %v", mode))
}
