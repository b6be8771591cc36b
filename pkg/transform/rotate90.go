package transform

import (
	"errors"
	"fmt"

	"voximg/pkg/random"
	"voximg/pkg/volume"
)

// Rotate90 rotates the image by 90 degrees k times in the plane given
// by two axes. The output is always a freshly laid out volume.
type Rotate90 struct {
	k   int
	ax0 int
	ax1 int
}

// NewRotate90 creates the transform.
func NewRotate90(k int, axes [2]int) *Rotate90 {
	return &Rotate90{k: k, ax0: axes[0], ax1: axes[1]}
}

func (t *Rotate90) Apply(img *volume.Volume) (*volume.Volume, error) {
	return img.Rot90(t.k, t.ax0, t.ax1)
}

// RandRotate90 rotates the image by 90 degrees a random number of
// times with probability prob per call. The rotation count is drawn
// first, uniform over 1..maxK, then the Bernoulli decision; both draws
// happen on every call regardless of outcome, so the random sequence
// consumed per call has a fixed length.
type RandRotate90 struct {
	prob float64
	maxK int
	ax0  int
	ax1  int
	src  *random.Source

	lastK   int
	applied bool
}

// NewRandRotate90 creates the transform. prob is clamped to [0, 1].
func NewRandRotate90(prob float64, maxK int, axes [2]int, src *random.Source) (*RandRotate90, error) {
	if maxK < 1 {
		return nil, fmt.Errorf("rand rotate max k %d must be at least 1", maxK)
	}
	if src == nil {
		return nil, errors.New("rand rotate needs a random source")
	}
	if prob < 0 {
		prob = 0
	} else if prob > 1 {
		prob = 1
	}
	return &RandRotate90{prob: prob, maxK: maxK, ax0: axes[0], ax1: axes[1], src: src}, nil
}

// LastK returns the rotation count drawn on the most recent call.
func (t *RandRotate90) LastK() int { return t.lastK }

// Applied reports whether the most recent call rotated the image.
func (t *RandRotate90) Applied() bool { return t.applied }

func (t *RandRotate90) Apply(img *volume.Volume) (*volume.Volume, error) {
	t.lastK = t.src.Intn(t.maxK) + 1
	t.applied = t.src.Float64() < t.prob
	if !t.applied {
		return img, nil
	}
	return img.Rot90(t.lastK, t.ax0, t.ax1)
}
