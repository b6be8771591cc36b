package transform

import (
	"voximg/pkg/volume"
)

// AsChannelFirst moves the designated channel axis of the image to
// position 0, keeping the remaining axes in their original relative
// order.
type AsChannelFirst struct {
	channelDim int
}

// NewAsChannelFirst creates the transform. channelDim is the axis
// holding the channel; -1 selects the last axis.
func NewAsChannelFirst(channelDim int) *AsChannelFirst {
	return &AsChannelFirst{channelDim: channelDim}
}

func (t *AsChannelFirst) Apply(img *volume.Volume) (*volume.Volume, error) {
	dim := t.channelDim
	if dim == -1 {
		dim = img.NDim() - 1
	}
	return img.MoveAxis(dim, 0)
}

// AddChannel prepends a length-1 channel axis, turning a bare spatial
// array into a single-channel channel-first one.
type AddChannel struct{}

// NewAddChannel creates the transform. It has no configuration.
func NewAddChannel() *AddChannel { return &AddChannel{} }

func (t *AddChannel) Apply(img *volume.Volume) (*volume.Volume, error) {
	return img.ExpandDims(0)
}

// Transpose permutes the image axes per a fixed index sequence.
type Transpose struct {
	indices []int
}

// NewTranspose creates the transform. The indices must form a
// permutation of the image's axes; this is checked at call time since
// the dimensionality is only known then.
func NewTranspose(indices []int) *Transpose {
	return &Transpose{indices: append([]int(nil), indices...)}
}

func (t *Transpose) Apply(img *volume.Volume) (*volume.Volume, error) {
	return img.Transpose(t.indices)
}
