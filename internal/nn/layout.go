package nn

import (
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Permute reorders the input dimensions.
//
// Image batches are [N, H, W, C] at the API boundary while convolutions run on
// [N, C, H, W]:
//
//	nn.NewPermute(0, 3, 1, 2) // NHWC -> NCHW
//	nn.NewPermute(0, 2, 3, 1) // NCHW -> NHWC
type Permute struct {
	stateless
	axes []int
}

// NewPermute creates a Permute module.
func NewPermute(axes ...int) *Permute {
	return &Permute{axes: axes}
}

// Forward transposes the input.
func (p *Permute) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Transpose(p.axes...)
}

// Flatten reshapes [N, ...] to [N, prod(...)].
type Flatten struct{ stateless }

// NewFlatten creates a Flatten module.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward reshapes the input.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	return input.Reshape(shape[0], shape.NumElements()/shape[0])
}
