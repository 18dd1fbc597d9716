package nn

import (
	"github.com/born-ml/cyclegan/internal/tensor"
)

// LeakyReLU applies f(x) = x for x > 0 and slope*x otherwise.
//
// Example:
//
//	act := nn.NewLeakyReLU(0.2)
//	output := act.Forward(input)
type LeakyReLU struct {
	stateless
	slope float32
}

// NewLeakyReLU creates a new LeakyReLU activation module.
func NewLeakyReLU(slope float32) *LeakyReLU {
	return &LeakyReLU{slope: slope}
}

// Forward applies the activation.
func (l *LeakyReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.LeakyReLU(l.slope)
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
type Sigmoid struct{ stateless }

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Sigmoid()
}

// Tanh is a hyperbolic tangent activation module.
//
// Tanh squashes values to the range (-1, 1), the pixel range of image batches.
type Tanh struct{ stateless }

// NewTanh creates a new Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies Tanh activation.
func (t *Tanh) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Tanh()
}
