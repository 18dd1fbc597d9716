package ops

import "github.com/born-ml/cyclegan/internal/tensor"

// unaryOp holds the input and output of a single-input operation.
type unaryOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors.
func (op *unaryOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *unaryOp) Output() *tensor.RawTensor {
	return op.output
}

// AbsOp represents |x|. The subgradient at 0 is taken as 0.
type AbsOp struct{ unaryOp }

// NewAbsOp creates a new AbsOp.
func NewAbsOp(input, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{unaryOp{input, output}}
}

// Backward computes grad_x = outputGrad * sign(x).
func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := mapGrad(outputGrad, op.input, op.output, func(g, x, _ float32) float32 {
		switch {
		case x > 0:
			return g
		case x < 0:
			return -g
		default:
			return 0
		}
	})
	return []*tensor.RawTensor{grad}
}

// TanhOp represents the hyperbolic tangent activation.
type TanhOp struct{ unaryOp }

// NewTanhOp creates a new tanh operation.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input, output}}
}

// Backward computes the gradient for tanh.
//
// d(tanh(x))/dx = 1 - tanh²(x), and tanh(x) is the recorded output:
// grad_input = grad_output * (1 - output²).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := mapGrad(outputGrad, op.input, op.output, func(g, _, y float32) float32 {
		return g * (1 - y*y)
	})
	return []*tensor.RawTensor{grad}
}

// SigmoidOp represents σ(x) = 1 / (1 + exp(-x)).
type SigmoidOp struct{ unaryOp }

// NewSigmoidOp creates a new sigmoid operation.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unaryOp{input, output}}
}

// Backward computes grad_input = grad_output * σ(x) * (1 - σ(x)).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := mapGrad(outputGrad, op.input, op.output, func(g, _, y float32) float32 {
		return g * y * (1 - y)
	})
	return []*tensor.RawTensor{grad}
}

// LeakyReLUOp represents x for x > 0 and slope*x otherwise.
type LeakyReLUOp struct {
	unaryOp
	slope float32
}

// NewLeakyReLUOp creates a new LeakyReLU operation.
func NewLeakyReLUOp(input, output *tensor.RawTensor, slope float32) *LeakyReLUOp {
	return &LeakyReLUOp{unaryOp{input, output}, slope}
}

// Backward computes grad_input = grad_output where x > 0, slope*grad_output elsewhere.
func (op *LeakyReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := mapGrad(outputGrad, op.input, op.output, func(g, x, _ float32) float32 {
		if x > 0 {
			return g
		}
		return op.slope * g
	})
	return []*tensor.RawTensor{grad}
}
