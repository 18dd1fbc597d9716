// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp: element-wise arithmetic with broadcasting
//   - AddScalarOp, MulScalarOp: arithmetic with a constant
//   - AbsOp, TanhOp, SigmoidOp, LeakyReLUOp: element-wise functions
//   - SumOp, MeanOp, BCEWithLogitsOp: reductions to a scalar
//   - ReshapeOp, TransposeOp: shape manipulation
//   - Conv2DOp: 2D convolution
package ops

import "github.com/born-ml/cyclegan/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// SelectiveOperation is implemented by operations whose per-input gradients
// are expensive enough that the tape should only compute the ones it needs.
//
// needed[i] reports whether a gradient for Inputs()[i] is wanted; entries
// for unwanted inputs may be nil in the result.
type SelectiveOperation interface {
	Operation
	BackwardSelected(outputGrad *tensor.RawTensor, backend tensor.Backend, needed []bool) []*tensor.RawTensor
}
