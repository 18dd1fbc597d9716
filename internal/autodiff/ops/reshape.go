package ops

import (
	"github.com/born-ml/cyclegan/internal/tensor"
)

// ReshapeOp records a reshape operation for autodiff.
//
// Forward: output = Reshape(input, newShape)
//
// Backward:
//   - d_input: Reshape(d_output, input.shape())
type ReshapeOp struct {
	input     *tensor.RawTensor
	output    *tensor.RawTensor
	origShape tensor.Shape
}

// NewReshapeOp creates a new Reshape operation.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{
		input:     input,
		output:    output,
		origShape: input.Shape(),
	}
}

// Inputs returns the input tensors.
func (op *ReshapeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *ReshapeOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward reshapes the output gradient back to the input shape.
// The result is a copy so that accumulation never writes through a view.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad.Clone(), op.origShape)}
}

// TransposeOp represents a transpose operation.
//
// Forward:
//
//	output = transpose(input, axes)
//
// Backward:
//
//	∂L/∂input = transpose(∂L/∂output, inverse_axes)
type TransposeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	axes   []int // Axes used for forward transpose
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{
		input:  input,
		output: output,
		axes:   axes,
	}
}

// Backward transposes the output gradient with the inverse permutation.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverseAxes := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverseAxes[ax] = i
	}

	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverseAxes...)}
}

// Inputs returns the input tensors.
func (op *TransposeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *TransposeOp) Output() *tensor.RawTensor {
	return op.output
}
