package ops

import (
	"math"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// SumOp represents the reduction of all elements to a scalar.
//
// Backward: every input element receives the scalar output gradient.
type SumOp struct{ unaryOp }

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{unaryOp{input, output}}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustRaw(op.input.Shape(), op.input.Device())
	grad.Fill(scalarOf(outputGrad))
	return []*tensor.RawTensor{grad}
}

// MeanOp represents the average of all elements.
//
// Backward: every input element receives outputGrad / N.
type MeanOp struct{ unaryOp }

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{unaryOp{input, output}}
}

// Backward broadcasts the scaled scalar gradient to the input shape.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustRaw(op.input.Shape(), op.input.Device())
	grad.Fill(scalarOf(outputGrad) / float32(op.input.NumElements()))
	return []*tensor.RawTensor{grad}
}

// BCEWithLogitsOp represents mean sigmoid cross-entropy against a constant label.
//
// Forward:
//
//	loss = mean(max(x,0) - x*t + log(1 + exp(-|x|)))
//
// Backward:
//
//	∂loss/∂x = (σ(x) - t) / N
type BCEWithLogitsOp struct {
	unaryOp
	target float32
}

// NewBCEWithLogitsOp creates a new BCEWithLogitsOp.
func NewBCEWithLogitsOp(logits, output *tensor.RawTensor, target float32) *BCEWithLogitsOp {
	return &BCEWithLogitsOp{unaryOp{logits, output}, target}
}

// Backward computes the logit gradients.
func (op *BCEWithLogitsOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	scale := scalarOf(outputGrad) / float32(op.input.NumElements())
	grad := tensor.MustRaw(op.input.Shape(), op.input.Device())
	out := grad.AsFloat32()
	for i, x := range op.input.AsFloat32() {
		s := float32(1 / (1 + math.Exp(-float64(x))))
		out[i] = scale * (s - op.target)
	}
	return []*tensor.RawTensor{grad}
}
