// Package optim implements optimization algorithms for training neural networks.
//
// Example usage:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{LR: 2e-4, Betas: [2]float32{0.5, 0.999}})
//
//	backend.Tape().StartRecording()
//	loss := lossFn(model.Forward(input))
//	grads := autodiff.Gradients(loss, nn.Tensors(model.Parameters()), backend)
//	if err := optimizer.ApplyGradients(model.Parameters(), grads); err != nil {
//	    return err
//	}
//
// One optimizer may be shared by several networks: each ApplyGradients call
// is one optimizer step over the parameters passed to it.
package optim

import (
	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// ApplyGradients updates params in place. grads[i] is the gradient of
	// params[i] and must have the same shape.
	ApplyGradients(params []*nn.Parameter, grads []*tensor.RawTensor) error

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float32
}

// ErrGradientMismatch is returned when gradients do not line up with parameters.
var ErrGradientMismatch = errors.New("gradients do not match parameters")

func checkGradients(params []*nn.Parameter, grads []*tensor.RawTensor) error {
	if len(params) != len(grads) {
		return errors.Wrapf(ErrGradientMismatch, "%d parameters, %d gradients", len(params), len(grads))
	}
	for i, p := range params {
		if grads[i] == nil {
			return errors.Wrapf(ErrGradientMismatch, "missing gradient for %q", p.Name())
		}
		if !p.Tensor().Shape().Equal(grads[i].Shape()) {
			return errors.Wrapf(ErrGradientMismatch, "%q: gradient shape %v, parameter shape %v",
				p.Name(), grads[i].Shape(), p.Tensor().Shape())
		}
	}
	return nil
}
