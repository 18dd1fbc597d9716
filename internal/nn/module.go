// Package nn implements the neural network building blocks used by the
// CycleGAN generators and discriminators.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable tensors
//   - Conv2D: 2D convolution with optional bias
//   - Activations: LeakyReLU, Tanh, Sigmoid
//   - Dropout: training-only regularization
//   - Permute, Flatten: layout adapters between NHWC image batches and NCHW convolutions
//   - Sequential: Container for stacking layers
//   - Loss functions: MSE, L1, BCE with logits
//
// Design inspired by PyTorch's nn.Module.
package nn

import (
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewConv2D(1, 32, 3, 3, 1, 1, true, rng, backend),
//	    nn.NewLeakyReLU(0.2),
//	    nn.NewConv2D(32, 1, 3, 3, 1, 1, true, rng, backend),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter

	// StateDict returns the module's parameters keyed by name.
	// The returned tensors are the live parameter buffers, not copies.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies values from stateDict into the module's parameters.
	// Every parameter must be present with a matching shape.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// SetTraining switches between training and inference behaviour
	// (e.g. dropout is active only while training).
	SetTraining(training bool)
}

// stateless provides the Module methods shared by parameter-free modules.
type stateless struct{}

// Parameters returns nil.
func (stateless) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (stateless) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state.
func (stateless) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return unexpectedKeys(stateDict, nil)
}

// SetTraining is a no-op.
func (stateless) SetTraining(bool) {}
