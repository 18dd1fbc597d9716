// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors updated in place by optimizers. They typically
// represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//
// Methods:
//
//	Name() string
//	    Returns the parameter name (e.g., "weight", "bias").
//
//	Tensor() *tensor.Tensor
//	    Returns the parameter tensor.
//
//	Load(src *tensor.RawTensor) error
//	    Copies values from src; shapes must match.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Tensors returns the tensors of params, in order.
func Tensors(params []*Parameter) []*tensor.Tensor {
	return nn.Tensors(params)
}
