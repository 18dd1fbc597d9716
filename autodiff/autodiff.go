// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/born-ml/cyclegan/autodiff"
//	    "github.com/born-ml/cyclegan/backend/cpu"
//	    "github.com/born-ml/cyclegan/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    w := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    loss := w.Mul(w).Mean()  // Operations recorded on tape
//
//	    grads := autodiff.Gradients(loss, []*tensor.Tensor{w}, backend)
//	}
package autodiff

import (
	"github.com/born-ml/cyclegan/internal/autodiff"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend = autodiff.AutodiffBackend

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New(backend tensor.Backend) *Backend {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t with respect to every recorded tensor.
func Backward(t *tensor.Tensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}

// Gradients computes the gradient of loss with respect to each of params,
// leaving the tape intact so several losses can share one forward pass.
func Gradients(loss *tensor.Tensor, params []*tensor.Tensor, backend BackwardCapable) []*tensor.RawTensor {
	return autodiff.Gradients(loss, params, backend)
}
