// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/cyclegan/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// ErrGradientMismatch is returned when gradients do not line up with parameters.
var ErrGradientMismatch = optim.ErrGradientMismatch

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer. Moments are kept per parameter, so
// one Adam can update several models; its timestep advances once per
// ApplyGradients call.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    2e-4,
//	    Betas: [2]float32{0.5, 0.999},
//	})
//	grads := autodiff.Gradients(loss, nn.Tensors(model.Parameters()), backend)
//	err := optimizer.ApplyGradients(model.Parameters(), grads)
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
