// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/cyclegan/internal/nn"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//   - StateDict: Export parameters for serialization
//   - LoadStateDict: Import parameters from serialization
//   - SetTraining: Switch between training and inference behavior
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewPermute(0, 3, 1, 2),
//	    nn.NewConv2D(1, 32, 3, 3, 1, 1, true, rng, backend),
//	    nn.NewLeakyReLU(0.2),
//	    nn.NewConv2D(32, 1, 3, 3, 1, 1, true, rng, backend),
//	    nn.NewTanh(),
//	    nn.NewPermute(0, 2, 3, 1),
//	)
type Module = nn.Module

// Sequential chains modules, feeding each output to the next.
type Sequential = nn.Sequential

// NewSequential creates a container running modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// ErrStateDict is returned when a state dict does not match a module.
var ErrStateDict = nn.ErrStateDict
