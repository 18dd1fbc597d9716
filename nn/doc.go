// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D, Dropout, Permute, Flatten
//   - Activations: LeakyReLU, Sigmoid, Tanh
//   - Loss functions: MSELoss, MSEToLabel, L1Loss, BCEWithLogitsLoss
//   - Utilities: Sequential, Module interface, Parameter
//   - Initialization: Xavier
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/cyclegan/backend/cpu"
//	    "github.com/born-ml/cyclegan/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(1))
//
//	    // Image-to-image network over NHWC batches
//	    model := nn.NewSequential(
//	        nn.NewPermute(0, 3, 1, 2),
//	        nn.NewConv2D(1, 32, 3, 3, 1, 1, true, rng, backend),
//	        nn.NewLeakyReLU(0.2),
//	        nn.NewConv2D(32, 1, 3, 3, 1, 1, true, rng, backend),
//	        nn.NewTanh(),
//	        nn.NewPermute(0, 2, 3, 1),
//	    )
//
//	    output := model.Forward(input)
//	}
//
// # Training Mode
//
// Dropout is active only in training mode. Switch a whole model with
// SetTraining:
//
//	model.SetTraining(false) // inference
//
// # Parameter Management
//
// Access model parameters for optimization:
//
//	params := model.Parameters()
//	for _, param := range params {
//	    fmt.Println(param.Name(), param.Tensor().Shape())
//	}
//
// StateDict and LoadStateDict move weights in and out of a model by name.
package nn
