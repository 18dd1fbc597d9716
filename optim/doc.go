// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/cyclegan/autodiff"
//	    "github.com/born-ml/cyclegan/backend/cpu"
//	    "github.com/born-ml/cyclegan/nn"
//	    "github.com/born-ml/cyclegan/optim"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    model := buildModel(backend)
//	    optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//
//	    backend.Tape().StartRecording()
//	    loss := nn.MSELoss(model.Forward(input), target)
//	    backend.Tape().StopRecording()
//
//	    params := model.Parameters()
//	    grads := autodiff.Gradients(loss, nn.Tensors(params), backend)
//	    _ = optimizer.ApplyGradients(params, grads)
//	    backend.Tape().Clear()
//	}
//
// # Gradients
//
// Optimizers take gradients explicitly rather than reading them from
// parameters, so several losses computed from one forward pass can each
// update their own parameter set.
package optim
