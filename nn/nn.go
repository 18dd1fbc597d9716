// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/tensor"
)

// Layers

// Conv2D represents a 2D convolutional layer over NCHW inputs.
type Conv2D = nn.Conv2D

// NewConv2D creates a new 2D convolutional layer with Xavier-initialized
// kernels drawn from rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	conv := nn.NewConv2D(1, 32, 3, 3, 1, 1, true, rng, backend)  // in_channels=1, out_channels=32, kernel=3x3, stride=1, padding=1, useBias=true
func NewConv2D(
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	rng *rand.Rand,
	backend tensor.Backend,
) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, rng, backend)
}

// Dropout zeroes inputs with probability rate during training and scales
// the rest by 1/(1-rate). It is the identity in inference mode.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer drawing masks from rng.
func NewDropout(rate float32, rng *rand.Rand) *Dropout {
	return nn.NewDropout(rate, rng)
}

// Permute reorders tensor axes, e.g. NHWC to NCHW.
type Permute = nn.Permute

// NewPermute creates a layer that transposes its input by axes.
//
// Example:
//
//	toNCHW := nn.NewPermute(0, 3, 1, 2)
//	toNHWC := nn.NewPermute(0, 2, 3, 1)
func NewPermute(axes ...int) *Permute {
	return nn.NewPermute(axes...)
}

// Flatten reshapes [N, ...] to [N, rest].
type Flatten = nn.Flatten

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Activations

// LeakyReLU represents max(x, slope·x).
type LeakyReLU = nn.LeakyReLU

// NewLeakyReLU creates a LeakyReLU activation layer.
//
// Example:
//
//	act := nn.NewLeakyReLU(0.2)
func NewLeakyReLU(slope float32) *LeakyReLU {
	return nn.NewLeakyReLU(slope)
}

// Sigmoid represents the Sigmoid activation function.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return nn.NewSigmoid()
}

// Tanh represents the Tanh activation function.
type Tanh = nn.Tanh

// NewTanh creates a new Tanh activation layer.
func NewTanh() *Tanh {
	return nn.NewTanh()
}

// Initialization

// Xavier returns a tensor drawn from the Glorot uniform distribution.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	return nn.Xavier(fanIn, fanOut, shape, rng, backend)
}

// Loss functions

// MSELoss computes mean((predictions - targets)²).
func MSELoss(predictions, targets *tensor.Tensor) *tensor.Tensor {
	return nn.MSELoss(predictions, targets)
}

// MSEToLabel computes mean((predictions - label)²).
func MSEToLabel(predictions *tensor.Tensor, label float32) *tensor.Tensor {
	return nn.MSEToLabel(predictions, label)
}

// L1Loss computes mean(|predictions - targets|).
func L1Loss(predictions, targets *tensor.Tensor) *tensor.Tensor {
	return nn.L1Loss(predictions, targets)
}

// BCEWithLogitsLoss computes the mean sigmoid cross-entropy of logits
// against a constant label.
func BCEWithLogitsLoss(logits *tensor.Tensor, label float32) *tensor.Tensor {
	return nn.BCEWithLogitsLoss(logits, label)
}
