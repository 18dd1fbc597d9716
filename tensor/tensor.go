// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// ParseDevice parses a device name such as "cpu" or "WebGPU".
func ParseDevice(name string) (Device, error) {
	return tensor.ParseDevice(name)
}

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a float32 tensor bound to a backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // Element-wise addition
type Tensor = tensor.Tensor

// Creation functions

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, b Backend) *Tensor {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
//
// Example:
//
//	x := tensor.Full(tensor.Shape{2, 3}, -1, backend)
func Full(shape Shape, value float32, b Backend) *Tensor {
	return tensor.Full(shape, value, b)
}

// Randn creates a tensor drawn from N(0, std²).
func Randn(shape Shape, std float32, rng *rand.Rand, b Backend) *Tensor {
	return tensor.Randn(shape, std, rng, b)
}

// Uniform creates a tensor drawn from U(low, high).
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	images := tensor.Uniform(tensor.Shape{8, 28, 28, 1}, -1, 1, rng, backend)
func Uniform(shape Shape, low, high float32, rng *rand.Rand, b Backend) *Tensor {
	return tensor.Uniform(shape, low, high, rng, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice(data []float32, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromSlice(data, shape, b)
}

// New wraps a raw tensor.
//
// This is a low-level function. Most users should use creation functions like
// Zeros, Ones, or FromSlice instead.
func New(raw *RawTensor, b Backend) *Tensor {
	return tensor.New(raw, b)
}

// Utility functions

// BroadcastShapes computes the broadcast shape for two shapes following NumPy broadcasting rules.
// Returns the resulting shape and whether either operand needs broadcasting.
//
// Example:
//
//	resultShape, needsBroadcast, err := tensor.BroadcastShapes(
//	    tensor.Shape{3, 1},
//	    tensor.Shape{3, 4},
//	)
//	// resultShape = [3, 4], needsBroadcast = true
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
