// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API used by the CycleGAN
// trainer.
//
// # Overview
//
// Tensors are float32, row-major and bound to a Backend that performs the
// arithmetic. This package provides:
//   - Tensor: the high-level wrapper with element-wise math, reductions,
//     reshapes and convolution
//   - RawTensor: the underlying buffer plus shape
//   - NumPy-style broadcasting for binary operations
//   - Device identifiers for backend selection
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/cyclegan/backend/cpu"
//	    "github.com/born-ml/cyclegan/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    z := x.Add(y).Mean()
//	}
//
// # Images
//
// Image batches are 4-D tensors in NHWC layout ([batch, height, width,
// channels]) with pixel values in [-1, 1]. Convolution works on NCHW and
// models transpose at their boundaries.
//
// # Broadcasting
//
// Binary operations broadcast trailing dimensions:
//
//	a := tensor.Ones(tensor.Shape{3, 1}, backend)
//	b := tensor.Ones(tensor.Shape{1, 4}, backend)
//	c := a.Add(b) // Shape: [3, 4]
//
// Incompatible shapes panic; validate user input with BroadcastShapes.
package tensor
