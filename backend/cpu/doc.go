// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col convolutions on gonum BLAS (blas32.Gemm)
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/cyclegan/autodiff"
//	    "github.com/born-ml/cyclegan/backend/cpu"
//	    "github.com/born-ml/cyclegan/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Ones(tensor.Shape{2, 3}, backend)
//
//	    // Wrap with autodiff for training
//	    train := autodiff.New(backend)
//	    _ = train
//	}
//
// # Thread Safety
//
// The backend holds no mutable state and may be shared between goroutines.
// Tensors themselves are not synchronized.
package cpu
