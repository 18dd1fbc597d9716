// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/cyclegan/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and device information via Shape() and Device()
//   - Direct data access via AsFloat32()
//   - Deep copies via Clone()
//   - Little-endian serialization via Bytes() and RawFromBytes
//
// Most users should use the high-level Tensor type instead.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.CPU)
//	data := raw.AsFloat32()  // Shares the buffer
//	clone := raw.Clone()     // Independent copy
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled raw tensor.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, device)
}

// RawFromSlice copies data into a new raw tensor of the given shape.
func RawFromSlice(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.RawFromSlice(data, shape, device)
}

// RawFromBytes decodes little-endian float32 data.
func RawFromBytes(b []byte, shape Shape, device Device) (*RawTensor, error) {
	return tensor.RawFromBytes(b, shape, device)
}
