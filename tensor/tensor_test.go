// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/backend/cpu"
	"github.com/born-ml/cyclegan/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.CPU)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())

	data := raw.AsFloat32()
	data[0] = 42
	clone := raw.Clone()
	data[0] = 0
	assert.Equal(t, float32(42), clone.AsFloat32()[0], "clone is independent")

	back, err := tensor.RawFromBytes(clone.Bytes(), clone.Shape(), tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, clone.AsFloat32(), back.AsFloat32())

	_, err = tensor.RawFromSlice([]float32{1, 2}, tensor.Shape{3}, tensor.CPU)
	assert.Error(t, err)
}

// TestCreation verifies the creation functions.
func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0, 0}, tensor.Zeros(tensor.Shape{2, 2}, backend).Data())
	assert.Equal(t, []float32{1, 1}, tensor.Ones(tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float32{-1, -1}, tensor.Full(tensor.Shape{2}, -1, backend).Data())

	rng := rand.New(rand.NewSource(1))
	for _, v := range tensor.Uniform(tensor.Shape{100}, -1, 1, rng, backend).Data() {
		assert.True(t, v >= -1 && v < 1)
	}
	assert.Equal(t, tensor.Shape{4, 5}, tensor.Randn(tensor.Shape{4, 5}, 0.02, rng, backend).Shape())

	x, err := tensor.FromSlice([]float32{1, -2, 3, -4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	assert.Equal(t, float32(10), x.Abs().Sum().Item())
	assert.Equal(t, float32(-2), x.At(0, 1))
}

// TestBroadcastShapes verifies the broadcasting helper.
func TestBroadcastShapes(t *testing.T) {
	shape, needs, err := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{3, 4})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4}, shape)
	assert.True(t, needs)

	_, _, err = tensor.BroadcastShapes(tensor.Shape{3}, tensor.Shape{4})
	assert.Error(t, err)
}

func TestParseDevice(t *testing.T) {
	d, err := tensor.ParseDevice("webgpu")
	require.NoError(t, err)
	assert.Equal(t, tensor.WebGPU, d)
}
