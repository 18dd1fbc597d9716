// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/backend/cpu"
	"github.com/born-ml/cyclegan/nn"
	"github.com/born-ml/cyclegan/tensor"
)

func model(seed int64) *nn.Sequential {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(seed))
	return nn.NewSequential(
		nn.NewPermute(0, 3, 1, 2),
		nn.NewConv2D(1, 2, 3, 3, 1, 1, true, rng, backend),
		nn.NewLeakyReLU(0.2),
		nn.NewDropout(0.5, rng),
		nn.NewConv2D(2, 1, 3, 3, 1, 1, true, rng, backend),
		nn.NewTanh(),
		nn.NewPermute(0, 2, 3, 1),
	)
}

// TestModuleInterface verifies that concrete types implement Module.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name   string
		module nn.Module
		params int
	}{
		{"Conv2D", nn.NewConv2D(1, 2, 3, 3, 1, 1, true, rng, backend), 2},
		{"Sequential", model(1), 4},
		{"Flatten", nn.NewFlatten(), 0},
		{"Sigmoid", nn.NewSigmoid(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.module.Parameters(), tt.params)
			assert.Len(t, tt.module.StateDict(), tt.params)
		})
	}
}

// TestSequential verifies shape preservation and state dict round trips.
func TestSequential(t *testing.T) {
	backend := cpu.New()
	input := tensor.Uniform(tensor.Shape{2, 5, 5, 1}, -1, 1, rand.New(rand.NewSource(3)), backend)

	a, b := model(1), model(2)
	a.SetTraining(false)
	b.SetTraining(false)
	out := a.Forward(input)
	assert.Equal(t, tensor.Shape{2, 5, 5, 1}, out.Shape())
	assert.NotEqual(t, out.Data(), b.Forward(input).Data())

	require.NoError(t, b.LoadStateDict(a.StateDict()))
	assert.Equal(t, out.Data(), b.Forward(input).Data())

	err := b.LoadStateDict(map[string]*tensor.RawTensor{})
	assert.True(t, errors.Is(err, nn.ErrStateDict))
}

// TestParameter verifies the Parameter helpers.
func TestParameter(t *testing.T) {
	backend := cpu.New()
	w := tensor.Ones(tensor.Shape{2, 2}, backend)
	p := nn.NewParameter("weight", w)
	assert.Equal(t, "weight", p.Name())
	assert.Same(t, w, p.Tensor())
	assert.Equal(t, []*tensor.Tensor{w}, nn.Tensors([]*nn.Parameter{p}))

	assert.Error(t, p.Load(tensor.Ones(tensor.Shape{3}, backend).Raw()))
}

func TestLosses(t *testing.T) {
	backend := cpu.New()
	pred, err := tensor.FromSlice([]float32{1, -1}, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)
	zeros := tensor.Zeros(tensor.Shape{2, 1}, backend)

	assert.InDelta(t, 1, nn.MSELoss(pred, zeros).Item(), 1e-6)
	assert.InDelta(t, 2, nn.MSEToLabel(pred, 1).Item(), 1e-6)
	assert.InDelta(t, 1, nn.L1Loss(pred, zeros).Item(), 1e-6)
	assert.Greater(t, nn.BCEWithLogitsLoss(pred, 1).Item(), float32(0))
}
