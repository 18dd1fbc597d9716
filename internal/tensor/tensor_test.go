package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/backend/cpu"
	"github.com/born-ml/cyclegan/internal/tensor"
)

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{tensor.Shape{3, 1}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{tensor.Shape{3, 5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, false, false},
		{tensor.Shape{2, 1, 4}, tensor.Shape{3, 1}, tensor.Shape{2, 3, 4}, true, false},
		{tensor.Shape{}, tensor.Shape{2, 2}, tensor.Shape{2, 2}, true, false},
		{tensor.Shape{3, 4}, tensor.Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			assert.Error(t, err, "%v vs %v", tt.a, tt.b)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.broadcast, broadcast)
	}
}

func TestBroadcastOffsets(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, tensor.BroadcastOffsets(tensor.Shape{3}, tensor.Shape{2, 3}))
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, tensor.BroadcastOffsets(tensor.Shape{2, 1}, tensor.Shape{2, 3}))
	assert.Equal(t, []int{0, 0, 0, 0}, tensor.BroadcastOffsets(tensor.Shape{}, tensor.Shape{2, 2}))
}

func TestRawTensor(t *testing.T) {
	_, err := tensor.NewRaw(tensor.Shape{2, 0}, tensor.CPU)
	assert.Error(t, err)

	_, err = tensor.RawFromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, tensor.CPU)
	assert.Error(t, err)

	r, err := tensor.RawFromSlice([]float32{1, -2.5, 3e-8, 4}, tensor.Shape{2, 2}, tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, r.Strides())
	assert.Equal(t, 16, r.ByteSize())

	decoded, err := tensor.RawFromBytes(r.Bytes(), r.Shape(), tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, r.AsFloat32(), decoded.AsFloat32())

	clone := r.Clone()
	clone.AsFloat32()[0] = 99
	assert.Equal(t, float32(1), r.AsFloat32()[0])

	view, err := r.View(tensor.Shape{4})
	require.NoError(t, err)
	view.AsFloat32()[0] = 7
	assert.Equal(t, float32(7), r.AsFloat32()[0])

	_, err = r.View(tensor.Shape{3})
	assert.Error(t, err)
}

func TestParseDevice(t *testing.T) {
	d, err := tensor.ParseDevice("webgpu")
	require.NoError(t, err)
	assert.Equal(t, tensor.WebGPU, d)

	_, err = tensor.ParseDevice("tpu")
	assert.Error(t, err)
}

func TestTensorOps(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	assert.Equal(t, float32(4), a.At(1, 1))
	a.Set(5, 1, 1)
	assert.Equal(t, float32(5), a.At(1, 1))
	assert.Panics(t, func() { a.At(2, 0) })

	sum := a.Add(tensor.Ones(tensor.Shape{2}, backend)).Sum()
	assert.InDelta(t, 15.0, sum.Item(), 1e-6)
	assert.InDelta(t, 2.75, a.Mean().Item(), 1e-6)
	assert.Panics(t, func() { a.Item() })

	reshaped := a.Reshape(4)
	assert.Equal(t, tensor.Shape{4}, reshaped.Shape())

	detached := a.Detach()
	assert.NotSame(t, a.Raw(), detached.Raw())
	assert.Equal(t, a.Data(), detached.Data())
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0}, tensor.Zeros(tensor.Shape{3}, backend).Data())
	assert.Equal(t, []float32{1, 1}, tensor.Ones(tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float32{2.5, 2.5}, tensor.Full(tensor.Shape{2}, 2.5, backend).Data())

	u1 := tensor.Uniform(tensor.Shape{100}, -1, 1, rand.New(rand.NewSource(1)), backend)
	u2 := tensor.Uniform(tensor.Shape{100}, -1, 1, rand.New(rand.NewSource(1)), backend)
	assert.Equal(t, u1.Data(), u2.Data())
	for _, v := range u1.Data() {
		assert.True(t, v >= -1 && v < 1)
	}
}
