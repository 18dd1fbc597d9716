package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/tensor"
)

func raw(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.RawFromSlice(data, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return r
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := New()

	t.Run("SameShape", func(t *testing.T) {
		a := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
		b := raw(t, []float32{10, 11, 12, 13, 14, 15}, 2, 3)

		assert.Equal(t, []float32{11, 13, 15, 17, 19, 21}, backend.Add(a, b).AsFloat32())
		assert.Equal(t, []float32{-9, -9, -9, -9, -9, -9}, backend.Sub(a, b).AsFloat32())
		assert.Equal(t, []float32{10, 22, 36, 52, 70, 90}, backend.Mul(a, b).AsFloat32())
	})

	t.Run("Broadcast", func(t *testing.T) {
		a := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
		row := raw(t, []float32{10, 20, 30}, 3)
		col := raw(t, []float32{100, 200}, 2, 1)

		out := backend.Add(a, row)
		assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())

		out = backend.Mul(col, a)
		assert.Equal(t, []float32{100, 200, 300, 800, 1000, 1200}, out.AsFloat32())
	})

	t.Run("Scalar0D", func(t *testing.T) {
		a := raw(t, []float32{1, 2}, 2)
		s := raw(t, []float32{3}) // 0-D
		assert.Equal(t, []float32{-2, -1}, backend.Sub(a, s).AsFloat32())
	})

	t.Run("Incompatible", func(t *testing.T) {
		a := raw(t, make([]float32, 6), 2, 3)
		b := raw(t, make([]float32, 4), 2, 2)
		assert.Panics(t, func() { backend.Add(a, b) })
	})
}

func TestCPUBackend_Unary(t *testing.T) {
	backend := New()
	x := raw(t, []float32{-2, -0.5, 0, 1.5}, 4)

	assert.Equal(t, []float32{2, 0.5, 0, 1.5}, backend.Abs(x).AsFloat32())
	assert.Equal(t, []float32{-0.4, -0.1, 0, 1.5}, backend.LeakyReLU(x, 0.2).AsFloat32())
	assert.Equal(t, []float32{0, 1.5, 2, 3.5}, backend.AddScalar(x, 2).AsFloat32())
	assert.Equal(t, []float32{4, 1, 0, -3}, backend.MulScalar(x, -2).AsFloat32())

	tanh := backend.Tanh(x).AsFloat32()
	sig := backend.Sigmoid(x).AsFloat32()
	for i, v := range x.AsFloat32() {
		assert.InDelta(t, math.Tanh(float64(v)), tanh[i], 1e-6)
		assert.InDelta(t, 1/(1+math.Exp(-float64(v))), sig[i], 1e-6)
	}
}

func TestCPUBackend_Reductions(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	sum := backend.Sum(x)
	assert.Len(t, sum.Shape(), 0)
	assert.InDelta(t, 21.0, sum.AsFloat32()[0], 1e-6)

	mean := backend.Mean(x)
	assert.InDelta(t, 3.5, mean.AsFloat32()[0], 1e-6)
}

func TestCPUBackend_BCEWithLogits(t *testing.T) {
	backend := New()

	x := raw(t, []float32{-3, 0, 2}, 3)
	var want float64
	for _, v := range x.AsFloat32() {
		p := 1 / (1 + math.Exp(-float64(v)))
		want += -math.Log(p)
	}
	want /= 3
	assert.InDelta(t, want, backend.BCEWithLogits(x, 1).AsFloat32()[0], 1e-5)

	// Large logits must not overflow.
	big := raw(t, []float32{1000, -1000}, 2)
	v := backend.BCEWithLogits(big, 0).AsFloat32()[0]
	assert.False(t, math.IsInf(float64(v), 0) || math.IsNaN(float64(v)))
	assert.InDelta(t, 500.0, v, 1e-3)
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	y := backend.Reshape(x, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	assert.Equal(t, x.AsFloat32(), y.AsFloat32())
	assert.NotSame(t, x, y)

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4, 2}) })
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()

	t.Run("2D", func(t *testing.T) {
		x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
		y := backend.Transpose(x)
		assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
		assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, y.AsFloat32())
	})

	t.Run("NHWCToNCHW", func(t *testing.T) {
		// [1, 2, 2, 2] with channel as the fastest axis.
		x := raw(t, []float32{1, 10, 2, 20, 3, 30, 4, 40}, 1, 2, 2, 2)
		y := backend.Transpose(x, 0, 3, 1, 2)
		assert.Equal(t, tensor.Shape{1, 2, 2, 2}, y.Shape())
		assert.Equal(t, []float32{1, 2, 3, 4, 10, 20, 30, 40}, y.AsFloat32())

		back := backend.Transpose(y, 0, 2, 3, 1)
		assert.Equal(t, x.AsFloat32(), back.AsFloat32())
	})

	t.Run("InvalidAxes", func(t *testing.T) {
		x := raw(t, make([]float32, 6), 2, 3)
		assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
		assert.Panics(t, func() { backend.Transpose(x, 0) })
	})
}
