package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/parallel"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// TestConv2D_BasicForward tests basic Conv2D forward pass.
func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := raw(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, 1, 3, 3)
	// 1 0
	// 0 1
	kernel := raw(t, []float32{1, 0, 0, 1}, 1, 1, 2, 2)

	output := backend.Conv2D(input, kernel, 1, 0)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	// Diagonal sums: 1+5, 2+6, 4+8, 5+9
	assert.Equal(t, []float32{6, 8, 12, 14}, output.AsFloat32())
}

func TestConv2D_PaddingAndStride(t *testing.T) {
	backend := New()

	input := raw(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, 1, 3, 3)
	ones := raw(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, 1, 1, 3, 3)

	same := backend.Conv2D(input, ones, 1, 1)
	require.Equal(t, tensor.Shape{1, 1, 3, 3}, same.Shape())
	// Corner sees 1+2+4+5, center sees everything.
	assert.Equal(t, float32(12), same.AsFloat32()[0])
	assert.Equal(t, float32(45), same.AsFloat32()[4])

	strided := backend.Conv2D(input, ones, 2, 1)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, strided.Shape())
	assert.Equal(t, []float32{12, 16, 24, 28}, strided.AsFloat32())
}

func TestConv2D_MultiChannelBatch(t *testing.T) {
	backend := New()

	// N=2, C_in=2, 2x2 images; kernel picks channel 0 for output 0 and
	// channel 1 doubled for output 1.
	input := raw(t, []float32{
		1, 2, 3, 4, 10, 20, 30, 40,
		5, 6, 7, 8, 50, 60, 70, 80,
	}, 2, 2, 2, 2)
	kernel := raw(t, []float32{1, 0, 0, 2}, 2, 2, 1, 1)

	out := backend.Conv2D(input, kernel, 1, 0)
	require.Equal(t, tensor.Shape{2, 2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{
		1, 2, 3, 4, 20, 40, 60, 80,
		5, 6, 7, 8, 100, 120, 140, 160,
	}, out.AsFloat32())
}

func TestConv2D_InvalidShapes(t *testing.T) {
	backend := New()
	input := raw(t, make([]float32, 9), 1, 1, 3, 3)

	assert.Panics(t, func() { backend.Conv2D(input, raw(t, make([]float32, 8), 1, 2, 2, 2), 1, 0) })
	assert.Panics(t, func() { backend.Conv2D(input, raw(t, make([]float32, 16), 1, 1, 4, 4), 1, 0) })
	assert.Panics(t, func() { backend.Conv2D(raw(t, make([]float32, 9), 3, 3), input, 1, 0) })
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func randRaw(t *testing.T, rng *rand.Rand, shape ...int) *tensor.RawTensor {
	r := tensor.MustRaw(tensor.Shape(shape), tensor.CPU)
	for i := range r.AsFloat32() {
		r.AsFloat32()[i] = float32(rng.NormFloat64())
	}
	return r
}

// The backward passes are the adjoints of the forward pass:
// <conv(x, k), g> == <x, dX(g)> == <k, dK(g)>.
func TestConv2D_BackwardIsAdjoint(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(7))

	cases := []struct {
		name            string
		stride, padding int
		k               int
	}{
		{"3x3_same", 1, 1, 3},
		{"4x4_down", 2, 1, 4},
		{"1x1", 1, 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := randRaw(t, rng, 2, 3, 6, 6)
			k := randRaw(t, rng, 4, 3, tc.k, tc.k)
			y := backend.Conv2D(x, k, tc.stride, tc.padding)
			g := randRaw(t, rng, y.Shape()...)

			dX := backend.Conv2DInputBackward(x, k, g, tc.stride, tc.padding)
			dK := backend.Conv2DKernelBackward(x, k, g, tc.stride, tc.padding)
			require.Equal(t, x.Shape(), dX.Shape())
			require.Equal(t, k.Shape(), dK.Shape())

			lhs := dot(y.AsFloat32(), g.AsFloat32())
			assert.InDelta(t, lhs, dot(x.AsFloat32(), dX.AsFloat32()), 1e-3)
			assert.InDelta(t, lhs, dot(k.AsFloat32(), dK.AsFloat32()), 1e-3)
		})
	}
}

// Splitting im2col and col2im across goroutines produces the same column
// matrix; outputs then agree within GEMM rounding.
func TestConv2D_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := randRaw(t, rng, 8, 16, 7, 7)
	k := randRaw(t, rng, 4, 16, 4, 4)

	par := New()
	par.parallel = parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	seq := New()
	seq.parallel = parallel.Config{Enabled: false}

	g := newConvGeometry("test", x.Shape(), k.Shape(), 2, 1)
	colPar := make([]float32, g.colLen*g.colWidth)
	colSeq := make([]float32, g.colLen*g.colWidth)
	im2col(colPar, x.AsFloat32(), g, par.parallel)
	im2col(colSeq, x.AsFloat32(), g, seq.parallel)
	assert.Equal(t, colSeq, colPar)

	dstPar := make([]float32, x.NumElements())
	dstSeq := make([]float32, x.NumElements())
	col2im(dstPar, colSeq, g, par.parallel)
	col2im(dstSeq, colSeq, g, seq.parallel)
	assert.Equal(t, dstSeq, dstPar)

	y := par.Conv2D(x, k, 2, 1)
	assert.InDeltaSlice(t, seq.Conv2D(x, k, 2, 1).AsFloat32(), y.AsFloat32(), 1e-4)

	grad := randRaw(t, rng, y.Shape()...)
	assert.InDeltaSlice(t,
		seq.Conv2DInputBackward(x, k, grad, 2, 1).AsFloat32(),
		par.Conv2DInputBackward(x, k, grad, 2, 1).AsFloat32(), 1e-4)
	assert.InDeltaSlice(t,
		seq.Conv2DKernelBackward(x, k, grad, 2, 1).AsFloat32(),
		par.Conv2DKernelBackward(x, k, grad, 2, 1).AsFloat32(), 1e-3)
}
