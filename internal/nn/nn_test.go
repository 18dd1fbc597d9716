package nn_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/autodiff"
	"github.com/born-ml/cyclegan/internal/backend/cpu"
	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/tensor"
)

func newRNG() *rand.Rand { return rand.New(rand.NewSource(1)) }

// TestParameter tests Parameter creation and loading.
func TestParameter(t *testing.T) {
	backend := cpu.New()

	data, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())

	src, _ := tensor.RawFromSlice([]float32{4, 5, 6}, tensor.Shape{3}, tensor.CPU)
	require.NoError(t, param.Load(src))
	assert.Equal(t, []float32{4, 5, 6}, data.Data())

	bad, _ := tensor.RawFromSlice([]float32{4, 5}, tensor.Shape{2}, tensor.CPU)
	err = param.Load(bad)
	assert.True(t, errors.Is(err, nn.ErrStateDict))
	assert.True(t, errors.Is(param.Load(nil), nn.ErrStateDict))
}

func TestConv2D_Forward(t *testing.T) {
	backend := cpu.New()
	conv := nn.NewConv2D(2, 4, 3, 3, 1, 1, true, newRNG(), backend)

	input := tensor.Ones(tensor.Shape{3, 2, 5, 5}, backend)
	output := conv.Forward(input)
	assert.Equal(t, tensor.Shape{3, 4, 5, 5}, output.Shape())

	h, w := conv.OutputSize(5, 5)
	assert.Equal(t, 5, h)
	assert.Equal(t, 5, w)

	params := conv.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, tensor.Shape{4, 2, 3, 3}, params[0].Tensor().Shape())
	assert.Equal(t, []float32{0, 0, 0, 0}, params[1].Tensor().Data(), "bias starts at zero")

	assert.Panics(t, func() { conv.Forward(tensor.Ones(tensor.Shape{1, 3, 5, 5}, backend)) })
}

func TestConv2D_Deterministic(t *testing.T) {
	backend := cpu.New()
	a := nn.NewConv2D(1, 2, 3, 3, 1, 1, false, newRNG(), backend)
	b := nn.NewConv2D(1, 2, 3, 3, 1, 1, false, newRNG(), backend)
	assert.Equal(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data())
	assert.Len(t, a.Parameters(), 1)
}

func TestConv2D_BiasGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	conv := nn.NewConv2D(1, 2, 1, 1, 1, 0, true, newRNG(), backend)
	input := tensor.Ones(tensor.Shape{2, 1, 3, 3}, backend)
	loss := conv.Forward(input).Sum()

	grads := autodiff.Gradients(loss, nn.Tensors(conv.Parameters()), backend)
	// Every bias element is added to N*H*W = 18 outputs.
	assert.Equal(t, []float32{18, 18}, grads[1].AsFloat32())
}

func TestDropout(t *testing.T) {
	backend := cpu.New()
	d := nn.NewDropout(0.5, newRNG())
	input := tensor.Ones(tensor.Shape{1000}, backend)

	assert.True(t, d.Training())
	out := d.Forward(input).Data()
	zeros := 0
	for _, v := range out {
		if v == 0 {
			zeros++
		} else {
			assert.Equal(t, float32(2), v)
		}
	}
	assert.InDelta(t, 500, zeros, 100)

	d.SetTraining(false)
	assert.Same(t, input, d.Forward(input))

	assert.Panics(t, func() { nn.NewDropout(1, newRNG()) })
}

func TestLayout(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{1, 10, 2, 20, 3, 30, 4, 40}, tensor.Shape{1, 2, 2, 2}, backend)

	nchw := nn.NewPermute(0, 3, 1, 2).Forward(x)
	assert.Equal(t, []float32{1, 2, 3, 4, 10, 20, 30, 40}, nchw.Data())

	flat := nn.NewFlatten().Forward(nchw)
	assert.Equal(t, tensor.Shape{1, 8}, flat.Shape())
}

func TestSequential_StateDict(t *testing.T) {
	backend := cpu.New()
	build := func(seed int64) *nn.Sequential {
		rng := rand.New(rand.NewSource(seed))
		return nn.NewSequential(
			nn.NewConv2D(1, 2, 3, 3, 1, 1, true, rng, backend),
			nn.NewLeakyReLU(0.2),
			nn.NewDropout(0.1, rng),
			nn.NewConv2D(2, 1, 3, 3, 1, 1, true, rng, backend),
			nn.NewTanh(),
		)
	}

	src := build(1)
	dst := build(2)
	assert.Equal(t, 5, src.Len())
	assert.Len(t, src.Parameters(), 4)

	state := src.StateDict()
	assert.Len(t, state, 4)
	assert.Contains(t, state, "0.weight")
	assert.Contains(t, state, "3.bias")

	require.NoError(t, dst.LoadStateDict(state))
	assert.Equal(t, src.StateDict()["3.weight"].AsFloat32(), dst.StateDict()["3.weight"].AsFloat32())

	src.SetTraining(false)
	dst.SetTraining(false)
	probe := tensor.Full(tensor.Shape{1, 1, 4, 4}, 0.3, backend)
	assert.InDeltaSlice(t, src.Forward(probe).Data(), dst.Forward(probe).Data(), 1e-6)

	t.Run("MissingKey", func(t *testing.T) {
		partial := src.StateDict()
		delete(partial, "0.bias")
		assert.True(t, errors.Is(dst.LoadStateDict(partial), nn.ErrStateDict))
	})

	t.Run("UnexpectedKey", func(t *testing.T) {
		extra := src.StateDict()
		extra["9.weight"] = extra["0.weight"]
		assert.True(t, errors.Is(dst.LoadStateDict(extra), nn.ErrStateDict))
	})
}

func TestLosses(t *testing.T) {
	backend := cpu.New()
	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b, _ := tensor.FromSlice([]float32{1, 0, 3, 8}, tensor.Shape{2, 2}, backend)

	assert.InDelta(t, 5.0, nn.MSELoss(a, b).Item(), 1e-6)
	assert.InDelta(t, 1.5, nn.L1Loss(a, b).Item(), 1e-6)
	assert.Equal(t, float32(0), nn.L1Loss(a, a).Item())
	assert.InDelta(t, 3.5, nn.MSEToLabel(a, 1).Item(), 1e-6)

	logits := tensor.Zeros(tensor.Shape{4, 1}, backend)
	assert.InDelta(t, 0.6931472, nn.BCEWithLogitsLoss(logits, 1).Item(), 1e-6)

	c := tensor.Zeros(tensor.Shape{3}, backend)
	assert.Panics(t, func() { nn.L1Loss(a, c) })
}
