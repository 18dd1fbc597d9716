package cyclegan_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/autodiff"
	"github.com/born-ml/cyclegan/internal/backend/cpu"
	"github.com/born-ml/cyclegan/internal/checkpoint"
	"github.com/born-ml/cyclegan/internal/cyclegan"
	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/tensor"
)

func tinyArch() cyclegan.Arch {
	return cyclegan.Arch{Height: 6, Width: 6, Channels: 1, Filters: 3, Dropout: 0.1, Slope: 0.2}
}

func newGAN(t *testing.T, arch cyclegan.Arch, cfg cyclegan.Config) *cyclegan.CycleGAN {
	t.Helper()
	backend := autodiff.New(cpu.New())
	nets, err := cyclegan.NewNetworks(arch, rand.New(rand.NewSource(7)), backend)
	require.NoError(t, err)
	gan, err := cyclegan.New(cfg, nets, backend)
	require.NoError(t, err)
	return gan
}

// batch returns a clean batch in [-1, 1] and a salt-and-pepper copy.
func batch(arch cyclegan.Arch, n int, seed int64) (clean, noisy *tensor.Tensor) {
	rng := rand.New(rand.NewSource(seed))
	shape := tensor.Shape{n, arch.Height, arch.Width, arch.Channels}
	backend := cpu.New()
	clean = tensor.Uniform(shape, -1, 1, rng, backend)
	noisy = clean.Clone()
	data := noisy.Data()
	for i := range data {
		switch r := rng.Float32(); {
		case r < 0.1:
			data[i] = -1
		case r < 0.2:
			data[i] = 1
		}
	}
	return clean, noisy
}

type snapshot map[string]map[string][]float32

func snapshotOf(nets *cyclegan.Networks) snapshot {
	out := snapshot{}
	for name, net := range nets.ByName() {
		out[name] = map[string][]float32{}
		for key, raw := range net.StateDict() {
			out[name][key] = append([]float32(nil), raw.AsFloat32()...)
		}
	}
	return out
}

func TestNetworks_Shapes(t *testing.T) {
	arch := cyclegan.DefaultArch()
	arch.Filters = 2
	backend := cpu.New()
	nets, err := cyclegan.NewNetworks(arch, rand.New(rand.NewSource(1)), backend)
	require.NoError(t, err)
	nets.SetTraining(false)

	x := tensor.Zeros(tensor.Shape{3, 28, 28, 1}, backend)
	assert.Equal(t, tensor.Shape{3, 28, 28, 1}, nets.G.Forward(x).Shape())
	assert.Equal(t, tensor.Shape{3, 1}, nets.DX.Forward(x).Shape())

	for _, v := range nets.F.Forward(tensor.Full(tensor.Shape{1, 28, 28, 1}, 5, backend)).Data() {
		assert.True(t, v >= -1 && v <= 1, "generator output %v outside [-1, 1]", v)
	}

	_, err = cyclegan.NewNetworks(cyclegan.Arch{Height: 2, Width: 2, Channels: 1, Filters: 1}, rand.New(rand.NewSource(1)), backend)
	assert.Error(t, err)
}

func TestTrainStep_Finite(t *testing.T) {
	arch := tinyArch()
	gan := newGAN(t, arch, cyclegan.DefaultConfig())
	clean, noisy := batch(arch, 4, 1)

	record, err := gan.TrainStep(clean, noisy)
	require.NoError(t, err)
	assert.True(t, record.Finite(), "%v", record)
	assert.GreaterOrEqual(t, record.DX, float32(0))
	assert.GreaterOrEqual(t, record.DY, float32(0))

	gen, disc := gan.OptimizerSteps()
	assert.Equal(t, 2, gen, "G and F share one optimizer")
	assert.Equal(t, 2, disc, "D_X and D_Y share one optimizer")
	assert.Zero(t, gan.Backend().Tape().NumOps(), "tape is cleared after the step")
	assert.False(t, gan.Backend().Tape().IsRecording())
}

func TestTrainStep_CrossEntropy(t *testing.T) {
	arch := tinyArch()
	cfg := cyclegan.DefaultConfig()
	cfg.Adversarial = cyclegan.CrossEntropy
	gan := newGAN(t, arch, cfg)
	clean, noisy := batch(arch, 2, 3)

	record, err := gan.TrainStep(clean, noisy)
	require.NoError(t, err)
	assert.True(t, record.Finite())
	assert.Greater(t, record.DX, float32(0))
}

func TestTestStep_DoesNotMutate(t *testing.T) {
	arch := tinyArch()
	gan := newGAN(t, arch, cyclegan.DefaultConfig())
	clean, noisy := batch(arch, 3, 2)
	before := snapshotOf(gan.Networks())

	first, err := gan.TestStep(clean, noisy)
	require.NoError(t, err)
	second, err := gan.TestStep(clean, noisy)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, snapshotOf(gan.Networks()))
	assert.Zero(t, gan.Backend().Tape().NumOps())
	gen, disc := gan.OptimizerSteps()
	assert.Zero(t, gen+disc)
}

func TestTrainStep_UpdatesParameters(t *testing.T) {
	arch := tinyArch()
	gan := newGAN(t, arch, cyclegan.DefaultConfig())
	clean, noisy := batch(arch, 3, 4)

	eval1, err := gan.TestStep(clean, noisy)
	require.NoError(t, err)
	_, err = gan.TrainStep(clean, noisy)
	require.NoError(t, err)
	eval2, err := gan.TestStep(clean, noisy)
	require.NoError(t, err)

	assert.NotEqual(t, eval1, eval2, "a train step changes later losses")
}

// TestTrainStep_ZeroBatch runs one step on an all-zero 2×28×28×1 pair.
func TestTrainStep_ZeroBatch(t *testing.T) {
	arch := cyclegan.DefaultArch()
	arch.Filters = 4
	gan := newGAN(t, arch, cyclegan.DefaultConfig())
	backend := cpu.New()
	clean := tensor.Zeros(tensor.Shape{2, 28, 28, 1}, backend)
	noisy := tensor.Zeros(tensor.Shape{2, 28, 28, 1}, backend)
	before := snapshotOf(gan.Networks())

	record, err := gan.TrainStep(clean, noisy)
	require.NoError(t, err)
	assert.True(t, record.Finite(), "%v", record)

	after := snapshotOf(gan.Networks())
	for name := range before {
		assert.NotEqual(t, before[name], after[name], "%s was not updated", name)
	}
}

func TestTrainStep_ShapeMismatch(t *testing.T) {
	arch := tinyArch()
	gan := newGAN(t, arch, cyclegan.DefaultConfig())
	backend := cpu.New()
	clean, _ := batch(arch, 2, 1)

	cases := map[string][2]*tensor.Tensor{
		"batch size": {clean, tensor.Zeros(tensor.Shape{3, 6, 6, 1}, backend)},
		"channels":   {tensor.Zeros(tensor.Shape{2, 6, 6, 3}, backend), tensor.Zeros(tensor.Shape{2, 6, 6, 3}, backend)},
		"rank":       {tensor.Zeros(tensor.Shape{2, 36}, backend), tensor.Zeros(tensor.Shape{2, 36}, backend)},
	}
	for name, pair := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := gan.TrainStep(pair[0], pair[1])
			assert.True(t, errors.Is(err, cyclegan.ErrShapeMismatch), "%v", err)
			_, err = gan.TestStep(pair[0], pair[1])
			assert.True(t, errors.Is(err, cyclegan.ErrShapeMismatch), "%v", err)
		})
	}
	gen, _ := gan.OptimizerSteps()
	assert.Zero(t, gen)
}

func TestNew_InvalidConfig(t *testing.T) {
	backend := autodiff.New(cpu.New())
	nets, err := cyclegan.NewNetworks(tinyArch(), rand.New(rand.NewSource(1)), backend)
	require.NoError(t, err)

	cfg := cyclegan.DefaultConfig()
	cfg.LRGen = 0
	_, err = cyclegan.New(cfg, nets, backend)
	assert.Error(t, err)

	_, err = cyclegan.New(cyclegan.DefaultConfig(), &cyclegan.Networks{}, backend)
	assert.Error(t, err)
}

func TestLosses(t *testing.T) {
	backend := cpu.New()
	a, _ := tensor.FromSlice([]float32{0.5, -0.5, 1, 0}, tensor.Shape{1, 2, 2, 1}, backend)
	b, _ := tensor.FromSlice([]float32{0.5, -0.5, 0, 0}, tensor.Shape{1, 2, 2, 1}, backend)
	l := cyclegan.Losses{}

	cycle, err := l.CycleConsistencyLoss(a, a.Clone())
	require.NoError(t, err)
	assert.Equal(t, float32(0), cycle.Item(), "zero when reconstruction is exact")

	cycle, err = l.CycleConsistencyLoss(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cycle.Item(), 1e-6)

	id, err := l.IdentityLoss(b, b)
	require.NoError(t, err)
	assert.Equal(t, float32(0), id.Item())

	_, err = l.IdentityLoss(a, tensor.Zeros(tensor.Shape{1, 3, 2, 1}, backend))
	assert.True(t, errors.Is(err, cyclegan.ErrShapeMismatch))
	_, err = l.CycleConsistencyLoss(a, tensor.Zeros(tensor.Shape{1, 2, 3, 1}, backend))
	assert.True(t, errors.Is(err, cyclegan.ErrShapeMismatch))

	realScore, _ := tensor.FromSlice([]float32{1, 0}, tensor.Shape{2, 1}, backend)
	fake, _ := tensor.FromSlice([]float32{0, 1}, tensor.Shape{2, 1}, backend)

	// Least squares: mean((fake-1)²) and 0.5·(mean((real-1)²) + mean(fake²)).
	assert.InDelta(t, 0.5, l.GeneratorLoss(fake).Item(), 1e-6)
	d, err := l.DiscriminatorLoss(realScore, fake)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d.Item(), 1e-6)

	_, err = l.DiscriminatorLoss(realScore, tensor.Zeros(tensor.Shape{3, 1}, backend))
	assert.True(t, errors.Is(err, cyclegan.ErrShapeMismatch))

	bce := cyclegan.Losses{Adversarial: cyclegan.CrossEntropy}
	zeros := tensor.Zeros(tensor.Shape{2, 1}, backend)
	assert.InDelta(t, 0.6931472, bce.GeneratorLoss(zeros).Item(), 1e-6)
	d, err = bce.DiscriminatorLoss(zeros, zeros)
	require.NoError(t, err)
	assert.InDelta(t, 0.6931472, d.Item(), 1e-6)
}

func TestParseAdversarialLoss(t *testing.T) {
	for in, want := range map[string]cyclegan.AdversarialLoss{
		"":      cyclegan.LeastSquares,
		"lsgan": cyclegan.LeastSquares,
		"BCE":   cyclegan.CrossEntropy,
	} {
		got, err := cyclegan.ParseAdversarialLoss(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := cyclegan.ParseAdversarialLoss("wgan")
	assert.Error(t, err)
	assert.Equal(t, "bce", cyclegan.CrossEntropy.String())
}

func TestSaveLoadModels(t *testing.T) {
	arch := tinyArch()
	gan := newGAN(t, arch, cyclegan.DefaultConfig())
	clean, noisy := batch(arch, 2, 5)
	_, err := gan.TrainStep(clean, noisy)
	require.NoError(t, err)

	mgr := checkpoint.NewManager(t.TempDir(), tensor.CPU)
	require.NoError(t, cyclegan.SaveModels(mgr, gan.Networks(), 4))

	backend := autodiff.New(cpu.New())
	loaded, err := cyclegan.LoadModels(mgr, 4, arch, backend)
	require.NoError(t, err)

	for name, net := range gan.Networks().ByName() {
		got := loaded.ByName()[name].StateDict()
		want := net.StateDict()
		require.Len(t, got, len(want), name)
		for key, raw := range want {
			require.Contains(t, got, key)
			assert.Equal(t, raw.Shape(), got[key].Shape(), "%s/%s", name, key)
			assert.Equal(t, raw.AsFloat32(), got[key].AsFloat32(), "%s/%s", name, key)
		}
	}

	// GEMM summation order may differ between calls, so outputs only
	// agree within float tolerance.
	gan.Networks().SetTraining(false)
	loaded.SetTraining(false)
	input, _ := batch(arch, 1, 99)
	for name, net := range gan.Networks().ByName() {
		want := net.Forward(input).Data()
		got := loaded.ByName()[name].Forward(tensor.New(input.Raw(), backend)).Data()
		assert.InDeltaSlice(t, want, got, 1e-6, "%s output differs after reload", name)
	}

	_, err = cyclegan.LoadModels(mgr, 5, arch, backend)
	assert.True(t, errors.Is(err, checkpoint.ErrNotFound))

	wider := arch
	wider.Filters = 5
	_, err = cyclegan.LoadModels(mgr, 4, wider, backend)
	assert.True(t, errors.Is(err, nn.ErrStateDict))
}
