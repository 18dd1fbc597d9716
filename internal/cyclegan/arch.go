package cyclegan

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Arch describes the generator and discriminator architecture.
type Arch struct {
	Height   int
	Width    int
	Channels int

	Filters int     // Base number of convolution filters (default 32)
	Dropout float32 // Generator dropout rate (default 0.1)
	Slope   float32 // LeakyReLU negative slope (default 0.2)
}

// DefaultArch returns the architecture used for 28×28 grayscale digits.
func DefaultArch() Arch {
	return Arch{Height: 28, Width: 28, Channels: 1, Filters: 32, Dropout: 0.1, Slope: 0.2}
}

// Shape returns the per-image shape [H, W, C].
func (a Arch) Shape() tensor.Shape {
	return tensor.Shape{a.Height, a.Width, a.Channels}
}

// Validate reports architectures the discriminator cannot be built for.
func (a Arch) Validate() error {
	if a.Channels <= 0 || a.Filters <= 0 {
		return errors.Errorf("arch: channels=%d filters=%d must be positive", a.Channels, a.Filters)
	}
	if a.Height < 4 || a.Width < 4 {
		return errors.Errorf("arch: image %dx%d is smaller than 4x4", a.Height, a.Width)
	}
	if a.Dropout < 0 || a.Dropout >= 1 {
		return errors.Errorf("arch: dropout %v not in [0, 1)", a.Dropout)
	}
	return nil
}

// NewGenerator builds an image-to-image network. Input and output are
// NHWC batches of the same shape with values in [-1, 1].
//
//	conv3x3(C→f) → LeakyReLU → conv3x3(f→2f) → LeakyReLU → Dropout →
//	conv3x3(2f→f) → LeakyReLU → conv3x3(f→C) → Tanh
func NewGenerator(arch Arch, rng *rand.Rand, backend tensor.Backend) *nn.Sequential {
	c, f := arch.Channels, arch.Filters
	return nn.NewSequential(
		nn.NewPermute(0, 3, 1, 2),
		nn.NewConv2D(c, f, 3, 3, 1, 1, true, rng, backend),
		nn.NewLeakyReLU(arch.Slope),
		nn.NewConv2D(f, 2*f, 3, 3, 1, 1, true, rng, backend),
		nn.NewLeakyReLU(arch.Slope),
		nn.NewDropout(arch.Dropout, rng),
		nn.NewConv2D(2*f, f, 3, 3, 1, 1, true, rng, backend),
		nn.NewLeakyReLU(arch.Slope),
		nn.NewConv2D(f, c, 3, 3, 1, 1, true, rng, backend),
		nn.NewTanh(),
		nn.NewPermute(0, 2, 3, 1),
	)
}

// NewDiscriminator builds a network scoring each NHWC image with one raw
// logit. Output shape is [N, 1].
//
// Two strided 4×4 convolutions halve the spatial size twice; a final
// convolution spanning the remaining feature map reduces it to one score.
func NewDiscriminator(arch Arch, rng *rand.Rand, backend tensor.Backend) *nn.Sequential {
	c, f := arch.Channels, arch.Filters
	down1 := nn.NewConv2D(c, f, 4, 4, 2, 1, true, rng, backend)
	down2 := nn.NewConv2D(f, 2*f, 4, 4, 2, 1, true, rng, backend)
	h, w := down1.OutputSize(arch.Height, arch.Width)
	h, w = down2.OutputSize(h, w)

	return nn.NewSequential(
		nn.NewPermute(0, 3, 1, 2),
		down1,
		nn.NewLeakyReLU(arch.Slope),
		down2,
		nn.NewLeakyReLU(arch.Slope),
		nn.NewConv2D(2*f, 1, h, w, 1, 0, true, rng, backend),
		nn.NewFlatten(),
	)
}

// Network names used in checkpoints.
const (
	NameGeneratorG     = "generator_g"
	NameGeneratorF     = "generator_f"
	NameDiscriminatorX = "discriminator_x"
	NameDiscriminatorY = "discriminator_y"
)

// Networks holds the two generators and two discriminators.
//
// G maps clean images (domain X) to degraded ones (domain Y); F maps
// degraded images back to clean. DX scores domain X, DY scores domain Y.
type Networks struct {
	Arch   Arch
	G, F   *nn.Sequential
	DX, DY *nn.Sequential
}

// NewNetworks builds freshly initialized networks. All weights are drawn
// from rng in a fixed order.
func NewNetworks(arch Arch, rng *rand.Rand, backend tensor.Backend) (*Networks, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	return &Networks{
		Arch: arch,
		G:    NewGenerator(arch, rng, backend),
		F:    NewGenerator(arch, rng, backend),
		DX:   NewDiscriminator(arch, rng, backend),
		DY:   NewDiscriminator(arch, rng, backend),
	}, nil
}

// ByName returns the networks keyed by their checkpoint names.
func (n *Networks) ByName() map[string]*nn.Sequential {
	return map[string]*nn.Sequential{
		NameGeneratorG:     n.G,
		NameGeneratorF:     n.F,
		NameDiscriminatorX: n.DX,
		NameDiscriminatorY: n.DY,
	}
}

// SetTraining switches all four networks between training and inference mode.
func (n *Networks) SetTraining(training bool) {
	for _, net := range []*nn.Sequential{n.G, n.F, n.DX, n.DY} {
		net.SetTraining(training)
	}
}
