// Package cyclegan implements a CycleGAN denoiser: two generators mapping
// between clean and degraded images, two discriminators, the loss
// composition and the adversarial training step.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	nets, _ := cyclegan.NewNetworks(cyclegan.DefaultArch(), rand.New(rand.NewSource(1)), backend)
//	gan, _ := cyclegan.New(cyclegan.DefaultConfig(), nets, backend)
//	record, err := gan.TrainStep(clean, noisy)
package cyclegan

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/autodiff"
	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/optim"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Config holds the training hyperparameters.
type Config struct {
	LambdaCycle    float32 // Weight of the cycle-consistency loss
	LambdaIdentity float32 // Identity loss weight as a fraction of LambdaCycle
	LRGen          float32 // Learning rate of the generator optimizer
	LRDisc         float32 // Learning rate of the discriminator optimizer
	Beta           float32 // Adam beta1 for both optimizers
	Adversarial    AdversarialLoss
}

// DefaultConfig returns the standard CycleGAN hyperparameters.
func DefaultConfig() Config {
	return Config{
		LambdaCycle:    10,
		LambdaIdentity: 0.5,
		LRGen:          2e-4,
		LRDisc:         1e-4,
		Beta:           0.5,
		Adversarial:    LeastSquares,
	}
}

// LossRecord holds the four scalar losses of one step.
type LossRecord struct {
	G  float32 `json:"G_loss"`
	F  float32 `json:"F_loss"`
	DX float32 `json:"D_X_loss"`
	DY float32 `json:"D_Y_loss"`
}

// Finite reports whether every loss is a finite number.
func (r LossRecord) Finite() bool {
	for _, v := range r.Values() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// Values returns the losses in G, F, D_X, D_Y order.
func (r LossRecord) Values() [4]float32 {
	return [4]float32{r.G, r.F, r.DX, r.DY}
}

// String implements fmt.Stringer.
func (r LossRecord) String() string {
	return fmt.Sprintf("G_loss=%.4f F_loss=%.4f D_X_loss=%.4f D_Y_loss=%.4f", r.G, r.F, r.DX, r.DY)
}

// CycleGAN owns the four networks and the two shared optimizers.
//
// Only TrainStep mutates parameters or optimizer state. Calls must not be
// made concurrently.
type CycleGAN struct {
	cfg     Config
	nets    *Networks
	backend *autodiff.AutodiffBackend
	losses  Losses

	genOpt  *optim.Adam // shared by G and F
	discOpt *optim.Adam // shared by D_X and D_Y
}

// New assembles a CycleGAN from networks built on backend.
func New(cfg Config, nets *Networks, backend *autodiff.AutodiffBackend) (*CycleGAN, error) {
	if nets == nil || nets.G == nil || nets.F == nil || nets.DX == nil || nets.DY == nil {
		return nil, errors.New("cyclegan: all four networks are required")
	}
	if cfg.LambdaCycle < 0 || cfg.LambdaIdentity < 0 {
		return nil, errors.Errorf("cyclegan: negative loss weight (cycle=%v identity=%v)", cfg.LambdaCycle, cfg.LambdaIdentity)
	}
	if cfg.LRGen <= 0 || cfg.LRDisc <= 0 {
		return nil, errors.Errorf("cyclegan: learning rates must be positive (gen=%v disc=%v)", cfg.LRGen, cfg.LRDisc)
	}
	betas := [2]float32{cfg.Beta, 0.999}
	return &CycleGAN{
		cfg:     cfg,
		nets:    nets,
		backend: backend,
		losses:  Losses{Adversarial: cfg.Adversarial},
		genOpt:  optim.NewAdam(optim.AdamConfig{LR: cfg.LRGen, Betas: betas}),
		discOpt: optim.NewAdam(optim.AdamConfig{LR: cfg.LRDisc, Betas: betas}),
	}, nil
}

// Networks returns the owned networks.
func (m *CycleGAN) Networks() *Networks { return m.nets }

// Backend returns the recording backend the networks run on.
func (m *CycleGAN) Backend() *autodiff.AutodiffBackend { return m.backend }

// Config returns the hyperparameters.
func (m *CycleGAN) Config() Config { return m.cfg }

// forward holds every quantity of one step that a loss depends on.
type forward struct {
	gLoss, fLoss, dxLoss, dyLoss *tensor.Tensor
}

// compute runs steps shared by training and evaluation: all generator and
// discriminator passes followed by the loss composition.
func (m *CycleGAN) compute(clean, degraded *tensor.Tensor) (*forward, error) {
	n := m.nets
	l := m.losses

	fakeY := n.G.Forward(clean)
	fakeX := n.F.Forward(degraded)

	cycledX := n.F.Forward(fakeY)
	cycledY := n.G.Forward(fakeX)

	sameX := n.F.Forward(clean)
	sameY := n.G.Forward(degraded)

	realXScore := n.DX.Forward(clean)
	fakeXScore := n.DX.Forward(fakeX)
	realYScore := n.DY.Forward(degraded)
	fakeYScore := n.DY.Forward(fakeY)

	advG := l.GeneratorLoss(fakeYScore)
	advF := l.GeneratorLoss(fakeXScore)

	cycleX, err := l.CycleConsistencyLoss(clean, cycledX)
	if err != nil {
		return nil, err
	}
	cycleY, err := l.CycleConsistencyLoss(degraded, cycledY)
	if err != nil {
		return nil, err
	}
	cycle := cycleX.Add(cycleY).MulScalar(m.cfg.LambdaCycle)

	idWeight := m.cfg.LambdaCycle * m.cfg.LambdaIdentity
	idG, err := l.IdentityLoss(degraded, sameY)
	if err != nil {
		return nil, err
	}
	idF, err := l.IdentityLoss(clean, sameX)
	if err != nil {
		return nil, err
	}

	dxLoss, err := l.DiscriminatorLoss(realXScore, fakeXScore)
	if err != nil {
		return nil, err
	}
	dyLoss, err := l.DiscriminatorLoss(realYScore, fakeYScore)
	if err != nil {
		return nil, err
	}

	return &forward{
		gLoss:  advG.Add(cycle).Add(idG.MulScalar(idWeight)),
		fLoss:  advF.Add(cycle).Add(idF.MulScalar(idWeight)),
		dxLoss: dxLoss,
		dyLoss: dyLoss,
	}, nil
}

func (f *forward) record() LossRecord {
	return LossRecord{
		G:  f.gLoss.Item(),
		F:  f.fLoss.Item(),
		DX: f.dxLoss.Item(),
		DY: f.dyLoss.Item(),
	}
}

// TrainStep performs one adversarial update on a (clean, degraded) batch
// pair of NHWC images.
//
// All four losses are computed from one recorded forward pass. Gradients
// of G_loss, F_loss, D_X_loss and D_Y_loss are taken with respect to G, F,
// D_X and D_Y respectively, and only then are the optimizers applied.
func (m *CycleGAN) TrainStep(clean, degraded *tensor.Tensor) (LossRecord, error) {
	if err := m.checkPair(clean, degraded); err != nil {
		return LossRecord{}, err
	}
	clean, degraded = m.bind(clean), m.bind(degraded)

	tape := m.backend.Tape()
	tape.Clear()
	defer tape.Clear()

	m.nets.SetTraining(true)
	tape.StartRecording()
	defer tape.StopRecording()
	fw, err := m.compute(clean, degraded)
	tape.StopRecording()
	if err != nil {
		return LossRecord{}, err
	}

	n := m.nets
	gParams, fParams := n.G.Parameters(), n.F.Parameters()
	dxParams, dyParams := n.DX.Parameters(), n.DY.Parameters()

	gGrads := autodiff.Gradients(fw.gLoss, nn.Tensors(gParams), m.backend)
	fGrads := autodiff.Gradients(fw.fLoss, nn.Tensors(fParams), m.backend)
	dxGrads := autodiff.Gradients(fw.dxLoss, nn.Tensors(dxParams), m.backend)
	dyGrads := autodiff.Gradients(fw.dyLoss, nn.Tensors(dyParams), m.backend)

	record := fw.record()

	if err := m.genOpt.ApplyGradients(gParams, gGrads); err != nil {
		return LossRecord{}, errors.Wrap(err, "apply G gradients")
	}
	if err := m.genOpt.ApplyGradients(fParams, fGrads); err != nil {
		return LossRecord{}, errors.Wrap(err, "apply F gradients")
	}
	if err := m.discOpt.ApplyGradients(dxParams, dxGrads); err != nil {
		return LossRecord{}, errors.Wrap(err, "apply D_X gradients")
	}
	if err := m.discOpt.ApplyGradients(dyParams, dyGrads); err != nil {
		return LossRecord{}, errors.Wrap(err, "apply D_Y gradients")
	}
	return record, nil
}

// TestStep computes the same losses as TrainStep in inference mode without
// recording or updating anything.
func (m *CycleGAN) TestStep(clean, degraded *tensor.Tensor) (LossRecord, error) {
	if err := m.checkPair(clean, degraded); err != nil {
		return LossRecord{}, err
	}
	clean, degraded = m.bind(clean), m.bind(degraded)

	restore := m.inference()
	defer restore()

	fw, err := m.compute(clean, degraded)
	if err != nil {
		return LossRecord{}, err
	}
	return fw.record(), nil
}

// Translate runs F (degraded → clean) in inference mode.
func (m *CycleGAN) Translate(degraded *tensor.Tensor) *tensor.Tensor {
	restore := m.inference()
	defer restore()
	return m.nets.F.Forward(m.bind(degraded))
}

// inference stops recording and disables dropout until the returned
// function is called.
func (m *CycleGAN) inference() func() {
	tape := m.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	m.nets.SetTraining(false)
	return func() {
		m.nets.SetTraining(true)
		if wasRecording {
			tape.StartRecording()
		}
	}
}

// OptimizerSteps returns the generator and discriminator optimizer timesteps.
func (m *CycleGAN) OptimizerSteps() (gen, disc int) {
	return m.genOpt.GetTimestep(), m.discOpt.GetTimestep()
}

func (m *CycleGAN) bind(t *tensor.Tensor) *tensor.Tensor {
	if t.Backend() == tensor.Backend(m.backend) {
		return t
	}
	return tensor.New(t.Raw(), m.backend)
}

func (m *CycleGAN) checkPair(clean, degraded *tensor.Tensor) error {
	if clean == nil || degraded == nil {
		return errors.Wrap(ErrShapeMismatch, "nil batch")
	}
	cs, ds := clean.Shape(), degraded.Shape()
	if len(cs) != 4 {
		return errors.Wrapf(ErrShapeMismatch, "expected NHWC batch, got %v", cs)
	}
	if !cs.Equal(ds) {
		return errors.Wrapf(ErrShapeMismatch, "clean %v vs degraded %v", cs, ds)
	}
	if cs[0] == 0 {
		return errors.Wrap(ErrShapeMismatch, "empty batch")
	}
	if want := m.nets.Arch.Shape(); !want.Equal(cs[1:]) {
		return errors.Wrapf(ErrShapeMismatch, "batch images %v, networks expect %v", cs[1:], want)
	}
	return nil
}
