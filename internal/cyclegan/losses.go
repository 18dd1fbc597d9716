package cyclegan

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// ErrShapeMismatch is returned when tensors that must line up do not.
var ErrShapeMismatch = errors.New("shape mismatch")

// AdversarialLoss selects the real/fake objective.
type AdversarialLoss int

const (
	// LeastSquares scores against labels 1 (real) and 0 (fake) with squared error.
	LeastSquares AdversarialLoss = iota
	// CrossEntropy applies sigmoid cross-entropy to the raw scores.
	CrossEntropy
)

// String implements fmt.Stringer.
func (l AdversarialLoss) String() string {
	switch l {
	case LeastSquares:
		return "lsgan"
	case CrossEntropy:
		return "bce"
	default:
		return "unknown"
	}
}

// ParseAdversarialLoss parses "lsgan" or "bce".
func ParseAdversarialLoss(s string) (AdversarialLoss, error) {
	switch strings.ToLower(s) {
	case "", "lsgan", "mse":
		return LeastSquares, nil
	case "bce", "cross_entropy":
		return CrossEntropy, nil
	default:
		return 0, errors.Errorf("unknown adversarial loss %q", s)
	}
}

// Losses computes the CycleGAN training signals. All results are 0-D
// tensors recorded on the inputs' backend.
type Losses struct {
	Adversarial AdversarialLoss
}

// GeneratorLoss measures how far the discriminator's scores on generated
// images are from the "real" label.
func (l Losses) GeneratorLoss(fake *tensor.Tensor) *tensor.Tensor {
	if l.Adversarial == CrossEntropy {
		return nn.BCEWithLogitsLoss(fake, 1)
	}
	return nn.MSEToLabel(fake, 1)
}

// DiscriminatorLoss averages the error on real-labelled and fake-labelled scores.
func (l Losses) DiscriminatorLoss(real, fake *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkBroadcast("discriminator loss", real, fake); err != nil {
		return nil, err
	}
	var realLoss, fakeLoss *tensor.Tensor
	if l.Adversarial == CrossEntropy {
		realLoss = nn.BCEWithLogitsLoss(real, 1)
		fakeLoss = nn.BCEWithLogitsLoss(fake, 0)
	} else {
		realLoss = nn.MSEToLabel(real, 1)
		fakeLoss = nn.MSEToLabel(fake, 0)
	}
	return realLoss.Add(fakeLoss).MulScalar(0.5), nil
}

// CycleConsistencyLoss is the mean absolute difference between an image
// and its reconstruction after a round trip through both generators.
func (l Losses) CycleConsistencyLoss(real, cycled *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkBroadcast("cycle loss", real, cycled); err != nil {
		return nil, err
	}
	return nn.L1Loss(real, cycled), nil
}

// IdentityLoss is the mean absolute difference between an image and the
// output of the generator that targets the image's own domain.
func (l Losses) IdentityLoss(real, same *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkBroadcast("identity loss", real, same); err != nil {
		return nil, err
	}
	return nn.L1Loss(real, same), nil
}

func checkBroadcast(op string, a, b *tensor.Tensor) error {
	if _, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape()); err != nil {
		return errors.Wrapf(ErrShapeMismatch, "%s: %v and %v", op, a.Shape(), b.Shape())
	}
	return nil
}
