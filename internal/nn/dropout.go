package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Dropout zeroes each element with probability rate while training and
// scales the survivors by 1/(1-rate). In inference mode it is the identity.
type Dropout struct {
	stateless
	rate     float32
	rng      *rand.Rand
	training bool
}

// NewDropout creates a dropout module. The mask is drawn from rng.
// Modules start in training mode.
func NewDropout(rate float32, rng *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: rate %v not in [0, 1)", rate))
	}
	return &Dropout{rate: rate, rng: rng, training: true}
}

// Forward applies the dropout mask.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.rate == 0 {
		return input
	}

	keep := 1 / (1 - d.rate)
	mask := tensor.Zeros(input.Shape(), input.Backend())
	data := mask.Data()
	for i := range data {
		if d.rng.Float32() >= d.rate {
			data[i] = keep
		}
	}
	return input.Mul(mask)
}

// SetTraining toggles the mask.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the mask is active.
func (d *Dropout) Training() bool {
	return d.training
}
