package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
// Draws come from rng so that network construction is reproducible.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend tensor.Backend) *tensor.Tensor {
	bound := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	return tensor.Uniform(shape, -bound, bound, rng, backend)
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape, backend tensor.Backend) *tensor.Tensor {
	return tensor.Zeros(shape, backend)
}
