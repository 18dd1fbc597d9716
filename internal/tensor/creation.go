package tensor

import (
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
func Zeros(shape Shape, b Backend) *Tensor {
	return New(MustRaw(shape, b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{3, 3}, 3.14, backend)
func Full(shape Shape, value float32, b Backend) *Tensor {
	t := Zeros(shape, b)
	t.raw.Fill(value)
	return t
}

// Randn creates a tensor with values drawn from N(0, std²) using rng.
func Randn(shape Shape, std float32, rng *rand.Rand, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64()) * std
	}
	return t
}

// Uniform creates a tensor with values drawn from U(low, high) using rng.
func Uniform(shape Shape, low, high float32, rng *rand.Rand, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()
	span := high - low
	for i := range data {
		data[i] = low + span*rng.Float32()
	}
	return t
}
