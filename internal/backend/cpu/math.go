package cpu

import (
	"math"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return cpu.unary(x, func(v float32) float32 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return cpu.unary(x, func(v float32) float32 { return v * scalar })
}

// Abs computes |x| element-wise.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float32) float32 {
		if v < 0 {
			return -v
		}
		return v
	})
}

// Tanh computes tanh(x) element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, sigmoid)
}

// LeakyReLU computes x for x > 0 and slope*x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, slope float32) *tensor.RawTensor {
	return cpu.unary(x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return slope * v
	})
}

// Sum reduces all elements to a 0-D tensor. Accumulates in float64.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(tensor.Shape{}, cpu.device)
	result.AsFloat32()[0] = float32(sum64(x.AsFloat32()))
	return result
}

// Mean reduces all elements to their 0-D average.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(tensor.Shape{}, cpu.device)
	result.AsFloat32()[0] = float32(sum64(x.AsFloat32()) / float64(x.NumElements()))
	return result
}

// BCEWithLogits computes mean(max(x,0) - x*t + log(1 + exp(-|x|))), the
// overflow-free form of sigmoid cross-entropy.
func (cpu *CPUBackend) BCEWithLogits(logits *tensor.RawTensor, target float32) *tensor.RawTensor {
	var total float64
	t := float64(target)
	for _, v := range logits.AsFloat32() {
		x := float64(v)
		total += math.Max(x, 0) - x*t + math.Log1p(math.Exp(-math.Abs(x)))
	}

	result := tensor.MustRaw(tensor.Shape{}, cpu.device)
	result.AsFloat32()[0] = float32(total / float64(logits.NumElements()))
	return result
}

func sigmoid(v float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(v))))
}

func sum64(data []float32) float64 {
	var s float64
	for _, v := range data {
		s += float64(v)
	}
	return s
}
