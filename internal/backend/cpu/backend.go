// Package cpu implements the CPU backend with BLAS-backed convolution.
package cpu

import (
	"fmt"

	"github.com/born-ml/cyclegan/internal/parallel"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// CPUBackend implements tensor operations on the CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, fn func(x, y float32) float32) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	out := result.AsFloat32()
	aData := a.AsFloat32()
	bData := b.AsFloat32()

	// Fast path: same shape
	if !needsBroadcast {
		for i := range out {
			out[i] = fn(aData[i], bData[i])
		}
		return result
	}

	aOff := tensor.BroadcastOffsets(a.Shape(), outShape)
	bOff := tensor.BroadcastOffsets(b.Shape(), outShape)
	for i := range out {
		out[i] = fn(aData[aOff[i]], bData[bOff[i]])
	}
	return result
}

// unary applies fn to every element of x into a fresh tensor.
func (cpu *CPUBackend) unary(x *tensor.RawTensor, fn func(v float32) float32) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), cpu.device)
	out := result.AsFloat32()
	for i, v := range x.AsFloat32() {
		out[i] = fn(v)
	}
	return result
}
