// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient tracking
// capabilities through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend wraps any tensor.Backend
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op (Add, Mul, Conv2D) implements backward pass
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x, _ := tensor.FromSlice([]float32{2.0}, tensor.Shape{1}, backend)
//	y := x.Mul(x).Sum() // y = x²
//
//	grads := autodiff.Gradients(y, []*tensor.Tensor{x}, backend)
//	fmt.Println(grads[0].AsFloat32()) // dy/dx = 2x = [4]
package autodiff

import (
	"github.com/born-ml/cyclegan/internal/autodiff/ops"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
type AutodiffBackend struct {
	inner tensor.Backend // Wrapped backend (CPU, GPU, etc.)
	tape  *GradientTape  // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New(backend tensor.Backend) *AutodiffBackend {
	return &AutodiffBackend{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend) Inner() tensor.Backend {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend) Device() tensor.Device {
	return b.inner.Device()
}

func (b *AutodiffBackend) record(op ops.Operation) {
	if b.tape.IsRecording() {
		b.tape.Record(op)
	}
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)
	b.record(ops.NewAddOp(a, c, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(a, c)
	b.record(ops.NewSubOp(a, c, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(a, c)
	b.record(ops.NewMulOp(a, c, result))
	return result
}

// AddScalar adds a constant and records the operation.
func (b *AutodiffBackend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result := b.inner.AddScalar(x, scalar)
	b.record(ops.NewAddScalarOp(x, result))
	return result
}

// MulScalar multiplies by a constant and records the operation.
func (b *AutodiffBackend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result := b.inner.MulScalar(x, scalar)
	b.record(ops.NewMulScalarOp(x, result, scalar))
	return result
}

// Abs computes |x| and records the operation.
func (b *AutodiffBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Abs(x)
	b.record(ops.NewAbsOp(x, result))
	return result
}

// Tanh applies hyperbolic tangent activation.
func (b *AutodiffBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Tanh(x)
	b.record(ops.NewTanhOp(x, result))
	return result
}

// Sigmoid applies sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (b *AutodiffBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sigmoid(x)
	b.record(ops.NewSigmoidOp(x, result))
	return result
}

// LeakyReLU applies leaky ReLU activation.
func (b *AutodiffBackend) LeakyReLU(x *tensor.RawTensor, slope float32) *tensor.RawTensor {
	result := b.inner.LeakyReLU(x, slope)
	b.record(ops.NewLeakyReLUOp(x, result, slope))
	return result
}

// Sum reduces to a scalar and records the operation.
func (b *AutodiffBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.record(ops.NewSumOp(x, result))
	return result
}

// Mean reduces to the scalar average and records the operation.
func (b *AutodiffBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mean(x)
	b.record(ops.NewMeanOp(x, result))
	return result
}

// BCEWithLogits computes mean sigmoid cross-entropy and records the operation.
func (b *AutodiffBackend) BCEWithLogits(logits *tensor.RawTensor, target float32) *tensor.RawTensor {
	result := b.inner.BCEWithLogits(logits, target)
	b.record(ops.NewBCEWithLogitsOp(logits, result, target))
	return result
}

// Reshape reshapes a tensor and records the operation.
//
// Reshape must be recorded on tape! Without recording, gradients won't flow
// back to reshaped parameters.
//
// Example: Conv2D bias
//   - bias parameter: [out_channels]
//   - reshaped for broadcasting: [1, out_channels, 1, 1]
//   - With ReshapeOp: gradient propagates back to original bias parameter
func (b *AutodiffBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(t, newShape)
	b.record(ops.NewReshapeOp(t, result))
	return result
}

// Transpose transposes a tensor and records the operation.
func (b *AutodiffBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	// Handle default axes (reverse all dimensions)
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	result := b.inner.Transpose(t, axes...)
	b.record(ops.NewTransposeOp(t, result, axes))
	return result
}

// Conv2D performs 2D convolution and records the operation.
func (b *AutodiffBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	result := b.inner.Conv2D(input, kernel, stride, padding)
	b.record(ops.NewConv2DOp(input, kernel, result, stride, padding))
	return result
}

// Conv2DInputBackward delegates to the wrapped backend. Backward kernels are
// never recorded.
func (b *AutodiffBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

// Conv2DKernelBackward delegates to the wrapped backend.
func (b *AutodiffBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}
