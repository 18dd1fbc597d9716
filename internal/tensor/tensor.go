package tensor

import "fmt"

// Tensor is a float32 tensor bound to a computation backend.
//
// All arithmetic is delegated to the backend. When the backend is an
// autodiff.AutodiffBackend with an active tape, every operation is recorded
// so that gradients can be computed later.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
//	result := t.Add(t)
type Tensor struct {
	raw     *RawTensor
	backend Backend
}

// New creates a Tensor from a RawTensor and backend.
func New(raw *RawTensor, b Backend) *Tensor {
	return &Tensor{
		raw:     raw,
		backend: b,
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape, b Backend) (*Tensor, error) {
	raw, err := RawFromSlice(data, shape, b.Device())
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor) Backend() Backend {
	return t.backend
}

// Data returns the tensor's elements (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float32 {
	return t.raw.AsFloat32()
}

// Item returns the value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (t *Tensor) Item() float32 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float32 {
	return t.Data()[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float32, indices ...int) {
	t.Data()[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}

	offset := 0
	strides := t.raw.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[float32]%v on %s", t.raw.Shape(), t.raw.Device())
}

// Clone creates a deep copy of the tensor that is not connected to any
// recorded computation.
func (t *Tensor) Clone() *Tensor {
	return New(t.raw.Clone(), t.backend)
}

// Detach returns a tensor that shares the same data but is a fresh node for
// autodiff: gradients never flow through it to the operations that produced t.
func (t *Tensor) Detach() *Tensor {
	view, err := t.raw.View(t.raw.Shape())
	if err != nil {
		panic(err) // same shape, cannot fail
	}
	return New(view, t.backend)
}

// Add performs element-wise addition with broadcasting.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return New(t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	return New(t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return New(t.backend.Mul(t.raw, other.raw), t.backend)
}

// AddScalar adds a scalar to every element.
func (t *Tensor) AddScalar(s float32) *Tensor {
	return New(t.backend.AddScalar(t.raw, s), t.backend)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor) MulScalar(s float32) *Tensor {
	return New(t.backend.MulScalar(t.raw, s), t.backend)
}

// Abs computes the element-wise absolute value.
func (t *Tensor) Abs() *Tensor {
	return New(t.backend.Abs(t.raw), t.backend)
}

// Square computes x*x element-wise.
func (t *Tensor) Square() *Tensor {
	return t.Mul(t)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor) Tanh() *Tensor {
	return New(t.backend.Tanh(t.raw), t.backend)
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (t *Tensor) Sigmoid() *Tensor {
	return New(t.backend.Sigmoid(t.raw), t.backend)
}

// LeakyReLU applies max(x, slope*x) element-wise.
func (t *Tensor) LeakyReLU(slope float32) *Tensor {
	return New(t.backend.LeakyReLU(t.raw, slope), t.backend)
}

// Sum reduces all elements to a 0-D tensor.
func (t *Tensor) Sum() *Tensor {
	return New(t.backend.Sum(t.raw), t.backend)
}

// Mean reduces all elements to their 0-D average.
func (t *Tensor) Mean() *Tensor {
	return New(t.backend.Mean(t.raw), t.backend)
}

// Reshape returns a tensor with the same elements and a new shape.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	return New(t.backend.Reshape(t.raw, Shape(dims)), t.backend)
}

// Transpose permutes the dimensions. With no axes the order is reversed.
func (t *Tensor) Transpose(axes ...int) *Tensor {
	return New(t.backend.Transpose(t.raw, axes...), t.backend)
}

// Conv2D convolves t ([N, C_in, H, W]) with kernel ([C_out, C_in, K_h, K_w]).
func (t *Tensor) Conv2D(kernel *Tensor, stride, padding int) *Tensor {
	return New(t.backend.Conv2D(t.raw, kernel.raw, stride, padding), t.backend)
}

// BCEWithLogits returns the mean sigmoid cross-entropy of t against target.
func (t *Tensor) BCEWithLogits(target float32) *Tensor {
	return New(t.backend.BCEWithLogits(t.raw, target), t.backend)
}
