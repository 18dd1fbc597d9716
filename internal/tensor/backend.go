package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Element-wise binary operations broadcast NumPy-style and panic on
// incompatible shapes; callers that accept user data validate first.
type Backend interface {
	// Element-wise binary operations
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, scalar float32) *RawTensor
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// Math and activation functions (element-wise)
	Abs(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	LeakyReLU(x *RawTensor, slope float32) *RawTensor

	// Reductions to a 0-D scalar
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// BCEWithLogits is the mean sigmoid cross-entropy of logits against a
	// constant target label, computed in the numerically stable form.
	BCEWithLogits(logits *RawTensor, target float32) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Convolution over [N, C, H, W] inputs and [C_out, C_in, K_h, K_w] kernels.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
