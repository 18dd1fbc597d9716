package autodiff

import (
	"github.com/born-ml/cyclegan/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
	// Inner returns the non-recording backend used to evaluate gradients.
	Inner() tensor.Backend
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t for every tensor recorded on the
// backend's tape.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones(Shape{2}, backend)
//	y := x.Mul(x).Sum() // y = Σx²
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // Get gradient for x
func Backward(t *tensor.Tensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	return backend.GetTape().Backward(t.Raw(), backend.Inner())
}

// Gradients computes ∂loss/∂p for each p in params, in order. The tape is
// left intact so further losses from the same forward pass can be
// differentiated.
func Gradients(loss *tensor.Tensor, params []*tensor.Tensor, backend BackwardCapable) []*tensor.RawTensor {
	wrt := make([]*tensor.RawTensor, len(params))
	for i, p := range params {
		wrt[i] = p.Raw()
	}
	return backend.GetTape().Gradients(loss.Raw(), wrt, backend.Inner())
}
