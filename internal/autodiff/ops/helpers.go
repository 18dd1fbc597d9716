package ops

import (
	"fmt"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()

	// Clone when shapes match so accumulated gradients never alias.
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	if _, _, err := tensor.BroadcastShapes(targetShape, gradShape); err != nil {
		panic(fmt.Sprintf("reduceBroadcast: %v", err))
	}

	result := tensor.MustRaw(targetShape, grad.Device())
	out := result.AsFloat32()
	for i, off := range tensor.BroadcastOffsets(targetShape, gradShape) {
		out[off] += grad.AsFloat32()[i]
	}
	return result
}

// mapGrad builds fn(outputGrad[i], input[i], output[i]) element-wise.
// Used by element-wise operations whose derivative depends on the forward
// values.
func mapGrad(outputGrad, input, output *tensor.RawTensor, fn func(g, x, y float32) float32) *tensor.RawTensor {
	result := tensor.MustRaw(input.Shape(), input.Device())
	out := result.AsFloat32()
	g := outputGrad.AsFloat32()
	x := input.AsFloat32()
	y := output.AsFloat32()
	for i := range out {
		out[i] = fn(g[i], x[i], y[i])
	}
	return result
}

// scalarOf returns the value of a 0-D (or single element) gradient.
func scalarOf(t *tensor.RawTensor) float32 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("expected scalar gradient, got shape %v", t.Shape()))
	}
	return t.AsFloat32()[0]
}
