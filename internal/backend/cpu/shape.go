package cpu

import (
	"fmt"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Reshape returns a view of t with a new shape (zero-copy).
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}

	view, err := t.View(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose permutes the dimensions of t. With no axes the order is reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := tensor.MustRaw(newShape, cpu.device)
	transposeData(result.AsFloat32(), t.AsFloat32(), newShape, t.Strides(), axes)
	return result
}

// transposeData walks the output in row-major order and reads the source
// through the permuted strides.
func transposeData(dst, src []float32, outShape tensor.Shape, srcStrides, axes []int) {
	ndim := len(outShape)
	if ndim == 0 {
		copy(dst, src)
		return
	}

	strides := make([]int, ndim)
	for i, ax := range axes {
		strides[i] = srcStrides[ax]
	}

	index := make([]int, ndim)
	off := 0
	for i := range dst {
		dst[i] = src[off]
		for d := ndim - 1; d >= 0; d-- {
			index[d]++
			off += strides[d]
			if index[d] < outShape[d] {
				break
			}
			off -= strides[d] * index[d]
			index[d] = 0
		}
	}
}
