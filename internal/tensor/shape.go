package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if they are equal or one of them is 1
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// BroadcastStrides returns strides that read a tensor of shape src as if it
// had shape dst. Broadcast dimensions get stride 0.
//
// src must be broadcast-compatible with dst (see BroadcastShapes).
func BroadcastStrides(src, dst Shape) []int {
	srcStrides := src.ComputeStrides()
	out := make([]int, len(dst))
	offset := len(dst) - len(src)
	for i := range dst {
		j := i - offset
		if j < 0 || src[j] == 1 {
			continue
		}
		out[i] = srcStrides[j]
	}
	return out
}

// BroadcastOffsets maps every flat index of a tensor with shape dst to the
// flat index of the element it reads from a tensor with shape src.
func BroadcastOffsets(src, dst Shape) []int {
	strides := BroadcastStrides(src, dst)
	n := dst.NumElements()
	offsets := make([]int, n)
	if len(dst) == 0 {
		return offsets
	}

	index := make([]int, len(dst))
	off := 0
	for i := 0; i < n; i++ {
		offsets[i] = off
		// Odometer increment, innermost dimension first.
		for d := len(dst) - 1; d >= 0; d-- {
			index[d]++
			off += strides[d]
			if index[d] < dst[d] {
				break
			}
			off -= strides[d] * index[d]
			index[d] = 0
		}
	}
	return offsets
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}
