package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 1024
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 || t.Offset+t.Size > dataSize {
			return &ValidationError{
				Kind:    ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d, data size %d", t.Offset, t.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Kind:    ErrOffsetOverlap,
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// ValidateTensorName rejects empty, oversized and path-like names.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Kind: ErrInvalidTensorName, Details: "empty name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Kind:    ErrInvalidTensorName,
			Tensor:  name[:32] + "...",
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.Contains(name, ".."), strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Kind: ErrInvalidTensorName, Tensor: name, Details: "contains a path element"}
	}
	return nil
}

// ValidateHeader checks tensor names, dtypes, shapes and offsets against the data section size.
func ValidateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Kind:    ErrOutOfBounds,
			Details: fmt.Sprintf("%d tensors, max %d", len(h.Tensors), MaxTensorCount),
		}
	}
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if t.DType != DTypeFloat32 {
			return &ValidationError{Kind: ErrUnsupportedDType, Tensor: t.Name, Details: t.DType}
		}
		elems := int64(1)
		for _, d := range t.Shape {
			if d <= 0 {
				return &ValidationError{Kind: ErrOutOfBounds, Tensor: t.Name, Details: fmt.Sprintf("bad shape %v", t.Shape)}
			}
			elems *= int64(d)
		}
		if elems*4 != t.Size {
			return &ValidationError{
				Kind:    ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", t.Shape, elems*4, t.Size),
			}
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}
