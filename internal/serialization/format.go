// Package serialization reads and writes network weights in the .born format.
//
// File layout (all integers little-endian):
//
//	0x00  magic "BORN"
//	0x04  format version (uint32)
//	0x08  flags (uint32)
//	0x0C  reserved
//	0x10  JSON header size (uint64)
//	0x18  tensor data size (uint64)
//	0x20  SHA-256 of the tensor data (32 bytes)
//	0x40  JSON header, zero padded to a 64-byte boundary
//	      tensor data, float32 little-endian, in header order
package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 2
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Size of the binary prefix before the JSON header
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// DTypeFloat32 is the only element type stored by this package.
const DTypeFloat32 = "float32"

// Flags for the .born format.
const (
	FlagHasMetadata uint32 = 1 << 2 // custom metadata included
)

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"` // e.g. "generator", "discriminator"
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata"`
}

// TensorMeta describes a tensor in the .born file.
type TensorMeta struct {
	Name   string `json:"name"`   // State dict key (e.g. "0.weight")
	DType  string `json:"dtype"`  // Always "float32"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

func alignedDataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
