package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// BornWriter writes state dictionaries in .born format.
type BornWriter struct {
	w      io.Writer
	closer io.Closer
	closed bool
}

// NewBornWriter creates a new .born file writer.
func NewBornWriter(path string) (*BornWriter, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return &BornWriter{w: file, closer: file}, nil
}

// NewStreamWriter wraps an arbitrary io.Writer. Close does not close w.
func NewStreamWriter(w io.Writer) *BornWriter {
	return &BornWriter{w: w}
}

// WriteStateDict writes a state dictionary to the .born file.
//
// Tensors are laid out in sorted key order so that equal state dicts
// produce equal data sections.
func (w *BornWriter) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	if w.closed {
		return errors.New("writer is closed")
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     modelType,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(names)),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var data bytes.Buffer
	for _, name := range names {
		raw := stateDict[name]
		if raw == nil {
			return errors.Errorf("tensor %q is nil", name)
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat32,
			Shape:  []int(raw.Shape().Clone()),
			Offset: int64(data.Len()),
			Size:   int64(raw.ByteSize()),
		})
		data.Write(raw.Bytes())
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}

	checksum := ComputeChecksum(data.Bytes())

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))
	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.w.Write(fixed); err != nil {
		return errors.Wrap(err, "failed to write fixed header")
	}
	if _, err := w.w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	headerSize := int64(len(headerJSON))
	if padding := alignedDataOffset(headerSize) - FixedHeaderSize - headerSize; padding > 0 {
		if _, err := w.w.Write(make([]byte, padding)); err != nil {
			return errors.Wrap(err, "failed to write padding")
		}
	}
	if _, err := w.w.Write(data.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write tensor data")
	}
	return nil
}

// Close closes the underlying file, if any.
func (w *BornWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer == nil {
		return nil
	}
	if err := w.closer.Close(); err != nil {
		return errors.Wrap(err, "failed to close file")
	}
	return nil
}

// Save writes stateDict to path in one call.
func Save(path string, stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	w, err := NewBornWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteStateDict(stateDict, modelType, metadata); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
