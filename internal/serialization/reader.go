package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// BornReader reads state dictionaries from .born streams.
//
// The whole data section is loaded and checksummed up front, so a reader
// that was constructed successfully always returns intact tensors.
type BornReader struct {
	header Header
	flags  uint32
	data   []byte
}

// NewBornReader opens and fully validates a .born file.
func NewBornReader(path string) (*BornReader, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	r, err := NewStreamReader(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return r, nil
}

// NewStreamReader parses a .born stream.
func NewStreamReader(src io.Reader) (*BornReader, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(src, fixed); err != nil {
		return nil, errors.Wrap(err, "failed to read fixed header")
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}

	r := &BornReader{flags: binary.LittleEndian.Uint32(fixed[8:12])}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var stored [32]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(src, headerJSON); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return nil, errors.Wrap(err, "failed to parse header JSON")
	}
	//nolint:gosec // G115: bounded by MaxHeaderSize
	padding := alignedDataOffset(int64(headerSize)) - FixedHeaderSize - int64(headerSize)
	if _, err := io.CopyN(io.Discard, src, padding); err != nil {
		return nil, errors.Wrap(err, "failed to skip padding")
	}

	//nolint:gosec // G115: validated against header offsets below
	if err := ValidateHeader(&r.header, int64(dataSize)); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	r.data = make([]byte, dataSize)
	if _, err := io.ReadFull(src, r.data); err != nil {
		return nil, errors.Wrap(err, "failed to read tensor data")
	}
	if err := ValidateChecksum(ComputeChecksum(r.data), stored); err != nil {
		return nil, err
	}
	return r, nil
}

// Header returns the parsed JSON header.
func (r *BornReader) Header() Header {
	return r.header
}

// Metadata returns the custom metadata map.
func (r *BornReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns tensor names in file order.
func (r *BornReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// ReadTensor decodes a single tensor on device.
func (r *BornReader) ReadTensor(name string, device tensor.Device) (*tensor.RawTensor, error) {
	for _, meta := range r.header.Tensors {
		if meta.Name == name {
			return tensor.RawFromBytes(r.data[meta.Offset:meta.Offset+meta.Size], tensor.Shape(meta.Shape), device)
		}
	}
	return nil, errors.Errorf("tensor %q not found", name)
}

// ReadStateDict decodes every tensor on device.
func (r *BornReader) ReadStateDict(device tensor.Device) (map[string]*tensor.RawTensor, error) {
	out := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := tensor.RawFromBytes(r.data[meta.Offset:meta.Offset+meta.Size], tensor.Shape(meta.Shape), device)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %q", meta.Name)
		}
		out[meta.Name] = raw
	}
	return out, nil
}

// Load reads the state dict stored at path.
func Load(path string, device tensor.Device) (map[string]*tensor.RawTensor, Header, error) {
	r, err := NewBornReader(path)
	if err != nil {
		return nil, Header{}, err
	}
	state, err := r.ReadStateDict(device)
	if err != nil {
		return nil, Header{}, err
	}
	return state, r.Header(), nil
}
