package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// ParseDevice parses a device name as printed by Device.String (case-insensitive).
func ParseDevice(name string) (Device, error) {
	for _, d := range []Device{CPU, CUDA, Metal, WebGPU} {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return CPU, fmt.Errorf("unknown device %q", name)
}

// RawTensor is the low-level tensor representation: a row-major float32
// buffer plus its shape. Backends and autodiff operations work on RawTensors;
// the typed Tensor wrapper adds the high-level API.
//
// Gradients are keyed by *RawTensor identity, so a RawTensor must not be
// copied by value.
type RawTensor struct {
	data   []float32
	shape  Shape
	stride []int
	device Device
}

// NewRaw creates a new zero-filled RawTensor with the given shape.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		device: device,
	}, nil
}

// MustRaw is NewRaw for shapes that are known to be valid. It panics otherwise.
func MustRaw(shape Shape, device Device) *RawTensor {
	raw, err := NewRaw(shape, device)
	if err != nil {
		panic(err)
	}
	return raw
}

// RawFromSlice creates a RawTensor holding a copy of data.
func RawFromSlice(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, device)
	if err != nil {
		return nil, err
	}
	copy(raw.data, data)
	return raw, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return 4 * len(r.data)
}

// AsFloat32 returns the underlying buffer.
//
// WARNING: Modifications to the returned slice modify the tensor.
func (r *RawTensor) AsFloat32() []float32 {
	return r.data
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float32, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		device: r.device,
	}
}

// View returns a RawTensor with a new shape that shares this tensor's buffer.
// The element count must not change.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v as %v: element count %d != %d",
			r.shape, shape, r.NumElements(), shape.NumElements())
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		device: r.device,
	}, nil
}

// CopyFrom overwrites this tensor's elements with src's. Shapes must match.
func (r *RawTensor) CopyFrom(src *RawTensor) error {
	if !r.shape.Equal(src.shape) {
		return fmt.Errorf("copy: shape mismatch %v vs %v", r.shape, src.shape)
	}
	copy(r.data, src.data)
	return nil
}

// Fill sets every element to value.
func (r *RawTensor) Fill(value float32) {
	for i := range r.data {
		r.data[i] = value
	}
}

// Bytes encodes the elements as little-endian IEEE-754 float32 values.
func (r *RawTensor) Bytes() []byte {
	out := make([]byte, 4*len(r.data))
	for i, v := range r.data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// RawFromBytes decodes little-endian float32 values written by Bytes.
func RawFromBytes(b []byte, shape Shape, device Device) (*RawTensor, error) {
	if len(b) != 4*shape.NumElements() {
		return nil, fmt.Errorf("shape %v requires %d bytes, but got %d", shape, 4*shape.NumElements(), len(b))
	}
	raw, err := NewRaw(shape, device)
	if err != nil {
		return nil, err
	}
	for i := range raw.data {
		raw.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return raw, nil
}
