package nn

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// ErrStateDict is returned when a state dict does not match a module.
var ErrStateDict = errors.New("state dict mismatch")

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that require gradient computation during training.
// They typically represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Load copies src into the parameter. Shapes must match exactly.
func (p *Parameter) Load(src *tensor.RawTensor) error {
	if src == nil {
		return errors.Wrapf(ErrStateDict, "missing tensor for %q", p.name)
	}
	if !p.tensor.Shape().Equal(src.Shape()) {
		return errors.Wrapf(ErrStateDict, "%q: shape %v, expected %v", p.name, src.Shape(), p.tensor.Shape())
	}
	return p.tensor.Raw().CopyFrom(src)
}

// Tensors returns the tensors of params, in order.
func Tensors(params []*Parameter) []*tensor.Tensor {
	out := make([]*tensor.Tensor, len(params))
	for i, p := range params {
		out[i] = p.tensor
	}
	return out
}

// unexpectedKeys reports keys of stateDict not present in known.
func unexpectedKeys(stateDict map[string]*tensor.RawTensor, known map[string]bool) error {
	var extra []string
	for k := range stateDict {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return errors.Wrapf(ErrStateDict, "unexpected keys %v", extra)
}
