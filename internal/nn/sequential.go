package nn

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input, creating a
// sequential pipeline of transformations.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewConv2D(1, 32, 3, 3, 1, 1, true, rng, backend),
//	    nn.NewLeakyReLU(0.2),
//	    nn.NewConv2D(32, 1, 3, 3, 1, 1, true, rng, backend),
//	)
//
//	output := model.Forward(input)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input

	for _, module := range s.modules {
		output = module.Forward(output)
	}

	return output
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter

	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}

	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// SetTraining switches every contained module.
func (s *Sequential) SetTraining(training bool) {
	for _, module := range s.modules {
		module.SetTraining(training)
	}
}

// StateDict returns a map of parameter names to raw tensors.
//
// Parameters are prefixed with their module index (e.g., "0.weight", "0.bias", "2.weight", etc.)
// to avoid name collisions.
func (s *Sequential) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)

	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}

	return stateDict
}

// LoadStateDict loads parameters saved by StateDict.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	known := make(map[string]bool, len(stateDict))

	for i, module := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		sub := make(map[string]*tensor.RawTensor)
		for name, raw := range stateDict {
			if rest, ok := strings.CutPrefix(name, prefix); ok {
				sub[rest] = raw
				known[name] = true
			}
		}
		if err := module.LoadStateDict(sub); err != nil {
			return errors.Wrapf(err, "module %d", i)
		}
	}

	return unexpectedKeys(stateDict, known)
}
