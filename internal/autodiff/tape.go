package autodiff

import (
	"github.com/born-ml/cyclegan/internal/autodiff/ops"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// One forward pass may serve several losses: Gradients can be called any
// number of times before Clear, each time for a different loss and parameter
// set.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	grads := tape.Gradients(loss, params, backend)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool            // Whether tape is currently recording
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64), // Pre-allocate for common case
		recording:  false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	clear(t.operations)
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients of output for every tensor on the tape.
//
// Algorithm:
//  1. Start with the output gradient (ones for a scalar loss)
//  2. Walk operations in reverse order
//  3. For each operation, compute input gradients using chain rule
//  4. Accumulate gradients when the same tensor is used multiple times
//
// Returns a map from RawTensor to its accumulated gradient.
func (t *GradientTape) Backward(output *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	return t.walk(output, nil, backend)
}

// Gradients computes ∂loss/∂w for every w in wrt, in order.
//
// Only operations that lie on a path from some w to loss are differentiated.
// Parameters that loss does not depend on receive a zero gradient.
func (t *GradientTape) Gradients(loss *tensor.RawTensor, wrt []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	relevant := make(map[*tensor.RawTensor]bool, len(wrt))
	for _, w := range wrt {
		relevant[w] = true
	}

	grads := t.walk(loss, relevant, backend)

	out := make([]*tensor.RawTensor, len(wrt))
	for i, w := range wrt {
		if g, ok := grads[w]; ok {
			out[i] = g
			continue
		}
		out[i] = tensor.MustRaw(w.Shape(), w.Device())
	}
	return out
}

// walk runs reverse-mode differentiation from output. When relevant is
// non-nil it is extended forward through the tape first, and only operations
// reachable from the seed tensors are differentiated.
func (t *GradientTape) walk(
	output *tensor.RawTensor,
	relevant map[*tensor.RawTensor]bool,
	backend tensor.Backend,
) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads
	}

	// Stop recording during backward pass to prevent recording gradient operations
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	active := t.markActive(relevant)

	seed := tensor.MustRaw(output.Shape(), output.Device())
	seed.Fill(1)
	grads[output] = seed

	// Walk tape backwards
	for i := len(t.operations) - 1; i >= 0; i-- {
		if !active[i] {
			continue
		}
		op := t.operations[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}

		inputs := op.Inputs()
		needed := make([]bool, len(inputs))
		for j, in := range inputs {
			needed[j] = relevant == nil || relevant[in]
		}

		var inputGrads []*tensor.RawTensor
		if sel, ok := op.(ops.SelectiveOperation); ok {
			inputGrads = sel.BackwardSelected(outputGrad, backend, needed)
		} else {
			inputGrads = op.Backward(outputGrad, backend)
		}
		t.accumulateGrads(inputs, needed, inputGrads, grads, backend)
	}

	return grads
}

// markActive flags the operations that depend on a relevant tensor and adds
// their outputs to relevant. A nil relevant set marks every operation.
func (t *GradientTape) markActive(relevant map[*tensor.RawTensor]bool) []bool {
	active := make([]bool, len(t.operations))
	for i, op := range t.operations {
		if relevant == nil {
			active[i] = true
			continue
		}
		for _, in := range op.Inputs() {
			if relevant[in] {
				active[i] = true
				relevant[op.Output()] = true
				break
			}
		}
	}
	return active
}

// accumulateGrads accumulates gradients for each input tensor.
func (t *GradientTape) accumulateGrads(
	inputs []*tensor.RawTensor,
	needed []bool,
	inputGrads []*tensor.RawTensor,
	grads map[*tensor.RawTensor]*tensor.RawTensor,
	backend tensor.Backend,
) {
	for j, input := range inputs {
		if j >= len(inputGrads) {
			break
		}
		inputGrad := inputGrads[j]
		if inputGrad == nil || !needed[j] {
			continue
		}
		if existing, ok := grads[input]; ok {
			grads[input] = backend.Add(existing, inputGrad)
		} else {
			grads[input] = inputGrad
		}
	}
}
