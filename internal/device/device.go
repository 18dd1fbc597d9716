// Package device selects the compute backend for a run.
package device

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/backend/cpu"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Names accepted by Resolve besides the tensor.Device names.
const (
	Auto = "auto"
	GPU  = "gpu"
)

// Selection is the outcome of Resolve.
type Selection struct {
	Requested string
	Backend   tensor.Backend
	Fallback  bool // Accelerator requested, CPU returned
}

// Resolve returns the backend for name: auto, cpu, gpu or a tensor.Device
// name such as CUDA or WebGPU. Only the CPU backend is built in, so
// accelerator requests fall back to it with a warning on logger.
func Resolve(name string, logger *slog.Logger) (Selection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	requested := strings.ToLower(strings.TrimSpace(name))
	if requested == "" {
		requested = Auto
	}

	sel := Selection{Requested: requested, Backend: cpu.New()}
	switch requested {
	case Auto:
		logger.Debug("device resolved", "requested", requested, "device", sel.Backend.Device())
		return sel, nil
	case GPU:
	default:
		d, err := tensor.ParseDevice(requested)
		if err != nil {
			return Selection{}, errors.Wrap(err, "resolve device")
		}
		if d == tensor.CPU {
			return sel, nil
		}
	}

	sel.Fallback = true
	logger.Warn("no GPU backend built in, using CPU", "requested", requested)
	return sel, nil
}
