package cyclegan

import (
	"math/rand"
	"strconv"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/checkpoint"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// SaveModels stores the weights of all four networks as the checkpoint for epoch.
func SaveModels(mgr *checkpoint.Manager, nets *Networks, epoch int) error {
	states := make(map[string]checkpoint.StateDict, 4)
	for name, net := range nets.ByName() {
		states[name] = net.StateDict()
	}
	meta := map[string]string{
		"height":   strconv.Itoa(nets.Arch.Height),
		"width":    strconv.Itoa(nets.Arch.Width),
		"channels": strconv.Itoa(nets.Arch.Channels),
		"filters":  strconv.Itoa(nets.Arch.Filters),
	}
	if err := mgr.Save(epoch, states, meta); err != nil {
		return errors.Wrapf(err, "save models for epoch %d", epoch)
	}
	return nil
}

// LoadModels rebuilds the four networks for arch on backend and fills them
// with the weights stored for epoch. Fails if the checkpoint is absent,
// corrupt or was written for a different architecture.
func LoadModels(mgr *checkpoint.Manager, epoch int, arch Arch, backend tensor.Backend) (*Networks, error) {
	states, _, err := mgr.Load(epoch)
	if err != nil {
		return nil, err
	}

	// Initial values are overwritten below.
	nets, err := NewNetworks(arch, rand.New(rand.NewSource(0)), backend)
	if err != nil {
		return nil, err
	}
	for name, net := range nets.ByName() {
		state, ok := states[name]
		if !ok {
			return nil, errors.Errorf("checkpoint epoch %d has no %s", epoch, name)
		}
		if err := net.LoadStateDict(state); err != nil {
			return nil, errors.Wrapf(err, "load %s", name)
		}
	}
	return nets, nil
}
