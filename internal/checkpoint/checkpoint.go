// Package checkpoint stores epoch-indexed snapshots of several networks' weights.
//
// Each snapshot is a directory:
//
//	<dir>/epoch_<e>/
//	    manifest.pb          protobuf-encoded google.protobuf.Struct
//	    <network>.born       one weight file per network
//
// Snapshots are complete (no deltas) and written to a temporary directory
// that is renamed into place, so a crashed save never leaves a partial
// epoch behind.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/born-ml/cyclegan/internal/serialization"
	"github.com/born-ml/cyclegan/internal/tensor"
)

const (
	manifestFile    = "manifest.pb"
	weightExt       = ".born"
	epochDirPrefix  = "epoch_"
	manifestVersion = 1
)

// ErrNotFound is returned when no snapshot exists for the requested epoch.
var ErrNotFound = errors.New("checkpoint not found")

// StateDict maps parameter names to weights.
type StateDict = map[string]*tensor.RawTensor

// Manifest describes a stored snapshot.
type Manifest struct {
	Epoch     int
	Networks  []string
	CreatedAt time.Time
	Metadata  map[string]string
}

// Manager saves and loads snapshots under a root directory.
type Manager struct {
	dir    string
	device tensor.Device
}

// NewManager creates a manager rooted at dir. Loaded tensors are placed on device.
func NewManager(dir string, device tensor.Device) *Manager {
	return &Manager{dir: dir, device: device}
}

// Dir returns the root directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the directory holding the snapshot for epoch.
func (m *Manager) Path(epoch int) string {
	return filepath.Join(m.dir, epochDirPrefix+strconv.Itoa(epoch))
}

// Save writes a snapshot of nets tagged with epoch, replacing any previous
// snapshot of the same epoch.
func (m *Manager) Save(epoch int, nets map[string]StateDict, meta map[string]string) error {
	if epoch < 0 {
		return errors.Errorf("checkpoint: negative epoch %d", epoch)
	}
	if len(nets) == 0 {
		return errors.New("checkpoint: no networks to save")
	}

	names := make([]string, 0, len(nets))
	for name := range nets {
		if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return errors.Errorf("checkpoint: invalid network name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return errors.Wrap(err, "checkpoint: create root")
	}
	tmp, err := os.MkdirTemp(m.dir, ".tmp_"+epochDirPrefix)
	if err != nil {
		return errors.Wrap(err, "checkpoint: create temp dir")
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	for _, name := range names {
		path := filepath.Join(tmp, name+weightExt)
		if err := serialization.Save(path, nets[name], name, meta); err != nil {
			return errors.Wrapf(err, "checkpoint: save %s", name)
		}
	}

	manifest, err := encodeManifest(Manifest{
		Epoch:     epoch,
		Networks:  names,
		CreatedAt: time.Now().UTC(),
		Metadata:  meta,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tmp, manifestFile), manifest, 0o600); err != nil {
		return errors.Wrap(err, "checkpoint: write manifest")
	}

	final := m.Path(epoch)
	if err := os.RemoveAll(final); err != nil {
		return errors.Wrap(err, "checkpoint: replace previous snapshot")
	}
	if err := os.Rename(tmp, final); err != nil {
		return errors.Wrap(err, "checkpoint: commit")
	}
	return nil
}

// Load reads every network of the snapshot tagged with epoch.
// A missing snapshot yields an error wrapping ErrNotFound.
func (m *Manager) Load(epoch int) (map[string]StateDict, *Manifest, error) {
	dir := m.Path(epoch)
	raw, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(ErrNotFound, "epoch %d in %s", epoch, m.dir)
		}
		return nil, nil, errors.Wrap(err, "checkpoint: read manifest")
	}
	manifest, err := decodeManifest(raw)
	if err != nil {
		return nil, nil, err
	}
	if manifest.Epoch != epoch {
		return nil, nil, errors.Errorf("checkpoint: manifest in %s is tagged epoch %d", dir, manifest.Epoch)
	}

	nets := make(map[string]StateDict, len(manifest.Networks))
	for _, name := range manifest.Networks {
		state, _, err := serialization.Load(filepath.Join(dir, name+weightExt), m.device)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "checkpoint: load %s", name)
		}
		nets[name] = state
	}
	return nets, manifest, nil
}

// Exists reports whether a complete snapshot is stored for epoch.
func (m *Manager) Exists(epoch int) bool {
	_, err := os.Stat(filepath.Join(m.Path(epoch), manifestFile))
	return err == nil
}

// Epochs lists stored epochs in ascending order.
func (m *Manager) Epochs() ([]int, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "checkpoint: list")
	}
	var epochs []int
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), epochDirPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), epochDirPrefix))
		if err != nil || !m.Exists(n) {
			continue
		}
		epochs = append(epochs, n)
	}
	sort.Ints(epochs)
	return epochs, nil
}

// Latest returns the highest stored epoch, or ErrNotFound.
func (m *Manager) Latest() (int, error) {
	epochs, err := m.Epochs()
	if err != nil {
		return 0, err
	}
	if len(epochs) == 0 {
		return 0, errors.Wrapf(ErrNotFound, "no snapshots in %s", m.dir)
	}
	return epochs[len(epochs)-1], nil
}

func encodeManifest(man Manifest) ([]byte, error) {
	networks := make([]any, len(man.Networks))
	for i, n := range man.Networks {
		networks[i] = n
	}
	meta := make(map[string]any, len(man.Metadata))
	for k, v := range man.Metadata {
		meta[k] = v
	}
	s, err := structpb.NewStruct(map[string]any{
		"version":    manifestVersion,
		"epoch":      man.Epoch,
		"networks":   networks,
		"created_at": man.CreatedAt.Format(time.RFC3339Nano),
		"metadata":   meta,
	})
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint: build manifest")
	}
	b, err := proto.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint: marshal manifest")
	}
	return b, nil
}

func decodeManifest(b []byte) (*Manifest, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "checkpoint: unmarshal manifest")
	}
	fields := s.GetFields()

	if v := int(fields["version"].GetNumberValue()); v != manifestVersion {
		return nil, errors.Errorf("checkpoint: unsupported manifest version %d", v)
	}

	man := &Manifest{
		Epoch:    int(fields["epoch"].GetNumberValue()),
		Metadata: make(map[string]string),
	}
	for _, v := range fields["networks"].GetListValue().GetValues() {
		man.Networks = append(man.Networks, v.GetStringValue())
	}
	if len(man.Networks) == 0 {
		return nil, errors.New("checkpoint: manifest lists no networks")
	}
	if ts := fields["created_at"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, errors.Wrap(err, "checkpoint: created_at")
		}
		man.CreatedAt = t
	}
	for k, v := range fields["metadata"].GetStructValue().GetFields() {
		man.Metadata[k] = v.GetStringValue()
	}
	return man, nil
}

// String implements fmt.Stringer.
func (man *Manifest) String() string {
	return fmt.Sprintf("epoch %d: %s", man.Epoch, strings.Join(man.Networks, ", "))
}
