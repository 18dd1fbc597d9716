package trainer

import (
	"io"
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/autodiff"
	"github.com/born-ml/cyclegan/internal/checkpoint"
	"github.com/born-ml/cyclegan/internal/config"
	"github.com/born-ml/cyclegan/internal/cyclegan"
	"github.com/born-ml/cyclegan/internal/data"
	"github.com/born-ml/cyclegan/internal/device"
	"github.com/born-ml/cyclegan/internal/tensor"
	"github.com/born-ml/cyclegan/internal/visualize"
)

// env is everything a run or a test pass shares.
type env struct {
	cfg     *config.Config
	task    string
	arch    cyclegan.Arch
	logger  *slog.Logger
	preview io.Writer
	device  tensor.Backend
	backend *autodiff.AutodiffBackend
	mgr     *checkpoint.Manager
	rng     *rand.Rand
}

func newEnv(cfg *config.Config, opts RunOptions) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	task := cfg.Task
	if opts.Robotics {
		task = config.TaskRobotics
	}
	shape := cfg.ImageShape()
	if opts.Shape != nil {
		shape = opts.Shape.Clone()
	}
	if len(shape) != 3 {
		return nil, errors.Errorf("image shape must be [H, W, C], got %v", shape)
	}
	arch := cfg.Arch(shape)
	if err := arch.Validate(); err != nil {
		return nil, err
	}

	sel, err := device.Resolve(cfg.Device, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("device", "requested", sel.Requested, "backend", sel.Backend.Name())

	return &env{
		cfg:     cfg,
		task:    task,
		arch:    arch,
		logger:  logger,
		preview: opts.Preview,
		device:  sel.Backend,
		backend: autodiff.New(sel.Backend),
		mgr:     checkpoint.NewManager(cfg.CheckpointDir, sel.Backend.Device()),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// networks returns the networks to train and the first epoch to run. With
// resume set it loads the checkpoint of startEpoch and continues after it;
// any failure there is logged and training starts from scratch.
func (e *env) networks(resume bool, startEpoch int) (*cyclegan.Networks, int, error) {
	if resume {
		nets, err := cyclegan.LoadModels(e.mgr, startEpoch, e.arch, e.backend)
		if err == nil {
			e.logger.Info("resumed from checkpoint", "epoch", startEpoch, "path", e.mgr.Path(startEpoch))
			return nets, startEpoch + 1, nil
		}
		e.logger.Warn("could not resume, starting from scratch", "epoch", startEpoch, "err", err)
	}
	nets, err := cyclegan.NewNetworks(e.arch, e.rng, e.backend)
	if err != nil {
		return nil, 0, err
	}
	return nets, 0, nil
}

// datasets holds paired clean/degraded images per split.
type datasets struct {
	train, val, test *data.Pairs
}

func (e *env) datasets() (*datasets, error) {
	var (
		splits *data.Splits
		err    error
	)
	cfg := e.cfg
	switch e.task {
	case config.TaskMNIST:
		splits, err = data.LoadMNIST(cfg.DataDir, cfg.TrainImages, cfg.ValImages, cfg.TestImages)
	case config.TaskRobotics:
		splits, err = data.LoadRobotics(cfg.DataDir, e.arch.Shape())
	case config.TaskSynthetic:
		splits, err = data.Synthetic(cfg.TrainImages, cfg.ValImages, cfg.TestImages, e.arch.Shape(), cfg.Seed)
	default:
		err = errors.Errorf("unknown task %q", e.task)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s data", e.task)
	}

	pair := func(name string, clean *tensor.RawTensor) (*data.Pairs, error) {
		if got := clean.Shape()[1:]; !got.Equal(e.arch.Shape()) {
			return nil, errors.Wrapf(cyclegan.ErrShapeMismatch, "%s images %v, networks expect %v", name, got, e.arch.Shape())
		}
		p, err := data.NewPairs(clean, e.degrade(clean))
		return p, errors.Wrapf(err, "pair %s images", name)
	}
	sets := &datasets{}
	if sets.train, err = pair("train", splits.Train); err != nil {
		return nil, err
	}
	if sets.val, err = pair("val", splits.Val); err != nil {
		return nil, err
	}
	if sets.test, err = pair("test", splits.Test); err != nil {
		return nil, err
	}
	return sets, nil
}

// degrade applies the task's corruption: pixel removal for robotics,
// salt-and-pepper noise otherwise.
func (e *env) degrade(images *tensor.RawTensor) *tensor.RawTensor {
	if e.task == config.TaskRobotics {
		return data.RemovePixels(images, e.cfg.RemoveFraction, e.rng)
	}
	return data.AddSaltPepperNoise(images, e.cfg.NoiseAmount, e.rng)
}

// showPairs prints the first images of every split as (clean, noisy, clean).
func (e *env) showPairs(sets *datasets) error {
	if !e.cfg.Plot || e.preview == nil || e.cfg.NumImages == 0 {
		return nil
	}
	for _, p := range []*data.Pairs{sets.train, sets.val, sets.test} {
		clean, noisy, err := p.Head(e.cfg.NumImages)
		if err != nil {
			return err
		}
		if err := visualize.PlotImages(e.preview, clean, noisy, clean, e.cfg.NumImages); err != nil {
			return err
		}
	}
	return nil
}

func lossAttrs(r cyclegan.LossRecord) []any {
	return []any{"G_loss", r.G, "F_loss", r.F, "D_X_loss", r.DX, "D_Y_loss", r.DY}
}

// logProgress reports batch b of total at info level every `every` batches
// and after the last one.
func logProgress(log *slog.Logger, every int, phase string, b, total int, attrs ...any) {
	if log == nil || every <= 0 {
		return
	}
	if (b+1)%every != 0 && b+1 != total {
		return
	}
	head := []any{"phase", phase, "batch", strconv.Itoa(b+1) + "/" + strconv.Itoa(total)}
	log.Info("progress", append(head, attrs...)...)
}
