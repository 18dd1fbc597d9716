// Package trainer runs CycleGAN training: epoch and batch iteration,
// periodic image snapshots and validation, per-epoch checkpoints and the
// final test pass.
package trainer

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/config"
	"github.com/born-ml/cyclegan/internal/cyclegan"
	"github.com/born-ml/cyclegan/internal/metrics"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Output sub-directories, relative to config.OutputDir.
const (
	TrainImagesDir = "train_images"
	ValImagesDir   = "val_images"
	TestImagesDir  = "test_images"
	HistoryDir     = "history"
)

// FinalTestTag tags images of the test pass.
const FinalTestTag = "final_test"

// RunOptions selects how a run starts.
type RunOptions struct {
	Resume     bool         // Load the checkpoint of StartEpoch first
	StartEpoch int          // Checkpoint to resume from
	Robotics   bool         // Train on robotics images with pixel removal
	Shape      tensor.Shape // [H, W, C]; nil uses the config image size

	Logger  *slog.Logger // nil uses slog.Default()
	Preview io.Writer    // Text previews when config.Plot is set; nil disables
}

// Result summarizes a finished run.
type Result struct {
	FirstEpoch int  // First epoch trained in this run
	Resumed    bool // Networks came from a checkpoint
	Train      metrics.History
	Val        metrics.History
	Test       cyclegan.LossRecord
}

// Run trains a CycleGAN as configured by cfg. It stops between batches
// when ctx is cancelled and returns the partial result with ctx's error.
func Run(ctx context.Context, cfg *config.Config, opts RunOptions) (*Result, error) {
	e, err := newEnv(cfg, opts)
	if err != nil {
		return nil, err
	}
	log := e.logger

	nets, first, err := e.networks(opts.Resume, opts.StartEpoch)
	if err != nil {
		return nil, err
	}
	gan, err := cyclegan.New(cfg.GAN(), nets, e.backend)
	if err != nil {
		return nil, err
	}

	sets, err := e.datasets()
	if err != nil {
		return nil, err
	}
	if err := e.showPairs(sets); err != nil {
		return nil, err
	}
	log.Info("dataset",
		"task", e.task,
		"train", sets.train.Clean().Shape(),
		"noisy_train", sets.train.Degraded().Shape(),
		"val", sets.val.Len(),
		"test", sets.test.Len(),
	)

	trainBatches, err := sets.train.Batches(cfg.BatchSize, e.device)
	if err != nil {
		return nil, err
	}
	valBatches, err := sets.val.Batches(cfg.BatchSize, e.device)
	if err != nil {
		return nil, err
	}

	res := &Result{FirstEpoch: first, Resumed: first > 0}
	trainDir := filepath.Join(cfg.OutputDir, TrainImagesDir)
	valDir := filepath.Join(cfg.OutputDir, ValImagesDir)

	log.Info("training started", "epochs", cfg.Epochs, "first_epoch", first+1, "batches", len(trainBatches))
	for epoch := first; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		mark := res.Train.Len()
		epochTag := strconv.Itoa(epoch)

		for b, batch := range trainBatches {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			rec, err := gan.TrainStep(batch.Clean, batch.Degraded)
			if err != nil {
				return res, errors.Wrapf(err, "epoch %d batch %d", epoch+1, b)
			}
			res.Train.Append(rec)
			logProgress(log, cfg.LogEvery, "train", b, len(trainBatches), append([]any{"epoch", epoch + 1}, lossAttrs(rec)...)...)

			if b%cfg.SaveEveryTrain == 0 {
				if err := snapshot(gan, batch.Clean, batch.Degraded, epochTag, strconv.Itoa(b), trainDir); err != nil {
					return res, err
				}
			}
			if b%cfg.ValidationEvery == 0 && b != 0 {
				avg, err := evaluate(ctx, gan, valBatches, evalOptions{
					tag:       epochTag + "_" + strconv.Itoa(b),
					dir:       valDir,
					saveEvery: cfg.SaveEveryTest,
					logger:    log,
					logEvery:  cfg.LogEvery,
					phase:     "validation",
				})
				if err != nil {
					return res, errors.Wrap(err, "validation")
				}
				res.Val.Append(avg)
				log.Info("validation", append([]any{"epoch", epoch + 1, "batch", b}, lossAttrs(avg)...)...)
			}
		}

		if err := cyclegan.SaveModels(e.mgr, nets, epoch); err != nil {
			return res, err
		}
		log.Info("epoch complete", append([]any{
			"epoch", epoch + 1,
			"elapsed", time.Since(start).Round(time.Millisecond),
			"checkpoint", e.mgr.Path(epoch),
		}, lossAttrs(res.Train.MeanSince(mark))...)...)
	}

	test, err := e.testPass(ctx, gan, sets)
	if err != nil {
		return res, err
	}
	res.Test = test

	histDir := filepath.Join(cfg.OutputDir, HistoryDir)
	if err := res.Train.WriteCSV(filepath.Join(histDir, "train.csv")); err != nil {
		return res, err
	}
	if err := res.Val.WriteCSV(filepath.Join(histDir, "val.csv")); err != nil {
		return res, err
	}
	log.Info("training complete")
	return res, nil
}

// LoadAndTest loads the checkpoint of epoch and runs only the test pass.
// Unlike Run it fails when the checkpoint cannot be loaded.
func LoadAndTest(ctx context.Context, cfg *config.Config, epoch int, opts RunOptions) (cyclegan.LossRecord, error) {
	e, err := newEnv(cfg, opts)
	if err != nil {
		return cyclegan.LossRecord{}, err
	}
	nets, err := cyclegan.LoadModels(e.mgr, epoch, e.arch, e.backend)
	if err != nil {
		return cyclegan.LossRecord{}, errors.Wrapf(err, "load checkpoint %d", epoch)
	}
	gan, err := cyclegan.New(cfg.GAN(), nets, e.backend)
	if err != nil {
		return cyclegan.LossRecord{}, err
	}
	sets, err := e.datasets()
	if err != nil {
		return cyclegan.LossRecord{}, err
	}
	return e.testPass(ctx, gan, sets)
}
