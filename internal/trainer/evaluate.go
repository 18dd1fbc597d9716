package trainer

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/born-ml/cyclegan/internal/cyclegan"
	"github.com/born-ml/cyclegan/internal/data"
	"github.com/born-ml/cyclegan/internal/metrics"
	"github.com/born-ml/cyclegan/internal/tensor"
	"github.com/born-ml/cyclegan/internal/visualize"
)

type evalOptions struct {
	tag       string
	dir       string // Snapshot directory; "" disables snapshots
	saveEvery int
	plot      io.Writer // Text preview per batch; nil disables
	numImages int

	logger   *slog.Logger // Progress lines; nil disables
	logEvery int
	phase    string
}

// evaluate runs TestStep over batches and averages the records.
func evaluate(ctx context.Context, gan *cyclegan.CycleGAN, batches []data.Batch, o evalOptions) (cyclegan.LossRecord, error) {
	var h metrics.History
	for b, batch := range batches {
		if err := ctx.Err(); err != nil {
			return cyclegan.LossRecord{}, err
		}
		rec, err := gan.TestStep(batch.Clean, batch.Degraded)
		if err != nil {
			return cyclegan.LossRecord{}, err
		}
		h.Append(rec)
		logProgress(o.logger, o.logEvery, o.phase, b, len(batches))

		if o.dir != "" && o.saveEvery > 0 && b%o.saveEvery == 0 {
			if err := snapshot(gan, batch.Clean, batch.Degraded, o.tag, strconv.Itoa(b), o.dir); err != nil {
				return cyclegan.LossRecord{}, err
			}
		}
		if o.plot != nil && o.numImages > 0 {
			generated := gan.Translate(batch.Degraded)
			if err := visualize.PlotImages(o.plot, batch.Clean.Raw(), batch.Degraded.Raw(), generated.Raw(), o.numImages); err != nil {
				return cyclegan.LossRecord{}, err
			}
		}
	}
	return h.Mean(), nil
}

// testPass evaluates the test split, saving images every SaveEveryTest batches.
func (e *env) testPass(ctx context.Context, gan *cyclegan.CycleGAN, sets *datasets) (cyclegan.LossRecord, error) {
	batches, err := sets.test.Batches(e.cfg.BatchSize, e.device)
	if err != nil {
		return cyclegan.LossRecord{}, err
	}
	o := evalOptions{
		tag:       FinalTestTag,
		dir:       filepath.Join(e.cfg.OutputDir, TestImagesDir),
		saveEvery: e.cfg.SaveEveryTest,
		logger:    e.logger,
		logEvery:  e.cfg.LogEvery,
		phase:     "test",
	}
	if e.cfg.Plot {
		o.plot, o.numImages = e.preview, e.cfg.NumImages
	}
	avg, err := evaluate(ctx, gan, batches, o)
	if err != nil {
		return cyclegan.LossRecord{}, err
	}
	e.logger.Info("test", lossAttrs(avg)...)
	return avg, nil
}

// snapshot saves (clean, degraded, F(degraded)) for one batch.
func snapshot(gan *cyclegan.CycleGAN, clean, degraded *tensor.Tensor, epochTag, batchTag, dir string) error {
	generated := gan.Translate(degraded)
	_, err := visualize.SaveImages(clean.Raw(), degraded.Raw(), generated.Raw(), epochTag, batchTag, dir)
	return err
}
