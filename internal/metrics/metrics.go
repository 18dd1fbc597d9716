// Package metrics accumulates per-step loss records.
package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/cyclegan/internal/cyclegan"
)

// Column names, in LossRecord.Values order.
var columns = [4]string{"G_loss", "F_loss", "D_X_loss", "D_Y_loss"}

// History is an append-only list of loss records. The zero value is ready
// to use.
type History struct {
	series [4][]float64
}

// Append records one step.
func (h *History) Append(r cyclegan.LossRecord) {
	for i, v := range r.Values() {
		h.series[i] = append(h.series[i], float64(v))
	}
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.series[0])
}

// At returns record i.
func (h *History) At(i int) cyclegan.LossRecord {
	return cyclegan.LossRecord{
		G:  float32(h.series[0][i]),
		F:  float32(h.series[1][i]),
		DX: float32(h.series[2][i]),
		DY: float32(h.series[3][i]),
	}
}

// Mean averages every record. An empty history averages to zero.
func (h *History) Mean() cyclegan.LossRecord {
	return h.MeanSince(0)
}

// MeanSince averages records from index start on.
func (h *History) MeanSince(start int) cyclegan.LossRecord {
	start = max(start, 0)
	if start >= h.Len() {
		return cyclegan.LossRecord{}
	}
	var m [4]float32
	for i := range h.series {
		m[i] = float32(stat.Mean(h.series[i][start:], nil))
	}
	return cyclegan.LossRecord{G: m[0], F: m[1], DX: m[2], DY: m[3]}
}

// WriteCSV writes the history to path with a header row and a leading
// step column.
func (h *History) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "create history dir")
	}
	//nolint:gosec // G304: output location is chosen by the user
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create history file")
	}
	w := csv.NewWriter(f)
	_ = w.Write(append([]string{"step"}, columns[:]...))
	for i := range h.Len() {
		row := []string{strconv.Itoa(i)}
		for _, s := range h.series {
			row = append(row, strconv.FormatFloat(s[i], 'g', -1, 32))
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write history")
	}
	return errors.Wrap(f.Close(), "close history file")
}
