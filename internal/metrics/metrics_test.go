package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/cyclegan"
	"github.com/born-ml/cyclegan/internal/metrics"
)

func TestHistory(t *testing.T) {
	var h metrics.History
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, cyclegan.LossRecord{}, h.Mean())

	h.Append(cyclegan.LossRecord{G: 1, F: 2, DX: 3, DY: 4})
	h.Append(cyclegan.LossRecord{G: 3, F: 4, DX: 5, DY: 6})
	h.Append(cyclegan.LossRecord{G: 5, F: 6, DX: 7, DY: 8})

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, cyclegan.LossRecord{G: 3, F: 4, DX: 5, DY: 6}, h.At(1))
	assert.Equal(t, cyclegan.LossRecord{G: 3, F: 4, DX: 5, DY: 6}, h.Mean())
	assert.Equal(t, cyclegan.LossRecord{G: 4, F: 5, DX: 6, DY: 7}, h.MeanSince(1))
	assert.Equal(t, cyclegan.LossRecord{}, h.MeanSince(3))
}

func TestHistory_WriteCSV(t *testing.T) {
	var h metrics.History
	h.Append(cyclegan.LossRecord{G: 0.5, F: 1, DX: 0.25, DY: 2})

	path := filepath.Join(t.TempDir(), "history", "train.csv")
	require.NoError(t, h.WriteCSV(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "step,G_loss,F_loss,D_X_loss,D_Y_loss", lines[0])
	assert.Equal(t, "0,0.5,1,0.25,2", lines[1])
}
