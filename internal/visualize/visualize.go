// Package visualize renders (real, noisy, generated) image triplets, either
// as a PNG grid on disk or as a text preview.
package visualize

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// MaxSavedImages caps the rows written by SaveImages.
const MaxSavedImages = 16

// gap is the spacing, in pixels, between grid cells.
const gap = 2

// shades maps brightness to characters, dark to bright.
const shades = " .:-=+*#%@"

// FileName returns the name SaveImages uses for an epoch and batch tag.
func FileName(epochTag, batchTag string) string {
	return fmt.Sprintf("epoch_%s_batch_%s.png", epochTag, batchTag)
}

// SaveImages writes a PNG with one row per image and the real, noisy and
// generated versions side by side, to dir/FileName(epochTag, batchTag).
// At most MaxSavedImages rows are written. Returns the file path.
func SaveImages(real, noisy, generated *tensor.RawTensor, epochTag, batchTag, dir string) (string, error) {
	n, h, w, c, err := checkTriplet(real, noisy, generated)
	if err != nil {
		return "", err
	}
	n = min(n, MaxSavedImages)

	cols := []*tensor.RawTensor{real, noisy, generated}
	grid := image.NewNRGBA(image.Rect(0, 0, len(cols)*(w+gap)-gap, n*(h+gap)-gap))
	for i := range n {
		for j, src := range cols {
			drawImage(grid, src, i, j*(w+gap), i*(h+gap), h, w, c)
		}
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrap(err, "create image dir")
	}
	path := filepath.Join(dir, FileName(epochTag, batchTag))
	//nolint:gosec // G304: output location is chosen by the user
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	if err := png.Encode(f, grid); err != nil {
		_ = f.Close()
		return "", errors.Wrap(err, "encode png")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close image file")
	}
	return path, nil
}

// PlotImages prints the first n triplets to w as text, one row of
// (real | noisy | generated) per image. Multi-channel images are shown by
// their mean intensity.
func PlotImages(w io.Writer, real, noisy, generated *tensor.RawTensor, n int) error {
	count, h, width, c, err := checkTriplet(real, noisy, generated)
	if err != nil {
		return err
	}
	n = min(n, count)

	bw := bufio.NewWriter(w)
	labels := make([]string, 0, 3)
	for _, l := range []string{"real", "noisy", "generated"} {
		labels = append(labels, fmt.Sprintf("%-*.*s", width, width, l))
	}
	_, _ = bw.WriteString(strings.TrimRight(strings.Join(labels, " | "), " ") + "\n")
	for i := range n {
		for y := range h {
			for j, src := range []*tensor.RawTensor{real, noisy, generated} {
				if j > 0 {
					_, _ = bw.WriteString(" | ")
				}
				for x := range width {
					_ = bw.WriteByte(shade(pixelMean(src, i, y, x, h, width, c)))
				}
			}
			_ = bw.WriteByte('\n')
		}
		_ = bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "plot images")
}

func checkTriplet(real, noisy, generated *tensor.RawTensor) (n, h, w, c int, err error) {
	if real == nil || noisy == nil || generated == nil {
		return 0, 0, 0, 0, errors.New("visualize: nil images")
	}
	s := real.Shape()
	if len(s) != 4 {
		return 0, 0, 0, 0, errors.Errorf("visualize: images must be [N, H, W, C], got %v", s)
	}
	if !s.Equal(noisy.Shape()) || !s.Equal(generated.Shape()) {
		return 0, 0, 0, 0, errors.Errorf("visualize: shapes %v, %v, %v differ", s, noisy.Shape(), generated.Shape())
	}
	return s[0], s[1], s[2], s[3], nil
}

func drawImage(dst *image.NRGBA, src *tensor.RawTensor, i, ox, oy, h, w, c int) {
	data := src.AsFloat32()
	base := i * h * w * c
	for y := range h {
		for x := range w {
			p := base + (y*w+x)*c
			if c >= 3 {
				dst.SetNRGBA(ox+x, oy+y, color.NRGBA{R: toByte(data[p]), G: toByte(data[p+1]), B: toByte(data[p+2]), A: 255})
				continue
			}
			v := toByte(data[p])
			dst.SetNRGBA(ox+x, oy+y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
}

func pixelMean(src *tensor.RawTensor, i, y, x, h, w, c int) float32 {
	data := src.AsFloat32()
	p := i*h*w*c + (y*w+x)*c
	var sum float32
	for ch := range c {
		sum += data[p+ch]
	}
	return sum / float32(c)
}

// toByte maps [-1, 1] to 0..255, clamping outliers.
func toByte(v float32) uint8 {
	switch {
	case v <= -1:
		return 0
	case v >= 1:
		return 255
	}
	return uint8((v + 1) * 127.5)
}

func shade(v float32) byte {
	idx := int(toByte(v)) * len(shades) / 256
	return shades[idx]
}
