package data

import (
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Robotics split directories.
const (
	RoboticsTrainDir = "train"
	RoboticsValDir   = "val"
	RoboticsTestDir  = "test"
)

// LoadRobotics reads the robotics camera frames stored as PNG or JPEG files
// under dir/train, dir/val and dir/test. Every frame is resized to
// shape [H, W, C] (nearest neighbour) and converted to grayscale when C is 1.
func LoadRobotics(dir string, shape tensor.Shape) (*Splits, error) {
	if len(shape) != 3 || (shape[2] != 1 && shape[2] != 3) {
		return nil, errors.Errorf("robotics: shape must be [H, W, 1|3], got %v", shape)
	}
	var splits Splits
	for _, s := range []struct {
		name string
		dst  **tensor.RawTensor
	}{
		{RoboticsTrainDir, &splits.Train},
		{RoboticsValDir, &splits.Val},
		{RoboticsTestDir, &splits.Test},
	} {
		images, err := LoadImageDir(filepath.Join(dir, s.name), shape)
		if err != nil {
			return nil, errors.Wrapf(err, "robotics: %s split", s.name)
		}
		*s.dst = images
	}
	return &splits, nil
}

// LoadImageDir decodes every image file of dir, in name order, into an
// [N, H, W, C] tensor.
func LoadImageDir(dir string, shape tensor.Shape) (*tensor.RawTensor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read image dir")
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			if !e.IsDir() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no images in %s", dir)
	}
	sort.Strings(files)

	h, w, c := shape[0], shape[1], shape[2]
	out, err := tensor.NewRaw(tensor.Shape{len(files), h, w, c}, tensor.CPU)
	if err != nil {
		return nil, err
	}
	dst := out.AsFloat32()
	per := h * w * c
	for i, path := range files {
		img, err := decodeImage(path)
		if err != nil {
			return nil, err
		}
		writeImage(dst[i*per:(i+1)*per], img, h, w, c)
	}
	return out, nil
}

func decodeImage(path string) (image.Image, error) {
	//nolint:gosec // G304: dataset location is chosen by the user
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return img, nil
}

// writeImage samples img onto an h×w grid and stores it HWC-ordered in dst.
func writeImage(dst []float32, img image.Image, h, w, c int) {
	b := img.Bounds()
	for y := range h {
		sy := b.Min.Y + y*b.Dy()/h
		for x := range w {
			sx := b.Min.X + x*b.Dx()/w
			px := img.At(sx, sy)
			base := (y*w + x) * c
			if c == 1 {
				g := color.GrayModel.Convert(px).(color.Gray)
				dst[base] = normalizePixel(g.Y)
				continue
			}
			rgba := color.NRGBAModel.Convert(px).(color.NRGBA)
			dst[base] = normalizePixel(rgba.R)
			dst[base+1] = normalizePixel(rgba.G)
			dst[base+2] = normalizePixel(rgba.B)
		}
	}
}
