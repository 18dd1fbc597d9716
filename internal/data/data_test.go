package data_test

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/cyclegan/internal/backend/cpu"
	"github.com/born-ml/cyclegan/internal/data"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// idxImages encodes n images of rows×cols whose pixels all equal the image index.
func idxImages(n, rows, cols int) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, [4]uint32{2051, uint32(n), uint32(rows), uint32(cols)})
	for i := range n {
		buf.Write(bytes.Repeat([]byte{byte(i * 50)}, rows*cols))
	}
	return buf.Bytes()
}

func TestReadIDXImages(t *testing.T) {
	images, err := data.ReadIDXImages(bytes.NewReader(idxImages(3, 2, 2)), 0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2, 2, 1}, images.Shape())
	values := images.AsFloat32()
	assert.Equal(t, float32(-1), values[0], "0 maps to -1")
	assert.InDelta(t, 50/127.5-1, values[4], 1e-6)

	limited, err := data.ReadIDXImages(bytes.NewReader(idxImages(3, 2, 2)), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, limited.Shape()[0])

	bad := idxImages(1, 2, 2)
	bad[3] = 0x01 // label magic
	_, err = data.ReadIDXImages(bytes.NewReader(bad), 0)
	assert.True(t, errors.Is(err, data.ErrInvalidIDX))

	_, err = data.ReadIDXImages(bytes.NewReader(idxImages(3, 2, 2)[:20]), 0)
	assert.Error(t, err)
}

func TestLoadMNIST(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, data.MNISTTrainImages), idxImages(5, 28, 28), 0o600))

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(idxImages(4, 28, 28))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, data.MNISTTestImages+".gz"), gz.Bytes(), 0o600))

	splits, err := data.LoadMNIST(dir, 3, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 28, 28, 1}, splits.Train.Shape())
	assert.Equal(t, tensor.Shape{2, 28, 28, 1}, splits.Val.Shape())
	assert.Equal(t, tensor.Shape{4, 28, 28, 1}, splits.Test.Shape())
	assert.InDelta(t, 150/127.5-1, splits.Val.AsFloat32()[0], 1e-6, "val follows train")

	_, err = data.LoadMNIST(dir, 4, 2, 1)
	assert.Error(t, err, "not enough training images")
	_, err = data.LoadMNIST(t.TempDir(), 1, 1, 1)
	assert.Error(t, err)
}

func TestLoadRobotics(t *testing.T) {
	dir := t.TempDir()
	for i, split := range []string{data.RoboticsTrainDir, data.RoboticsValDir, data.RoboticsTestDir} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, split), 0o750))
		for j := range i + 1 {
			img := image.NewGray(image.Rect(0, 0, 8, 8))
			for p := range img.Pix {
				img.Pix[p] = 255
			}
			img.SetGray(0, 0, color.Gray{Y: 0})
			f, err := os.Create(filepath.Join(dir, split, string(rune('a'+j))+".png"))
			require.NoError(t, err)
			require.NoError(t, png.Encode(f, img))
			require.NoError(t, f.Close())
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, data.RoboticsTrainDir, "notes.txt"), []byte("x"), 0o600))

	splits, err := data.LoadRobotics(dir, tensor.Shape{4, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 4, 4, 1}, splits.Train.Shape())
	assert.Equal(t, tensor.Shape{2, 4, 4, 1}, splits.Val.Shape())
	assert.Equal(t, tensor.Shape{3, 4, 4, 1}, splits.Test.Shape())
	px := splits.Train.AsFloat32()
	assert.Equal(t, float32(-1), px[0])
	assert.Equal(t, float32(1), px[len(px)-1])

	rgb, err := data.LoadImageDir(filepath.Join(dir, data.RoboticsTestDir), tensor.Shape{8, 8, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 8, 8, 3}, rgb.Shape())

	_, err = data.LoadRobotics(dir, tensor.Shape{4, 4, 2})
	assert.Error(t, err)
}

func TestSynthetic(t *testing.T) {
	shape := tensor.Shape{8, 8, 1}
	a, err := data.Synthetic(4, 2, 3, shape, 42)
	require.NoError(t, err)
	b, err := data.Synthetic(4, 2, 3, shape, 42)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{4, 8, 8, 1}, a.Train.Shape())
	assert.Equal(t, tensor.Shape{2, 8, 8, 1}, a.Val.Shape())
	assert.Equal(t, a.Test.AsFloat32(), b.Test.AsFloat32(), "deterministic for a seed")

	bright := 0
	for _, v := range a.Train.AsFloat32() {
		assert.True(t, v == -1 || v == 1)
		if v == 1 {
			bright++
		}
	}
	assert.Positive(t, bright)

	_, err = data.Synthetic(1, 1, 1, tensor.Shape{2, 2, 1}, 1)
	assert.Error(t, err)
}

func TestNoise(t *testing.T) {
	images := tensor.MustRaw(tensor.Shape{10, 10, 10, 1}, tensor.CPU)
	rng := rand.New(rand.NewSource(1))

	noisy := data.AddSaltPepperNoise(images, 0.2, rng)
	assert.Equal(t, images.Shape(), noisy.Shape())
	salt, pepper := 0, 0
	for _, v := range noisy.AsFloat32() {
		switch v {
		case data.Salt:
			salt++
		case data.Pepper:
			pepper++
		default:
			assert.Equal(t, float32(0), v)
		}
	}
	assert.InDelta(t, 100, salt, 40)
	assert.InDelta(t, 100, pepper, 40)
	assert.Equal(t, make([]float32, 1000), images.AsFloat32(), "input is not modified")

	removed := data.RemovePixels(images, 0.5, rng)
	dark := 0
	for _, v := range removed.AsFloat32() {
		if v == data.Pepper {
			dark++
		}
	}
	assert.InDelta(t, 500, dark, 80)

	rgb := tensor.MustRaw(tensor.Shape{1, 4, 4, 3}, tensor.CPU)
	out := data.RemovePixels(rgb, 1, rng).AsFloat32()
	for _, v := range out {
		assert.Equal(t, data.Pepper, v, "every channel of a removed pixel is cleared")
	}
}

func TestPairs(t *testing.T) {
	clean := tensor.MustRaw(tensor.Shape{5, 2, 2, 1}, tensor.CPU)
	values := clean.AsFloat32()
	for i := range values {
		values[i] = float32(i / 4)
	}
	degraded := clean.Clone()

	pairs, err := data.NewPairs(clean, degraded)
	require.NoError(t, err)
	assert.Equal(t, 5, pairs.Len())
	assert.Equal(t, tensor.Shape{2, 2, 1}, pairs.ImageShape())
	assert.Equal(t, 3, pairs.NumBatches(2))

	batches, err := pairs.Batches(2, cpu.New())
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, tensor.Shape{2, 2, 2, 1}, batches[0].Clean.Shape())
	assert.Equal(t, 1, batches[2].Size)
	assert.Equal(t, float32(4), batches[2].Degraded.Data()[0], "order is preserved")

	head, _, err := pairs.Head(10)
	require.NoError(t, err)
	assert.Equal(t, 5, head.Shape()[0])

	_, err = pairs.Batches(0, cpu.New())
	assert.Error(t, err)

	_, err = data.NewPairs(clean, tensor.MustRaw(tensor.Shape{5, 2, 2, 3}, tensor.CPU))
	assert.Error(t, err)
}
