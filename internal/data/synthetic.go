package data

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Synthetic generates bright strokes (bars, boxes and crosses) on a dark
// background. It stands in for MNIST when no dataset is available.
// The same seed always yields the same images.
func Synthetic(nTrain, nVal, nTest int, shape tensor.Shape, seed int64) (*Splits, error) {
	if len(shape) != 3 || shape[0] < 4 || shape[1] < 4 || shape[2] <= 0 {
		return nil, errors.Errorf("synthetic: shape must be [H>=4, W>=4, C>0], got %v", shape)
	}
	if nTrain <= 0 || nVal <= 0 || nTest <= 0 {
		return nil, errors.Errorf("synthetic: split sizes must be positive (train=%d val=%d test=%d)", nTrain, nVal, nTest)
	}
	rng := rand.New(rand.NewSource(seed))
	return &Splits{
		Train: syntheticImages(nTrain, shape, rng),
		Val:   syntheticImages(nVal, shape, rng),
		Test:  syntheticImages(nTest, shape, rng),
	}, nil
}

func syntheticImages(n int, shape tensor.Shape, rng *rand.Rand) *tensor.RawTensor {
	h, w, c := shape[0], shape[1], shape[2]
	out := tensor.MustRaw(tensor.Shape{n, h, w, c}, tensor.CPU)
	out.Fill(-1)
	data := out.AsFloat32()
	per := h * w * c

	for i := range n {
		img := data[i*per : (i+1)*per]
		set := func(y, x int) {
			for ch := range c {
				img[(y*w+x)*c+ch] = 1
			}
		}
		y0, y1 := span(rng, h)
		x0, x1 := span(rng, w)
		switch rng.Intn(3) {
		case 0: // filled bar
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					set(y, x)
				}
			}
		case 1: // box outline
			for y := y0; y < y1; y++ {
				set(y, x0)
				set(y, x1-1)
			}
			for x := x0; x < x1; x++ {
				set(y0, x)
				set(y1-1, x)
			}
		default: // cross
			cy, cx := (y0+y1)/2, (x0+x1)/2
			for y := y0; y < y1; y++ {
				set(y, cx)
			}
			for x := x0; x < x1; x++ {
				set(cy, x)
			}
		}
	}
	return out
}

// span returns a random interval [lo, hi) of at least a quarter of size.
func span(rng *rand.Rand, size int) (int, int) {
	minLen := max(size/4, 2)
	length := minLen + rng.Intn(size-minLen+1)
	lo := rng.Intn(size - length + 1)
	return lo, lo + length
}
