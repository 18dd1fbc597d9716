package data

import (
	"math/rand"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Pixel values used by the degradations.
const (
	Salt   float32 = 1
	Pepper float32 = -1
)

// AddSaltPepperNoise returns a copy of images in which each pixel is, with
// probability amount, replaced by Salt or Pepper with equal odds. All
// channels of a pixel are replaced together.
func AddSaltPepperNoise(images *tensor.RawTensor, amount float32, rng *rand.Rand) *tensor.RawTensor {
	out := images.Clone()
	data := out.AsFloat32()
	c := images.Shape()[len(images.Shape())-1]
	for p := 0; p < len(data); p += c {
		if rng.Float32() >= amount {
			continue
		}
		v := Pepper
		if rng.Intn(2) == 0 {
			v = Salt
		}
		for ch := range c {
			data[p+ch] = v
		}
	}
	return out
}

// RemovePixels returns a copy of images in which each pixel is, with
// probability fraction, blacked out (set to Pepper on every channel).
func RemovePixels(images *tensor.RawTensor, fraction float32, rng *rand.Rand) *tensor.RawTensor {
	out := images.Clone()
	data := out.AsFloat32()
	c := images.Shape()[len(images.Shape())-1]
	for p := 0; p < len(data); p += c {
		if rng.Float32() >= fraction {
			continue
		}
		for ch := range c {
			data[p+ch] = Pepper
		}
	}
	return out
}
