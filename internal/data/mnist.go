// Package data provides the clean/degraded image pairs the CycleGAN trains on:
// dataset loaders (MNIST, robotics PNG folders, synthetic shapes), the
// degradations (salt-and-pepper noise, pixel removal) and paired batching.
//
// All images are [N, H, W, C] float32 tensors with values in [-1, 1].
package data

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Standard MNIST file names. A ".gz" suffix is tried when the plain file is absent.
const (
	MNISTTrainImages = "train-images-idx3-ubyte"
	MNISTTestImages  = "t10k-images-idx3-ubyte"
)

// Splits holds the train, validation and test images of a dataset.
type Splits struct {
	Train, Val, Test *tensor.RawTensor
}

// LoadMNIST reads the MNIST digits from dir. The first nTrain training
// images form the train split and the following nVal the validation split;
// the test split is the first nTest images of the test file.
func LoadMNIST(dir string, nTrain, nVal, nTest int) (*Splits, error) {
	if nTrain <= 0 || nVal <= 0 || nTest <= 0 {
		return nil, errors.Errorf("mnist: split sizes must be positive (train=%d val=%d test=%d)", nTrain, nVal, nTest)
	}

	train, err := readIDXFile(filepath.Join(dir, MNISTTrainImages), nTrain+nVal)
	if err != nil {
		return nil, errors.Wrap(err, "mnist: train images")
	}
	if n := train.Shape()[0]; n < nTrain+nVal {
		return nil, errors.Errorf("mnist: %d training images, need %d for train+val", n, nTrain+nVal)
	}
	test, err := readIDXFile(filepath.Join(dir, MNISTTestImages), nTest)
	if err != nil {
		return nil, errors.Wrap(err, "mnist: test images")
	}
	if n := test.Shape()[0]; n < nTest {
		return nil, errors.Errorf("mnist: %d test images, need %d", n, nTest)
	}

	trainSplit, err := slice(train, 0, nTrain)
	if err != nil {
		return nil, err
	}
	valSplit, err := slice(train, nTrain, nTrain+nVal)
	if err != nil {
		return nil, err
	}
	return &Splits{Train: trainSplit, Val: valSplit, Test: test}, nil
}

// slice copies images [from, to) of an [N, ...] tensor.
func slice(images *tensor.RawTensor, from, to int) (*tensor.RawTensor, error) {
	shape := images.Shape().Clone()
	if from < 0 || to > shape[0] || from >= to {
		return nil, errors.Errorf("slice [%d, %d) of %d images", from, to, shape[0])
	}
	per := images.NumElements() / shape[0]
	shape[0] = to - from
	return tensor.RawFromSlice(
		append([]float32(nil), images.AsFloat32()[from*per:to*per]...),
		shape, images.Device())
}
