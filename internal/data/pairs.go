package data

import (
	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Pairs couples each clean image with its degraded copy.
type Pairs struct {
	clean    *tensor.RawTensor
	degraded *tensor.RawTensor
}

// Batch is one group of paired images.
type Batch struct {
	Clean    *tensor.Tensor
	Degraded *tensor.Tensor
	Size     int
}

// NewPairs pairs two [N, H, W, C] tensors of equal shape.
func NewPairs(clean, degraded *tensor.RawTensor) (*Pairs, error) {
	if clean == nil || degraded == nil {
		return nil, errors.New("pairs: nil images")
	}
	if len(clean.Shape()) != 4 {
		return nil, errors.Errorf("pairs: images must be [N, H, W, C], got %v", clean.Shape())
	}
	if !clean.Shape().Equal(degraded.Shape()) {
		return nil, errors.Errorf("pairs: clean %v and degraded %v differ", clean.Shape(), degraded.Shape())
	}
	return &Pairs{clean: clean, degraded: degraded}, nil
}

// Len returns the number of pairs.
func (p *Pairs) Len() int {
	return p.clean.Shape()[0]
}

// ImageShape returns [H, W, C].
func (p *Pairs) ImageShape() tensor.Shape {
	return p.clean.Shape()[1:].Clone()
}

// Clean returns the clean images.
func (p *Pairs) Clean() *tensor.RawTensor { return p.clean }

// Degraded returns the degraded images.
func (p *Pairs) Degraded() *tensor.RawTensor { return p.degraded }

// NumBatches returns how many batches of batchSize cover the pairs.
func (p *Pairs) NumBatches(batchSize int) int {
	return (p.Len() + batchSize - 1) / batchSize
}

// Batches splits the pairs, in order, into groups of batchSize on backend.
// The last batch is smaller when Len is not a multiple of batchSize.
func (p *Pairs) Batches(batchSize int, backend tensor.Backend) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, errors.Errorf("pairs: batch size %d must be positive", batchSize)
	}
	n := p.Len()
	batches := make([]Batch, 0, p.NumBatches(batchSize))
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		clean, err := slice(p.clean, start, end)
		if err != nil {
			return nil, err
		}
		degraded, err := slice(p.degraded, start, end)
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{
			Clean:    tensor.New(clean, backend),
			Degraded: tensor.New(degraded, backend),
			Size:     end - start,
		})
	}
	return batches, nil
}

// Head returns the first n pairs (fewer if Len < n).
func (p *Pairs) Head(n int) (clean, degraded *tensor.RawTensor, err error) {
	n = min(n, p.Len())
	if clean, err = slice(p.clean, 0, n); err != nil {
		return nil, nil, err
	}
	if degraded, err = slice(p.degraded, 0, n); err != nil {
		return nil, nil, err
	}
	return clean, degraded, nil
}
