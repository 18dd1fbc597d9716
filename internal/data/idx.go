package data

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// ErrInvalidIDX is returned for streams that are not IDX image files.
var ErrInvalidIDX = errors.New("invalid IDX file")

// ReadIDXImages decodes up to limit images (all when limit <= 0) from an
// IDX image stream into an [N, rows, cols, 1] tensor scaled to [-1, 1].
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader, limit int) (*tensor.RawTensor, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read IDX header")
	}
	magic, count, rows, cols := header[0], int(header[1]), int(header[2]), int(header[3])
	if magic != idxImagesMagic {
		if magic == idxLabelsMagic {
			return nil, errors.Wrap(ErrInvalidIDX, "got a label file, want images")
		}
		return nil, errors.Wrapf(ErrInvalidIDX, "magic number %d, want %d", magic, idxImagesMagic)
	}
	if rows == 0 || cols == 0 || count == 0 {
		return nil, errors.Wrapf(ErrInvalidIDX, "empty dimensions %dx%dx%d", count, rows, cols)
	}
	if limit > 0 && limit < count {
		count = limit
	}

	out, err := tensor.NewRaw(tensor.Shape{count, rows, cols, 1}, tensor.CPU)
	if err != nil {
		return nil, err
	}
	dst := out.AsFloat32()
	pixels := make([]byte, rows*cols)
	for i := range count {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, errors.Wrapf(err, "failed to read image %d", i)
		}
		base := i * len(pixels)
		for j, p := range pixels {
			dst[base+j] = normalizePixel(p)
		}
	}
	return out, nil
}

// readIDXFile opens path, or path+".gz" when only the compressed file exists.
func readIDXFile(path string, limit int) (*tensor.RawTensor, error) {
	//nolint:gosec // G304: dataset location is chosen by the user
	file, err := os.Open(path)
	gz := false
	if os.IsNotExist(err) {
		//nolint:gosec // G304: dataset location is chosen by the user
		file, err = os.Open(path + ".gz")
		gz = true
	}
	if err != nil {
		return nil, errors.Wrap(err, "open IDX file")
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = bufio.NewReader(file)
	if gz {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.gz", path)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	images, err := ReadIDXImages(r, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return images, nil
}

// normalizePixel maps 0..255 to [-1, 1].
func normalizePixel(p uint8) float32 {
	return float32(p)/127.5 - 1
}
