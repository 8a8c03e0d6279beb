package fingerprint

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// AverageHash is the coarse fingerprint: the image is shrunk to size×size,
// converted to grayscale, and each bit records whether a pixel is brighter
// than the mean.
type AverageHash struct {
	size int
}

// NewAverageHash returns an average hash producing size*size bits.
func NewAverageHash(size int) (*AverageHash, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	return &AverageHash{size: size}, nil
}

func (a *AverageHash) Name() string { return "ahash" }

func (a *AverageHash) Params() string { return fmt.Sprintf("size=%d", a.size) }

func (a *AverageHash) Compute(img image.Image) (Fingerprint, error) {
	if img == nil {
		return "", errNilImage
	}
	hash, err := goimagehash.ExtAverageHash(img, a.size, a.size)
	if err != nil {
		return "", fmt.Errorf("average hash: %w", err)
	}
	return Fingerprint(hash.ToString()), nil
}
