package fingerprint

import (
	"errors"
	"fmt"
	"image"
)

// Fingerprint is the textual form of a perceptual hash, a kind prefix
// followed by the hex encoded bits. Two images are duplicates under an
// algorithm when their fingerprints are equal.
type Fingerprint string

// Algorithm computes a fixed-width fingerprint from decoded pixels.
type Algorithm interface {
	// Name identifies the algorithm in cache keys, e.g. "ahash".
	Name() string
	// Params canonically encodes the parameters that change the output.
	Params() string
	Compute(img image.Image) (Fingerprint, error)
}

var errNilImage = errors.New("image is nil")

func validateSize(size int) error {
	if size < 8 || size%8 != 0 {
		return fmt.Errorf("hash size must be a positive multiple of 8, got %d", size)
	}
	return nil
}
