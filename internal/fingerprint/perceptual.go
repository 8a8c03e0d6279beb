package fingerprint

import (
	"fmt"
	"image"
	"slices"

	"github.com/corona10/goimagehash"
	"github.com/corona10/goimagehash/transforms"
	"github.com/disintegration/imaging"
)

// PerceptualHash is the precise fingerprint. The grayscale image is resized
// to (size*factor)² with a Lanczos filter, transformed with a 2D DCT, and the
// top-left size×size block of low frequencies is thresholded at its median.
type PerceptualHash struct {
	size   int
	factor int
}

// NewPerceptualHash returns a perceptual hash producing size*size bits.
// size*factor must be a power of two for the DCT.
func NewPerceptualHash(size, factor int) (*PerceptualHash, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	if factor < 1 {
		return nil, fmt.Errorf("highfreq factor must be at least 1, got %d", factor)
	}
	if side := size * factor; side&(side-1) != 0 {
		return nil, fmt.Errorf("size*highfreq factor must be a power of two, got %d", side)
	}
	return &PerceptualHash{size: size, factor: factor}, nil
}

func (p *PerceptualHash) Name() string { return "phash" }

func (p *PerceptualHash) Params() string {
	return fmt.Sprintf("size=%d,highfreq=%d", p.size, p.factor)
}

func (p *PerceptualHash) Compute(img image.Image) (Fingerprint, error) {
	if img == nil {
		return "", errNilImage
	}
	side := p.size * p.factor
	small := imaging.Resize(imaging.Grayscale(img), side, side, imaging.Lanczos)

	pixels := make([][]float64, side)
	for y := 0; y < side; y++ {
		row := make([]float64, side)
		for x := 0; x < side; x++ {
			// Grayscale output has equal channels; R is the luminance.
			row[x] = float64(small.Pix[small.PixOffset(x, y)])
		}
		pixels[y] = row
	}
	freq := transforms.DCT2D(pixels, side, side)

	low := make([]float64, 0, p.size*p.size)
	for y := 0; y < p.size; y++ {
		low = append(low, freq[y][:p.size]...)
	}
	med := median(low)

	bits := make([]uint64, (len(low)+63)/64)
	for idx, v := range low {
		if v > med {
			bits[idx/64] |= 1 << uint(63-idx%64)
		}
	}
	return Fingerprint(goimagehash.NewExtImageHash(bits, goimagehash.PHash, len(low)).ToString()), nil
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
