package fingerprint

import (
	"context"

	"github.com/spf13/afero"

	"imagecollect/internal/fpcache"
	"imagecollect/internal/imageio"
)

// Cache is the subset of the fingerprint cache a Provider needs.
type Cache interface {
	GetOrCompute(ctx context.Context, key fpcache.Key, compute func(context.Context) (string, error)) (string, error)
}

// Provider binds an Algorithm to a filesystem and a cache, turning image
// paths into fingerprints.
type Provider struct {
	fs    afero.Fs
	algo  Algorithm
	cache Cache
}

// NewProvider returns a Provider. A nil cache computes every fingerprint.
func NewProvider(fsys afero.Fs, algo Algorithm, cache Cache) *Provider {
	return &Provider{fs: fsys, algo: algo, cache: cache}
}

// Name returns the algorithm name.
func (p *Provider) Name() string {
	return p.algo.Name()
}

// Fingerprint returns the fingerprint for the image at path. A non-empty
// digest is the file's current content identity; a cached value computed
// from different content is discarded and recomputed.
func (p *Provider) Fingerprint(ctx context.Context, path, digest string) (Fingerprint, error) {
	compute := func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := imageio.Decode(p.fs, path)
		if err != nil {
			return "", err
		}
		fp, err := p.algo.Compute(img)
		return string(fp), err
	}

	if p.cache == nil {
		value, err := compute(ctx)
		return Fingerprint(value), err
	}
	key := fpcache.Key{
		Algorithm: p.algo.Name(),
		Params:    p.algo.Params(),
		Path:      path,
		Digest:    digest,
	}
	value, err := p.cache.GetOrCompute(ctx, key, compute)
	return Fingerprint(value), err
}
