package dedup

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"imagecollect/internal/fingerprint"
)

// Group is an ordered set of at least two image paths sharing a fingerprint.
type Group []string

// FingerprintFunc computes the fingerprint of one image.
type FingerprintFunc func(ctx context.Context, path string) (fingerprint.Fingerprint, error)

// GroupByFingerprint fingerprints every path and returns the groups of paths
// whose fingerprints are equal, dropping singletons.
//
// Groups appear in the order their fingerprint was first seen and paths keep
// their input order within a group, so the result depends only on the input
// order. Up to workers fingerprints are computed concurrently; workers < 1
// means one. On failure the error of the lowest failing position is returned.
func GroupByFingerprint(ctx context.Context, paths []string, fn FingerprintFunc, workers int) ([]Group, error) {
	fps, err := fingerprintAll(ctx, paths, fn, workers)
	if err != nil {
		return nil, err
	}
	return groupOrdered(paths, fps), nil
}

func fingerprintAll(ctx context.Context, paths []string, fn FingerprintFunc, workers int) ([]fingerprint.Fingerprint, error) {
	if workers < 1 {
		workers = 1
	}
	fps := make([]fingerprint.Fingerprint, len(paths))
	errs := make([]error, len(paths))

	// Paths after the lowest failed position are skipped; paths before it
	// still run so the reported failure does not depend on scheduling.
	var lowestFailed atomic.Int64
	lowestFailed.Store(math.MaxInt64)
	markFailed := func(i int64) {
		for {
			cur := lowestFailed.Load()
			if i >= cur || lowestFailed.CompareAndSwap(cur, i) {
				return
			}
		}
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		if int64(i) > lowestFailed.Load() {
			break
		}
		g.Go(func() error {
			if int64(i) > lowestFailed.Load() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				errs[i] = err
				markFailed(int64(i))
				return err
			}
			fp, err := fn(ctx, path)
			if err != nil {
				errs[i] = err
				markFailed(int64(i))
				return err
			}
			fps[i] = fp
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return fps, nil
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return nil, errors.New("fingerprinting failed without a recorded error")
}

func groupOrdered(paths []string, fps []fingerprint.Fingerprint) []Group {
	index := make(map[fingerprint.Fingerprint]int, len(paths))
	var buckets []Group
	for i, path := range paths {
		j, ok := index[fps[i]]
		if !ok {
			j = len(buckets)
			index[fps[i]] = j
			buckets = append(buckets, nil)
		}
		buckets[j] = append(buckets[j], path)
	}

	groups := make([]Group, 0, len(buckets))
	for _, bucket := range buckets {
		if len(bucket) >= 2 {
			groups = append(groups, bucket)
		}
	}
	return groups
}

// Flatten concatenates groups in order.
func Flatten(groups []Group) []string {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]string, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
