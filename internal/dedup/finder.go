package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"imagecollect/internal/config"
	"imagecollect/internal/contentid"
	"imagecollect/internal/fingerprint"
	"imagecollect/internal/imageset"
	"imagecollect/internal/logging"
	"imagecollect/internal/pipeline"
)

// Stage names one pass of the duplicate search.
type Stage string

const (
	StageCoarse  Stage = "coarse"
	StagePrecise Stage = "precise"
)

// ProgressFunc is called after each fingerprint of a pass completes. It may
// be called from several goroutines at once.
type ProgressFunc func(stage Stage, done, total int)

// Fingerprinter turns an image path, plus an optional content digest, into a
// fingerprint. fingerprint.Provider is the production implementation.
type Fingerprinter interface {
	Name() string
	Fingerprint(ctx context.Context, path, digest string) (fingerprint.Fingerprint, error)
}

// Options tune a Finder.
type Options struct {
	// Workers bounds concurrent fingerprint computations; 0 uses GOMAXPROCS.
	Workers  int
	Logger   *slog.Logger
	Progress ProgressFunc
}

// Finder runs the two-pass duplicate search: a coarse fingerprint over every
// image, then a precise fingerprint over the images the coarse pass grouped.
type Finder struct {
	fs       afero.Fs
	coarse   Fingerprinter
	precise  Fingerprinter
	workers  int
	logger   *slog.Logger
	progress ProgressFunc
}

// NewFinder wires a Finder from explicit fingerprinters.
func NewFinder(fsys afero.Fs, coarse, precise Fingerprinter, opts Options) *Finder {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Finder{
		fs:       fsys,
		coarse:   coarse,
		precise:  precise,
		workers:  workers,
		logger:   logging.NewComponentLogger(opts.Logger, "dedup"),
		progress: opts.Progress,
	}
}

// NewFinderFromConfig builds the average-hash and perceptual-hash providers
// described by cfg, both backed by cache.
func NewFinderFromConfig(fsys afero.Fs, cfg *config.Config, cache fingerprint.Cache, opts Options) (*Finder, error) {
	coarse, err := fingerprint.NewAverageHash(cfg.Dedup.CoarseHashSize)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "dedup", "coarse hash", "", err)
	}
	precise, err := fingerprint.NewPerceptualHash(cfg.Dedup.PreciseHashSize, cfg.Dedup.HighfreqFactor)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "dedup", "precise hash", "", err)
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.Dedup.Workers
	}
	return NewFinder(fsys,
		fingerprint.NewProvider(fsys, coarse, cache),
		fingerprint.NewProvider(fsys, precise, cache),
		opts,
	), nil
}

// Result describes one duplicate search.
type Result struct {
	Images       int
	CoarseGroups []Group
	Candidates   []string
	Groups       []Group
	Elapsed      time.Duration
}

// FindDuplicates collects the images under paths and returns the final
// duplicate groups. With verify set, cached fingerprints are only trusted
// when the file content is unchanged since they were computed.
func (f *Finder) FindDuplicates(ctx context.Context, paths []string, recurse, verify bool) ([]Group, error) {
	res, err := f.Search(ctx, paths, recurse, verify)
	if err != nil {
		return nil, err
	}
	return res.Groups, nil
}

// Search is FindDuplicates with the full pass report.
func (f *Finder) Search(ctx context.Context, paths []string, recurse, verify bool) (*Result, error) {
	images, err := imageset.Collect(f.fs, paths, recurse)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrFilesystem, "collect", "scan sources", "", err)
	}
	return f.Run(ctx, images, verify)
}

// Run performs both passes over an already collected image list.
func (f *Finder) Run(ctx context.Context, images []string, verify bool) (*Result, error) {
	start := time.Now()
	images = uniquePaths(images)
	res := &Result{Images: len(images), CoarseGroups: []Group{}, Candidates: []string{}, Groups: []Group{}}
	if len(images) == 0 {
		return res, nil
	}

	var digests *digestMemo
	if verify {
		digests = &digestMemo{fs: f.fs, values: make(map[string]string)}
	}

	coarseGroups, err := f.pass(ctx, StageCoarse, f.coarse, images, digests)
	if err != nil {
		return nil, err
	}
	res.CoarseGroups = coarseGroups
	res.Candidates = Flatten(coarseGroups)
	f.logger.Info("coarse pass complete",
		logging.String(logging.FieldStage, string(StageCoarse)),
		logging.Int("images", len(images)),
		logging.Int("groups", len(coarseGroups)),
		logging.Int("candidates", len(res.Candidates)),
	)

	if len(res.Candidates) > 0 {
		groups, err := f.pass(ctx, StagePrecise, f.precise, res.Candidates, digests)
		if err != nil {
			return nil, err
		}
		res.Groups = groups
	}
	res.Elapsed = time.Since(start)
	f.logger.Info("precise pass complete",
		logging.String(logging.FieldStage, string(StagePrecise)),
		logging.Int("candidates", len(res.Candidates)),
		logging.Int("groups", len(res.Groups)),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (f *Finder) pass(ctx context.Context, stage Stage, fp Fingerprinter, paths []string, digests *digestMemo) ([]Group, error) {
	ctx = pipeline.WithStage(ctx, string(stage))
	total := len(paths)
	var done atomic.Int64

	fn := func(ctx context.Context, path string) (fingerprint.Fingerprint, error) {
		var digest string
		if digests != nil {
			d, err := digests.get(ctx, path)
			if err != nil {
				return "", pipeline.Wrap(pipeline.ErrFilesystem, string(stage), "content digest", path, err)
			}
			digest = d
		}
		value, err := fp.Fingerprint(ctx, path, digest)
		if err != nil {
			return "", pipeline.Wrap(pipeline.ErrImage, string(stage), fp.Name(), path, err)
		}
		n := done.Add(1)
		if f.progress != nil {
			f.progress(stage, int(n), total)
		}
		logging.WithContext(ctx, f.logger).Debug("fingerprinted",
			logging.String(logging.FieldPath, path),
			logging.String("fingerprint", string(value)),
		)
		return value, nil
	}

	groups, err := GroupByFingerprint(ctx, paths, fn, f.workers)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// digestMemo computes each file's content identity once per run so the
// precise pass reuses the coarse pass digests.
type digestMemo struct {
	fs     afero.Fs
	mu     sync.Mutex
	values map[string]string
}

func (m *digestMemo) get(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	if d, ok := m.values[path]; ok {
		m.mu.Unlock()
		return d, nil
	}
	m.mu.Unlock()

	d, err := contentid.Digest(ctx, m.fs, path)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.values[path] = d
	m.mu.Unlock()
	return d, nil
}

func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// String renders a group for log lines.
func (g Group) String() string {
	return fmt.Sprintf("%d images: %v", len(g), []string(g))
}
