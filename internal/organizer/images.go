package organizer

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"imagecollect/internal/config"
	"imagecollect/internal/fileutil"
	"imagecollect/internal/imageio"
	"imagecollect/internal/imageset"
	"imagecollect/internal/logging"
	"imagecollect/internal/pipeline"
)

const (
	stageImages = "organize-images"

	// OtherRatio is the bucket for aspect ratios matching no configured one.
	OtherRatio = "other"
	// LargerHeight is the height directory for images taller than every
	// configured height.
	LargerHeight = "wlarger"

	ratioTolerance = 1e-9
)

// ImageOptions select how OrganizeImages treats its inputs.
type ImageOptions struct {
	Recurse bool
	DryRun  bool
}

// Placement is an image operation together with the buckets it landed in.
type Placement struct {
	Operation
	Ratio  string
	Height string
}

// ImageReport lists what OrganizeImages did, or would do on a dry run.
type ImageReport struct {
	Placed  []Placement
	Skipped []Skip
}

// OrganizeImages sorts the images under sources into
// target/<ratio name>/w<height>/<file name>.
//
// The ratio name is that of the configured ratio equal to width/height, or
// "other". The height directory is named after the smallest configured height
// not below the image height, or "wlarger". Images are copied unless the
// configuration asks for moves. Every operation is planned first; an existing
// target file is never overwritten and its source is skipped.
func (o *Organizer) OrganizeImages(ctx context.Context, sources []string, target string, opts ImageOptions) (*ImageReport, error) {
	target = filepath.Clean(target)
	if err := o.prepareTarget(stageImages, target, opts.DryRun); err != nil {
		return nil, err
	}
	logger := logging.WithContext(pipeline.WithStage(ctx, stageImages), o.logger)

	images, err := imageset.Collect(o.fs, sources, opts.Recurse)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrFilesystem, stageImages, "scan sources", "", err)
	}

	report := &ImageReport{}
	plan, err := o.planImages(ctx, images, target, report)
	if err != nil {
		return nil, err
	}

	action := ActionCopy
	if !o.cfg.Organize.Copy {
		action = ActionMove
	}
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p.Action = action
		if opts.DryRun {
			logger.Info("would organize image",
				logging.String("source", p.Source),
				logging.String("target", p.Target),
				logging.String("action", string(action)),
			)
			report.Placed = append(report.Placed, p)
			continue
		}

		if _, err := o.fs.Stat(p.Source); errors.Is(err, os.ErrNotExist) {
			logging.ErrorWithContext(logger, "source vanished before organizing", "organize_source_missing",
				logging.String(logging.FieldPath, p.Source),
				logging.String(logging.FieldErrorHint, "file was removed while organizing"),
			)
			report.Skipped = append(report.Skipped, Skip{Path: p.Source, Reason: "source missing"})
			continue
		}
		if err := o.fs.MkdirAll(filepath.Dir(p.Target), 0o755); err != nil {
			return report, pipeline.Wrap(pipeline.ErrFilesystem, stageImages, "create directory", filepath.Dir(p.Target), err)
		}
		if err := o.transfer(action, p.Source, p.Target); err != nil {
			if errors.Is(err, os.ErrExist) {
				logging.WarnWithContext(logger, "target appeared while organizing; skipping", "organize_target_exists",
					logging.String(logging.FieldPath, p.Source),
					logging.String("target", p.Target),
					logging.String(logging.FieldImpact, "source left in place"),
				)
				report.Skipped = append(report.Skipped, Skip{Path: p.Source, Reason: "target exists"})
				continue
			}
			if isFilesystemUnavailable(err) {
				logging.ErrorWithContext(logger, "target filesystem unavailable; aborting", "organize_target_unavailable",
					logging.String("target", p.Target),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that the target volume is mounted and writable"),
				)
			}
			return report, pipeline.Wrap(pipeline.ErrFilesystem, stageImages, string(action)+" image", p.Source, err)
		}
		logger.Debug("organized image",
			logging.String("source", p.Source),
			logging.String("target", p.Target),
			logging.String("action", string(action)),
		)
		report.Placed = append(report.Placed, p)
	}

	logger.Info("organized images",
		logging.Int("images", len(images)),
		logging.Int("placed", len(report.Placed)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Bool("dry_run", opts.DryRun),
	)
	return report, nil
}

func (o *Organizer) planImages(ctx context.Context, images []string, target string, report *ImageReport) ([]Placement, error) {
	logger := logging.WithContext(ctx, o.logger)
	reserved := reservations{}
	plan := make([]Placement, 0, len(images))
	for _, path := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		width, height, err := imageio.Dimensions(o.fs, path, o.cfg.Organize.ExifOrientation)
		if err != nil {
			logging.WarnWithContext(logger, "cannot read image dimensions; skipping", "organize_unreadable",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "image left in place"),
			)
			report.Skipped = append(report.Skipped, Skip{Path: path, Reason: "unreadable"})
			continue
		}

		ratio := RatioName(o.cfg.Organize.Ratios, width, height)
		heightDir := HeightDir(o.cfg.Organize.Heights, height)
		dest := filepath.Join(target, ratio, heightDir, filepath.Base(path))

		taken, err := reserved.taken(o.fs, dest)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrFilesystem, stageImages, "plan image", dest, err)
		}
		if taken {
			logging.WarnWithContext(logger, "target already exists; skipping", "organize_target_exists",
				logging.String(logging.FieldPath, path),
				logging.String("target", dest),
				logging.String(logging.FieldImpact, "source left in place"),
			)
			report.Skipped = append(report.Skipped, Skip{Path: path, Reason: "target exists"})
			continue
		}
		reserved[dest] = struct{}{}
		plan = append(plan, Placement{
			Operation: Operation{Source: path, Target: dest},
			Ratio:     ratio,
			Height:    heightDir,
		})
	}
	return plan, nil
}

func (o *Organizer) transfer(action Action, src, dst string) error {
	if action == ActionMove {
		return fileutil.MoveFile(o.fs, src, dst)
	}
	return fileutil.CopyFile(o.fs, src, dst)
}

// RatioName returns the name of the configured ratio equal to width/height.
// Later entries win when several match. Unmatched ratios map to OtherRatio.
func RatioName(ratios []config.Ratio, width, height int) string {
	if height <= 0 {
		return OtherRatio
	}
	value := float64(width) / float64(height)
	for i := len(ratios) - 1; i >= 0; i-- {
		if isClose(ratios[i].Value(), value) {
			return ratios[i].Name
		}
	}
	return OtherRatio
}

// HeightDir returns "w<h>" for the smallest configured height h not below
// height, or LargerHeight. heights must be ascending.
func HeightDir(heights []int, height int) string {
	for _, h := range heights {
		if h >= height {
			return "w" + strconv.Itoa(h)
		}
	}
	return LargerHeight
}

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= ratioTolerance*math.Max(math.Abs(a), math.Abs(b))
}
