package organizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"imagecollect/internal/logging"
	"imagecollect/internal/pipeline"
)

// requireDirectory fails unless path exists and is a directory.
func (o *Organizer) requireDirectory(stage, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return pipeline.Wrap(pipeline.ErrValidation, stage, "validate directory", "directory path is empty", nil)
	}
	info, err := o.fs.Stat(path)
	if err != nil {
		return pipeline.Wrap(pipeline.ErrValidation, stage, "validate directory", fmt.Sprintf("%s is not accessible", path), err)
	}
	if !info.IsDir() {
		o.logger.Error("target is not a directory",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEventType, "target_not_directory"),
			logging.String(logging.FieldErrorHint, "pass an existing directory"),
		)
		return pipeline.Wrap(pipeline.ErrValidation, stage, "validate directory", fmt.Sprintf("%s must be a directory", path), nil)
	}
	return nil
}

// prepareTarget accepts a missing or existing directory and rejects anything
// else. The directory is created unless dryRun is set.
func (o *Organizer) prepareTarget(stage, path string, dryRun bool) error {
	info, err := o.fs.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return pipeline.Wrap(pipeline.ErrValidation, stage, "validate target", fmt.Sprintf("%s exists and is not a directory", path), nil)
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return pipeline.Wrap(pipeline.ErrFilesystem, stage, "validate target", path, err)
	}
	if dryRun {
		return nil
	}
	if err := o.fs.MkdirAll(path, 0o755); err != nil {
		return pipeline.Wrap(pipeline.ErrFilesystem, stage, "create target", path, err)
	}
	return nil
}
