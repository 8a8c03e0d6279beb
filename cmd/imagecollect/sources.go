package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"

	"imagecollect/internal/config"
	"imagecollect/internal/pipeline"
)

// resolveSources expands and absolutizes source arguments, failing on the
// first one that does not exist.
func resolveSources(fsys afero.Fs, args []string) ([]string, error) {
	sources := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrValidation, "cli", "resolve source", arg, err)
		}
		if _, err := fsys.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, pipeline.Wrap(pipeline.ErrValidation, "cli", "resolve source", path+" does not exist", nil)
			}
			return nil, pipeline.Wrap(pipeline.ErrFilesystem, "cli", "resolve source", path, err)
		}
		sources = append(sources, path)
	}
	if len(sources) == 0 {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "cli", "resolve source", "no sources given", nil)
	}
	return sources, nil
}

// resolveDirectory expands path and requires an existing directory.
func resolveDirectory(fsys afero.Fs, flag, path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", pipeline.Wrap(pipeline.ErrValidation, "cli", flag, path, err)
	}
	info, err := fsys.Stat(expanded)
	if err != nil || !info.IsDir() {
		return "", pipeline.Wrap(pipeline.ErrValidation, "cli", flag, expanded+" must be an existing directory", nil)
	}
	return expanded, nil
}
