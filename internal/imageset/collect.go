package imageset

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Collect expands files and directories into the image files they contain.
//
// Explicit file arguments are kept in the order given when they look like
// images. Directories contribute their image files in lexical order, either
// directly contained (recurse false) or from the whole subtree. Every path is
// returned absolute and appears once, at its first position. Symlinks to
// regular files count as images but are not resolved, so two links to the
// same file are two images. Symlinked directories are not followed.
func Collect(fsys afero.Fs, paths []string, recurse bool) ([]string, error) {
	var (
		images []string
		seen   = make(map[string]struct{})
	)
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		images = append(images, path)
	}

	for _, raw := range paths {
		root, err := filepath.Abs(raw)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", raw, err)
		}
		info, err := fsys.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", root, err)
		}
		if !info.IsDir() {
			if IsImageFile(root) {
				add(root)
			}
			continue
		}

		found, err := scanDir(fsys, root, recurse)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			add(path)
		}
	}
	return images, nil
}

func scanDir(fsys afero.Fs, root string, recurse bool) ([]string, error) {
	var found []string
	if !recurse {
		entries, err := afero.ReadDir(fsys, root)
		if err != nil {
			return nil, fmt.Errorf("read dir %q: %w", root, err)
		}
		for _, entry := range entries {
			path := filepath.Join(root, entry.Name())
			if IsImageFile(path) && isRegular(fsys, path, entry) {
				found = append(found, path)
			}
		}
		return found, nil
	}

	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %q: %w", path, err)
		}
		if IsImageFile(path) && isRegular(fsys, path, info) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// isRegular reports whether info, as returned by a directory listing, is a
// regular file or a symlink to one.
func isRegular(fsys afero.Fs, path string, info fs.FileInfo) bool {
	if info.Mode()&fs.ModeSymlink == 0 {
		return info.Mode().IsRegular()
	}
	target, err := fsys.Stat(path)
	return err == nil && target.Mode().IsRegular()
}
