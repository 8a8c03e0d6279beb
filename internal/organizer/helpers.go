package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// unavailableErrors lists syscall errors that indicate the target filesystem
// went away underneath us rather than a problem with one file.
var unavailableErrors = []error{
	unix.ENODEV,
	unix.ENOTCONN,
	unix.EHOSTDOWN,
	unix.EHOSTUNREACH,
	unix.ETIMEDOUT,
	unix.EIO,
	unix.ESTALE,
	unix.EROFS,
	unix.ENOSPC,
}

// isFilesystemUnavailable reports whether err means no further operation on
// the same filesystem can succeed.
func isFilesystemUnavailable(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range unavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// reservations tracks target paths handed out during one plan so two
// operations never aim at the same file, including in dry runs.
type reservations map[string]struct{}

func (r reservations) taken(fsys afero.Fs, path string) (bool, error) {
	if _, ok := r[path]; ok {
		return true, nil
	}
	_, err := fsys.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// uniqueTarget returns dir/name+ext, or dir/name_<n>+ext for the smallest
// n >= 1 that is free, and reserves it.
func (r reservations) uniqueTarget(fsys afero.Fs, dir, name, ext string) (string, error) {
	candidate := filepath.Join(dir, name+ext)
	for n := 1; ; n++ {
		taken, err := r.taken(fsys, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			r[candidate] = struct{}{}
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, n, ext))
	}
}

// splitName splits the base name of path into its stem and extension.
func splitName(path string) (stem, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
