package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// minCacheFree is the free space the cache directory needs for the database
// and its write-ahead log.
const minCacheFree = 16 << 20

// CheckDirectoryAccess passes when path is an existing directory the process
// can list, create files in and traverse.
func CheckDirectoryAccess(name, path string) Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return fail(name, "(error: path not configured)")
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fail(name, path+" (error: does not exist)")
	case err != nil:
		return fail(name, fmt.Sprintf("%s (error: stat: %v)", path, err))
	case !info.IsDir():
		return fail(name, path+" (error: is not a directory)")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(name, fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err))
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckFreeSpace passes when the filesystem holding path has at least need
// bytes available to unprivileged users.
func CheckFreeSpace(name, path string, need uint64) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return fail(name, fmt.Sprintf("%s (error: statfs: %v)", path, err))
	}
	avail := st.Bavail * uint64(st.Bsize)
	detail := fmt.Sprintf("%s (%s free)", path, humanize.IBytes(avail))
	if avail < need {
		return fail(name, fmt.Sprintf("%s (error: %s free, need %s)", path, humanize.IBytes(avail), humanize.IBytes(need)))
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

func fail(name, detail string) Result {
	return Result{Name: name, Detail: detail}
}
