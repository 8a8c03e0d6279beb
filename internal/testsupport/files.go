package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// WriteFile stores data at path on fsys, creating parent directories.
func WriteFile(t testing.TB, fsys afero.Fs, path string, data []byte) {
	t.Helper()

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the contents of path on fsys or fails the test.
func ReadFile(t testing.TB, fsys afero.Fs, path string) []byte {
	t.Helper()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// Exists reports whether path exists on fsys.
func Exists(t testing.TB, fsys afero.Fs, path string) bool {
	t.Helper()

	ok, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return ok
}
