package imageset_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"imagecollect/internal/imageset"
)

func writeFiles(t *testing.T, fsys afero.Fs, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestCollectDirectoryNonRecursive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys,
		"/photos/b.PNG",
		"/photos/a.jpg",
		"/photos/notes.txt",
		"/photos/nested/c.png",
	)

	got, err := imageset.Collect(fsys, []string{"/photos"}, false)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []string{"/photos/a.jpg", "/photos/b.PNG"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect = %v, want %v", got, want)
	}
}

func TestCollectDirectoryRecursive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys,
		"/photos/z.webp",
		"/photos/a/2.gif",
		"/photos/a/1.tiff",
		"/photos/a/deep/x.bmp",
		"/photos/a/readme.md",
	)

	got, err := imageset.Collect(fsys, []string{"/photos"}, true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []string{"/photos/a/1.tiff", "/photos/a/2.gif", "/photos/a/deep/x.bmp", "/photos/z.webp"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect = %v, want %v", got, want)
	}
}

func TestCollectKeepsArgumentOrderAndDropsRepeats(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/in/b.png", "/in/a.png", "/in/skip.txt")

	got, err := imageset.Collect(fsys, []string{"/in/b.png", "/in/skip.txt", "/in", "/in/a.png"}, false)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []string{"/in/b.png", "/in/a.png"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect = %v, want %v", got, want)
	}
}

func TestCollectMissingPath(t *testing.T) {
	if _, err := imageset.Collect(afero.NewMemMapFs(), []string{"/nope"}, false); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCollectEmpty(t *testing.T) {
	got, err := imageset.Collect(afero.NewMemMapFs(), nil, true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no images, got %v", got)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"a.jpg":      true,
		"a.JPEG":     true,
		"a.png":      true,
		"a.webp":     true,
		"a.tif":      true,
		"a.txt":      false,
		"a":          false,
		"photo.jpg.": false,
	}
	for path, want := range tests {
		if got := imageset.IsImageFile(path); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCollectFollowsSymlinkedImagesInDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing.png"), filepath.Join(dir, "c.png")); err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	for _, recurse := range []bool{false, true} {
		got, err := imageset.Collect(afero.NewOsFs(), []string{dir}, recurse)
		if err != nil {
			t.Fatalf("Collect(recurse=%v): %v", recurse, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Collect(recurse=%v) = %v, want %v", recurse, got, want)
		}
	}
}
