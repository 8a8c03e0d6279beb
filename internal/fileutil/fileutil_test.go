package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func writeFile(t *testing.T, fsys afero.Fs, path string, data []byte, mode os.FileMode) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, data, mode); err != nil {
		t.Fatal(err)
	}
}

func TestCopyFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := []byte("hello world")
	writeFile(t, fsys, "/src.txt", content, 0o600)

	if err := CopyFile(fsys, "/src.txt", "/dst.txt"); err != nil {
		t.Fatal(err)
	}

	got, err := afero.ReadFile(fsys, "/dst.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := fsys.Stat("/dst.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o, want 600", info.Mode().Perm())
	}
}

func TestCopyFileModeOnDisk(t *testing.T) {
	dir := t.TempDir()
	fsys := afero.NewOsFs()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, fsys, src, []byte("data"), 0o644)

	if err := CopyFileMode(fsys, src, dst, 0o755); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	// Check executable bits are set (umask may clear some bits).
	if info.Mode().Perm()&0o111 == 0 {
		t.Fatalf("expected executable bits, got %o", info.Mode().Perm())
	}
}

func TestCopyFileRefusesExistingTarget(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src", []byte("new"), 0o644)
	writeFile(t, fsys, "/dst", []byte("old"), 0o644)

	err := CopyFile(fsys, "/src", "/dst")
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := afero.ReadFile(fsys, "/dst")
	if string(got) != "old" {
		t.Fatalf("existing target overwritten: %q", got)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := CopyFile(fsys, "/nope", "/dst"); err == nil {
		t.Fatal("expected error for missing source")
	}
	if ok, _ := afero.Exists(fsys, "/dst"); ok {
		t.Fatal("destination should not be created")
	}
}

func TestCopyFile_DirectorySource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/dir", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(fsys, "/dir", "/dst"); err == nil {
		t.Fatal("expected error for directory source")
	}
}

func TestMoveFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/a/img.png", []byte("pixels"), 0o644)
	if err := fsys.MkdirAll("/b", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(fsys, "/a/img.png", "/b/img.png"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fsys, "/a/img.png"); ok {
		t.Fatal("source still present after move")
	}
	got, err := afero.ReadFile(fsys, "/b/img.png")
	if err != nil || string(got) != "pixels" {
		t.Fatalf("moved content = %q, %v", got, err)
	}
}

func TestMoveFileRefusesExistingTarget(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src", []byte("new"), 0o644)
	writeFile(t, fsys, "/dst", []byte("old"), 0o644)

	if err := MoveFile(fsys, "/src", "/dst"); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if ok, _ := afero.Exists(fsys, "/src"); !ok {
		t.Fatal("source removed despite refused move")
	}
}
