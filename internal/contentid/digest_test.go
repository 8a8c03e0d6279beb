package contentid

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestDigestKnownValue(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/a.bin", []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Digest(context.Background(), fsys, "/a.bin")
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("Digest = %s, want %s", got, want)
	}
}

func TestDigestChangesWithContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	big := strings.Repeat("x", chunkSize*2+17)
	if err := afero.WriteFile(fsys, "/a.bin", []byte(big), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := Digest(context.Background(), fsys, "/a.bin")
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if err := afero.WriteFile(fsys, "/a.bin", []byte(big+"y"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := Digest(context.Background(), fsys, "/a.bin")
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if first == second {
		t.Fatal("expected digest to change after content change")
	}
}

func TestDigestCanceled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/a.bin", []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Digest(ctx, fsys, "/a.bin"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDigestMissingFile(t *testing.T) {
	if _, err := Digest(context.Background(), afero.NewMemMapFs(), "/missing"); err == nil {
		t.Fatal("expected error")
	}
}
