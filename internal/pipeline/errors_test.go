package pipeline_test

import (
	"errors"
	"strings"
	"testing"

	"imagecollect/internal/pipeline"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := pipeline.Wrap(pipeline.ErrImage, "coarse", "decode", "/photos/a.jpg", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, pipeline.ErrImage) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"coarse", "decode", "/photos/a.jpg", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := pipeline.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, pipeline.ErrFilesystem) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", pipeline.Wrap(pipeline.ErrValidation, "organize", "target", "not a directory", nil), 2},
		{"configuration", pipeline.Wrap(pipeline.ErrConfiguration, "config", "load", "bad", nil), 2},
		{"cache", pipeline.Wrap(pipeline.ErrCache, "cache", "open", "locked", nil), 1},
		{"plain", errors.New("other"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pipeline.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
