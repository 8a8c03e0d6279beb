package pipeline

import (
	"context"
	"testing"
)

func TestContextAnnotations(t *testing.T) {
	ctx := context.Background()
	if _, ok := StageFromContext(ctx); ok {
		t.Fatal("expected no stage on empty context")
	}
	ctx = WithStage(ctx, "precise")
	ctx = WithRunID(ctx, "run-1")
	if stage, ok := StageFromContext(ctx); !ok || stage != "precise" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if id, ok := RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id = %q, %v", id, ok)
	}
	if WithStage(ctx, "") != ctx {
		t.Fatal("empty stage should return the same context")
	}
}
