package logging

import (
	"context"
	"log/slog"

	"imagecollect/internal/pipeline"
)

const (
	FieldComponent = "component"
	FieldStage     = "stage"
	// FieldRunID identifies one CLI invocation.
	FieldRunID     = "run_id"
	FieldPath      = "path"
	// FieldEventType classifies a line for filtering, e.g. "organize_target_exists".
	FieldEventType = "event_type"
	// FieldErrorHint is the next step a user should take.
	FieldErrorHint = "error_hint"
	// FieldImpact says what the user loses when a warning fires.
	FieldImpact    = "impact"
)

// WithContext tags logger with the stage and run id carried by ctx, if any.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if stage, ok := pipeline.StageFromContext(ctx); ok {
		args = append(args, slog.String(FieldStage, stage))
	}
	if id, ok := pipeline.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
