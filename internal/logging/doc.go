// Package logging assembles structured slog loggers and formatting helpers used
// across imagecollect.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the current stage and run identifier. When file logging is
// enabled every record is duplicated to a JSON log next to the console
// stream. A no-op logger is provided for tests.
package logging
