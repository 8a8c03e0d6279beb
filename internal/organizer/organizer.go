package organizer

import (
	"log/slog"

	"github.com/spf13/afero"

	"imagecollect/internal/config"
	"imagecollect/internal/logging"
)

// Action is the filesystem operation applied to one file.
type Action string

const (
	ActionMove Action = "move"
	ActionCopy Action = "copy"
)

// Operation is one planned or executed file transfer.
type Operation struct {
	Source string
	Target string
	Action Action
}

// Skip records a file left in place and why.
type Skip struct {
	Path   string
	Reason string
}

// Organizer applies organization plans to a filesystem.
type Organizer struct {
	fs     afero.Fs
	cfg    *config.Config
	logger *slog.Logger
}

// NewOrganizer returns an Organizer working on fsys. A nil cfg uses the
// defaults.
func NewOrganizer(fsys afero.Fs, cfg *config.Config, logger *slog.Logger) *Organizer {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return &Organizer{
		fs:     fsys,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organizer"),
	}
}
