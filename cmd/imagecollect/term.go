package main

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"imagecollect/internal/dedup"
)

const progressThrottle = 65 * time.Millisecond

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// passProgress draws one progress bar per duplicate search pass. It is a
// no-op unless the writer is a terminal.
type passProgress struct {
	out     io.Writer
	enabled bool

	mu    sync.Mutex
	stage dedup.Stage
	bar   *progressbar.ProgressBar
}

func newPassProgress(out io.Writer) *passProgress {
	return &passProgress{out: out, enabled: isTerminal(out)}
}

// update satisfies dedup.ProgressFunc.
func (p *passProgress) update(stage dedup.Stage, _, total int) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil || p.stage != stage {
		if p.bar != nil {
			_ = p.bar.Finish()
		}
		p.stage = stage
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(passLabel(stage)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(progressThrottle),
		)
	}
	_ = p.bar.Add(1)
}

func (p *passProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

func passLabel(stage dedup.Stage) string {
	switch stage {
	case dedup.StageCoarse:
		return "Coarse hashing"
	case dedup.StagePrecise:
		return "Precise hashing"
	default:
		return string(stage)
	}
}
