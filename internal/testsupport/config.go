package testsupport

import (
	"path/filepath"
	"testing"

	"imagecollect/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithVerify toggles content verification for the duplicate finder.
func WithVerify(verify bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dedup.Verify = verify
	}
}

// WithWorkers sets the fingerprint worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dedup.Workers = n
	}
}

// WithMove makes the organizer move instead of copy.
func WithMove() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.Copy = false
	}
}
