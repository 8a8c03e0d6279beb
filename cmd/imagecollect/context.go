package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"imagecollect/internal/config"
	"imagecollect/internal/fpcache"
	"imagecollect/internal/logging"
	"imagecollect/internal/pipeline"
	"imagecollect/internal/preflight"
)

type commandContext struct {
	configFlag   string
	cacheDirFlag string
	logLevelFlag string

	fs    afero.Fs
	runID string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	logger    *slog.Logger
	logCloser io.Closer
}

func newCommandContext() *commandContext {
	return &commandContext{
		fs:    afero.NewOsFs(),
		runID: uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "load", path, err)
			return
		}
		if dir := strings.TrimSpace(c.cacheDirFlag); dir != "" {
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "cache dir", dir, err)
				return
			}
			cfg.Paths.CacheDir = expanded
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "validate", path, err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// loggerFor builds the run logger on first use. Console output goes to the
// command's stderr so stdout carries only results.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	stderr := cmd.ErrOrStderr()
	logger, closer, err := logging.NewFromConfig(cfg, c.runID, stderr, isTerminal(stderr))
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "logging", "init logger", "", err)
	}
	c.logger = logger
	c.logCloser = closer
	return logger, nil
}

// openCache runs the directory preflight and opens the fingerprint cache.
// The caller owns the returned cache and must close it.
func (c *commandContext) openCache(ctx context.Context, cmd *cobra.Command) (*fpcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return nil, err
	}
	if err := preflight.Err(preflight.RunAll(cfg)); err != nil {
		return nil, err
	}
	cache, err := fpcache.Open(ctx, cfg.Paths.CacheDir, fpcache.Options{
		TagIndex: cfg.Cache.TagIndex,
		Logger:   logger,
	})
	if err != nil {
		if errors.Is(err, fpcache.ErrLocked) {
			logging.ErrorWithContext(logger, "fingerprint cache busy", "cache_locked",
				logging.String("cache_dir", cfg.Paths.CacheDir),
				logging.String(logging.FieldErrorHint, "wait for the other imagecollect process or pass --cache-dir"),
			)
		}
		return nil, err
	}
	return cache, nil
}

func (c *commandContext) commandContextFor(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return pipeline.WithRunID(ctx, c.runID)
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
		c.logCloser = nil
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
