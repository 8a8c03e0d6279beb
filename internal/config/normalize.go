package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDedup()
	c.normalizeOrganize()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("IMAGECOLLECT_CACHE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CacheDir = value
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	var err error
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDedup() {
	c.Dedup.DupDirName = strings.TrimSpace(c.Dedup.DupDirName)
	if c.Dedup.DupDirName == "" {
		c.Dedup.DupDirName = defaultDupDirName
	}
}

func (c *Config) normalizeOrganize() {
	if len(c.Organize.Heights) == 0 {
		c.Organize.Heights = append([]int(nil), DefaultHeights...)
	}
	if len(c.Organize.Ratios) == 0 {
		c.Organize.Ratios = append([]Ratio(nil), DefaultRatios...)
	}
	for i := range c.Organize.Ratios {
		c.Organize.Ratios[i].Name = strings.TrimSpace(c.Organize.Ratios[i].Name)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
