package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDedup(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Logging.ToFile && c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set when logging.to_file is enabled")
	}
	return nil
}

func (c *Config) validateDedup() error {
	if err := validateHashSize("dedup.coarse_hash_size", c.Dedup.CoarseHashSize); err != nil {
		return err
	}
	if err := validateHashSize("dedup.precise_hash_size", c.Dedup.PreciseHashSize); err != nil {
		return err
	}
	if c.Dedup.HighfreqFactor < 1 {
		return errors.New("dedup.highfreq_factor must be at least 1")
	}
	if side := c.Dedup.PreciseHashSize * c.Dedup.HighfreqFactor; !isPowerOfTwo(side) {
		return fmt.Errorf("dedup.precise_hash_size * dedup.highfreq_factor must be a power of two, got %d", side)
	}
	if c.Dedup.Workers < 0 {
		return errors.New("dedup.workers must be 0 (all CPUs) or positive")
	}
	if !isPlainName(c.Dedup.DupDirName) {
		return fmt.Errorf("dedup.dup_dir_name must be a plain directory name, got %q", c.Dedup.DupDirName)
	}
	return nil
}

func validateHashSize(key string, size int) error {
	if size < 8 || size%8 != 0 {
		return fmt.Errorf("%s must be a positive multiple of 8, got %d", key, size)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func (c *Config) validateOrganize() error {
	prev := 0
	for i, height := range c.Organize.Heights {
		if height <= 0 {
			return fmt.Errorf("organize.heights[%d] must be positive", i)
		}
		if height <= prev {
			return fmt.Errorf("organize.heights must be strictly ascending (index %d)", i)
		}
		prev = height
	}
	seen := make(map[string]struct{}, len(c.Organize.Ratios))
	for i, ratio := range c.Organize.Ratios {
		if ratio.Width <= 0 || ratio.Height <= 0 {
			return fmt.Errorf("organize.ratios[%d] must have positive width and height", i)
		}
		if ratio.Name == "" {
			return fmt.Errorf("organize.ratios[%d].name must be set", i)
		}
		if !isPlainName(ratio.Name) {
			return fmt.Errorf("organize.ratios[%d].name must be a plain directory name, got %q", i, ratio.Name)
		}
		if _, dup := seen[ratio.Name]; dup {
			return fmt.Errorf("organize.ratios[%d].name %q is duplicated", i, ratio.Name)
		}
		seen[ratio.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// isPlainName reports whether name is a single path element that stays
// inside its parent directory.
func isPlainName(name string) bool {
	return name == filepath.Base(name) && name != "." && name != ".."
}
