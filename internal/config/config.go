package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Cache contains configuration for the persistent fingerprint cache.
type Cache struct {
	// TagIndex creates an index on the entry tag column so per-algorithm
	// eviction does not scan the whole table.
	TagIndex bool `toml:"tag_index"`
}

// Dedup contains configuration for the two-pass duplicate finder.
type Dedup struct {
	CoarseHashSize  int    `toml:"coarse_hash_size"`
	PreciseHashSize int    `toml:"precise_hash_size"`
	HighfreqFactor  int    `toml:"highfreq_factor"`
	Verify          bool   `toml:"verify"`
	Workers         int    `toml:"workers"`
	DupDirName      string `toml:"dup_dir_name"`
}

// Ratio names an aspect ratio bucket as width:height.
type Ratio struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Name   string `toml:"name"`
}

// Value returns the ratio as width divided by height.
func (r Ratio) Value() float64 {
	return float64(r.Width) / float64(r.Height)
}

// Organize contains configuration for the ratio/resolution organizer.
type Organize struct {
	Copy            bool    `toml:"copy"`
	ExifOrientation bool    `toml:"exif_orientation"`
	Heights         []int   `toml:"heights"`
	Ratios          []Ratio `toml:"ratios"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// Config encapsulates all configuration values for imagecollect.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories
//   - Cache: fingerprint cache storage options
//   - Dedup: hash widths, verification and worker count for duplicate search
//   - Organize: aspect ratio and height buckets plus copy/move behavior
//   - Logging: log format, level and file output
type Config struct {
	Paths    Paths    `toml:"paths"`
	Cache    Cache    `toml:"cache"`
	Dedup    Dedup    `toml:"dedup"`
	Organize Organize `toml:"organize"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/imagecollect/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Array tables append to existing slices; normalize restores the
		// default buckets when the file does not define its own.
		cfg.Organize.Heights = nil
		cfg.Organize.Ratios = nil

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("imagecollect.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache directory, and the log directory when
// file logging is enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.CacheDir}
	if c.Logging.ToFile {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogFilePath returns the log file location, or "" when file logging is off.
func (c *Config) LogFilePath() string {
	if !c.Logging.ToFile || strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "imagecollect.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "imagecollect")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/imagecollect"
	}
	return filepath.Join(home, ".cache", "imagecollect")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
