package preflight

import (
	"strings"

	"imagecollect/internal/config"
	"imagecollect/internal/pipeline"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks that apply to cfg. Free space is
// checked only for a usable cache directory, and the log directory only when
// file logging is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir)}
	if results[0].Passed {
		results = append(results, CheckFreeSpace("Cache free space", cfg.Paths.CacheDir, minCacheFree))
	}
	if cfg.Logging.ToFile {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Err folds failed results into one configuration error, or returns nil
// when every check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return pipeline.Wrap(pipeline.ErrConfiguration, "preflight", "check directories", strings.Join(failed, "; "), nil)
}
