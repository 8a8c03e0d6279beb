package fpcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"imagecollect/internal/logging"
	"imagecollect/internal/pipeline"
)

const (
	dbFileName   = "fingerprints.db"
	lockFileName = "cache.lock"
)

// ErrLocked is returned by Open when another process holds the cache directory.
var ErrLocked = errors.New("cache directory is in use by another process")

// Options tune how the cache is opened.
type Options struct {
	// TagIndex creates an index on the entry tag column.
	TagIndex bool
	Logger   *slog.Logger
}

// Key addresses one cached fingerprint. Digest is the content identity the
// caller expects; empty means "accept whatever is stored".
type Key struct {
	Algorithm string
	Params    string
	Path      string
	Digest    string
}

// Tag groups entries for eviction. Entries are tagged with their algorithm.
func (k Key) Tag() string {
	return k.Algorithm
}

func (k Key) flightKey() string {
	return strings.Join([]string{k.Algorithm, k.Params, k.Path, k.Digest}, "\x00")
}

// Counters reports cache activity since Open.
type Counters struct {
	Hits     int64
	Computed int64
}

// Cache is a persistent fingerprint store rooted at a directory. A Cache is
// safe for concurrent use; at most one computation runs per identical key.
type Cache struct {
	dir    string
	path   string
	db     *sql.DB
	lock   *flock.Flock
	group  singleflight.Group
	logger *slog.Logger

	hits     atomic.Int64
	computed atomic.Int64
}

// Open creates dir if needed, takes the directory lock, and opens the
// fingerprint database. A database that cannot be read is reported as an
// error rather than silently replaced.
func Open(ctx context.Context, dir string, opts Options) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "cache", "open", "cache directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrCache, "cache", "open", "create cache directory", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrCache, "cache", "open", "acquire lock", err)
	}
	if !ok {
		return nil, pipeline.Wrap(pipeline.ErrCache, "cache", "open", dir, ErrLocked)
	}

	c := &Cache{
		dir:    dir,
		path:   filepath.Join(dir, dbFileName),
		lock:   lock,
		logger: logging.NewComponentLogger(opts.Logger, "fpcache"),
	}
	if err := c.openDB(ctx, opts.TagIndex); err != nil {
		_ = lock.Unlock()
		return nil, pipeline.Wrap(pipeline.ErrCache, "cache", "open", c.path, err)
	}
	c.logger.Debug("fingerprint cache opened",
		logging.String("path", c.path),
		logging.Bool("tag_index", opts.TagIndex),
	)
	return c, nil
}

func (c *Cache) openDB(ctx context.Context, tagIndex bool) error {
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps per-connection pragmas in effect for every query.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c.db = db
	if err := c.initSchema(ctx, tagIndex); err != nil {
		_ = db.Close()
		c.db = nil
		return err
	}
	return nil
}

// Close closes the database and releases the directory lock.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	if c.lock != nil {
		errs = append(errs, c.lock.Unlock())
	}
	return errors.Join(errs...)
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Counters returns hit and computation counts since Open.
func (c *Cache) Counters() Counters {
	return Counters{Hits: c.hits.Load(), Computed: c.computed.Load()}
}

// GetOrCompute returns the stored value for key, calling compute only when no
// entry exists or when key.Digest is set and differs from the stored digest.
// A computed value is written back under key.Digest, replacing any stale
// entry. Concurrent calls for the same key share a single computation.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func(context.Context) (string, error)) (string, error) {
	v, err, _ := c.group.Do(key.flightKey(), func() (any, error) {
		value, digest, found, err := c.lookup(ctx, key)
		if err != nil {
			return "", err
		}
		if found && (key.Digest == "" || key.Digest == digest) {
			c.hits.Add(1)
			return value, nil
		}
		if found {
			c.logger.Debug("stale fingerprint, recomputing",
				logging.String(logging.FieldPath, key.Path),
				logging.String("algorithm", key.Algorithm),
			)
		}

		value, err = compute(ctx)
		if err != nil {
			return "", err
		}
		c.computed.Add(1)
		if err := c.store(ctx, key, value); err != nil {
			return "", err
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) lookup(ctx context.Context, key Key) (value, digest string, found bool, err error) {
	err = retryOnBusy(ctx, func() error {
		row := c.db.QueryRowContext(ctx,
			"SELECT value, digest FROM fingerprints WHERE algorithm = ? AND params = ? AND path = ?",
			key.Algorithm, key.Params, key.Path,
		)
		return row.Scan(&value, &digest)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("lookup %s: %w", key.Path, err)
	}
	return value, digest, true, nil
}

func (c *Cache) store(ctx context.Context, key Key, value string) error {
	err := c.execWithRetry(ctx, `
INSERT INTO fingerprints (algorithm, params, path, digest, value, tag, computed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(algorithm, params, path) DO UPDATE SET
    digest = excluded.digest,
    value = excluded.value,
    tag = excluded.tag,
    computed_at = excluded.computed_at`,
		key.Algorithm, key.Params, key.Path, key.Digest, value, key.Tag(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", key.Path, err)
	}
	return nil
}
