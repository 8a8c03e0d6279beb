package fpcache

import (
	"context"
	"fmt"
	"os"
)

// AlgorithmStats summarizes the entries stored for one algorithm/params pair.
type AlgorithmStats struct {
	Algorithm string
	Params    string
	Entries   int
	Verified  int
}

// Stats returns entry counts grouped by algorithm and parameters, ordered by
// algorithm then parameters.
func (c *Cache) Stats(ctx context.Context) ([]AlgorithmStats, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT algorithm, params, COUNT(1), SUM(CASE WHEN digest != '' THEN 1 ELSE 0 END)
FROM fingerprints
GROUP BY algorithm, params
ORDER BY algorithm, params`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []AlgorithmStats
	for rows.Next() {
		var s AlgorithmStats
		if err := rows.Scan(&s.Algorithm, &s.Params, &s.Entries, &s.Verified); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// SizeBytes returns the on-disk size of the database including its WAL.
func (c *Cache) SizeBytes() (int64, error) {
	var total int64
	for _, suffix := range []string{"", "-wal", "-shm"} {
		info, err := os.Stat(c.path + suffix)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Evict removes every entry carrying tag, or every entry when tag is empty.
// It returns the number of entries removed.
func (c *Cache) Evict(ctx context.Context, tag string) (int64, error) {
	query := "DELETE FROM fingerprints"
	var args []any
	if tag != "" {
		query += " WHERE tag = ?"
		args = append(args, tag)
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := c.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("evict %q: %w", tag, err)
	}
	return removed, nil
}
