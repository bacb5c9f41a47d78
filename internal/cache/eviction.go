package cache

import (
	"fmt"
	"time"
)

// EvictionPolicy controls what gets evicted from the annotation store.
// Entries are immutable, so eviction is always delete-whole-row; a reader
// racing an eviction sees either the full entry or a clean miss.
type EvictionPolicy struct {
	MaxRuns  int   // evict entries unread across the last N runs (default: 10)
	MaxBytes int64 // delete oldest-read entries until under this (default: 256 MiB)
}

// DefaultEvictionPolicy returns the default eviction policy.
func DefaultEvictionPolicy() EvictionPolicy {
	return EvictionPolicy{
		MaxRuns:  10,
		MaxBytes: 256 << 20,
	}
}

// EvictionResult contains statistics about an eviction pass.
type EvictionResult struct {
	Removed    int64
	FreedBytes int64
	Duration   time.Duration
}

// Evict removes stale entries in two passes: first everything unread since
// the start of the Nth-most-recent run, then oldest-read entries until the
// store fits the byte budget. Run history itself is trimmed at the end.
func (s *Store) Evict(policy EvictionPolicy) (*EvictionResult, error) {
	start := time.Now()
	result := &EvictionResult{}

	if policy.MaxRuns > 0 {
		var horizon int64
		row := s.db.QueryRow(
			`SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1 OFFSET ?`,
			policy.MaxRuns-1)
		if err := row.Scan(&horizon); err == nil {
			res, err := s.db.Exec(
				`DELETE FROM entries WHERE last_read_at < ?`, horizon)
			if err != nil {
				return nil, fmt.Errorf("evict stale entries: %w", err)
			}
			removed, _ := res.RowsAffected()
			result.Removed += removed
		}
	}

	if policy.MaxBytes > 0 {
		_, total, err := s.Stats()
		if err != nil {
			return nil, err
		}
		for total > policy.MaxBytes {
			removed, freed, err := s.evictOldestBatch()
			if err != nil {
				return nil, err
			}
			if removed == 0 {
				break
			}
			result.Removed += removed
			result.FreedBytes += freed
			total -= freed
		}
	}

	// Trim run history well past the policy horizon.
	if policy.MaxRuns > 0 {
		_, _ = s.db.Exec(
			`DELETE FROM runs WHERE run_id NOT IN
			 (SELECT run_id FROM runs ORDER BY started_at DESC LIMIT ?)`,
			policy.MaxRuns*2)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// evictOldestBatch deletes the 32 least recently read entries.
func (s *Store) evictOldestBatch() (removed int64, freed int64, err error) {
	row := s.db.QueryRow(
		`SELECT COALESCE(SUM(size_bytes), 0) FROM entries WHERE cache_key IN
		 (SELECT cache_key FROM entries ORDER BY last_read_at ASC LIMIT 32)`)
	if err := row.Scan(&freed); err != nil {
		return 0, 0, fmt.Errorf("size eviction batch: %w", err)
	}

	res, err := s.db.Exec(
		`DELETE FROM entries WHERE cache_key IN
		 (SELECT cache_key FROM entries ORDER BY last_read_at ASC LIMIT 32)`)
	if err != nil {
		return 0, 0, fmt.Errorf("size eviction: %w", err)
	}
	removed, _ = res.RowsAffected()
	return removed, freed, nil
}
