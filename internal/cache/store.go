package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
)

// Store is the durable half of the annotation cache: a SQLite database in
// the process-wide cache directory. Rows are immutable values addressed by
// content, so concurrent writers racing on the same key write identical
// bytes and the loser's REPLACE is a harmless no-op.
type Store struct {
	db   *sql.DB
	path string
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS entries (
	cache_key      TEXT PRIMARY KEY,
	path           TEXT NOT NULL,
	fingerprint    TEXT NOT NULL,
	config_version TEXT NOT NULL,
	minimap        TEXT,
	heatmap        TEXT,
	written_at     INTEGER NOT NULL,
	last_read_at   INTEGER NOT NULL,
	size_bytes     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_last_read ON entries(last_read_at);

CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL
);
`

// OpenStore opens (creating if needed) the annotation database under dir.
// WAL mode keeps concurrent readers from blocking the writer.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dbPath := filepath.Join(dir, "annotations.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get looks an entry up by key. Any storage or decode failure reads as a
// miss so corruption degrades to recomputation, never a fatal error.
// A hit refreshes the read stamp used by eviction.
func (s *Store) Get(key string) (*Entry, bool) {
	row := s.db.QueryRow(
		`SELECT path, fingerprint, config_version, minimap, heatmap, written_at
		 FROM entries WHERE cache_key = ?`, key)

	var (
		entry       Entry
		minimapJSON sql.NullString
		heatmapJSON sql.NullString
		writtenAt   int64
	)
	if err := row.Scan(&entry.Path, &entry.Fingerprint, &entry.ConfigVersion,
		&minimapJSON, &heatmapJSON, &writtenAt); err != nil {
		return nil, false
	}

	entry.Key = key
	entry.WrittenAt = time.Unix(0, writtenAt)

	if minimapJSON.Valid && minimapJSON.String != "" {
		var m minimap.Minimap
		if err := json.Unmarshal([]byte(minimapJSON.String), &m); err != nil {
			return nil, false
		}
		entry.Minimap = &m
	}
	if heatmapJSON.Valid && heatmapJSON.String != "" {
		var h lint.Overlay
		if err := json.Unmarshal([]byte(heatmapJSON.String), &h); err != nil {
			return nil, false
		}
		entry.Heatmap = &h
	}

	s.Touch(key)
	return &entry, true
}

// Touch refreshes an entry's read stamp. Best effort.
func (s *Store) Touch(key string) {
	_, _ = s.db.Exec(`UPDATE entries SET last_read_at = ? WHERE cache_key = ?`,
		time.Now().UnixNano(), key)
}

// Put writes an entry. REPLACE semantics make racing writers idempotent:
// both compute identical deterministic output for the same key.
func (s *Store) Put(entry *Entry) error {
	var minimapJSON, heatmapJSON []byte
	var err error

	if entry.Minimap != nil {
		if minimapJSON, err = json.Marshal(entry.Minimap); err != nil {
			return fmt.Errorf("encode minimap: %w", err)
		}
	}
	if entry.Heatmap != nil {
		if heatmapJSON, err = json.Marshal(entry.Heatmap); err != nil {
			return fmt.Errorf("encode heatmap: %w", err)
		}
	}

	now := time.Now().UnixNano()
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO entries
		 (cache_key, path, fingerprint, config_version, minimap, heatmap, written_at, last_read_at, size_bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Key, entry.Path, entry.Fingerprint, entry.ConfigVersion,
		string(minimapJSON), string(heatmapJSON), now, now,
		int64(len(minimapJSON)+len(heatmapJSON)))
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// All streams every stored entry, in path order. Used to build the query
// index for the current session.
func (s *Store) All() ([]*Entry, error) {
	rows, err := s.db.Query(`SELECT cache_key FROM entries ORDER BY path, cache_key`)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(keys))
	for _, key := range keys {
		if entry, ok := s.Get(key); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// RecordRun stamps the start of an analysis run. Run history is what lets
// eviction reason about "unread across the last N runs".
func (s *Store) RecordRun(runID string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO runs (run_id, started_at) VALUES (?, ?)`,
		runID, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Stats returns the entry count and stored payload bytes.
func (s *Store) Stats() (count int64, bytes int64, err error) {
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM entries`)
	if err := row.Scan(&count, &bytes); err != nil {
		return 0, 0, fmt.Errorf("cache stats: %w", err)
	}
	return count, bytes, nil
}
