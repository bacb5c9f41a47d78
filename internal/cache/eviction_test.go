package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST PLAN: Cache Eviction
//
// Eviction removes entries unread since the Nth-most-recent run, then
// trims least-recently-read entries until the store fits its byte budget.
//
// Test Cases:
// 1. Entries unread across the run horizon are removed
// 2. Recently read entries survive the run-horizon pass
// 3. Byte budget pass removes oldest-read entries first
// 4. Fewer runs than the horizon means no run-based eviction
// 5. Eviction on an empty store is a no-op

// backdate moves an entry's read stamp into the past.
func backdate(t *testing.T, s *Store, key string, age time.Duration) {
	t.Helper()
	_, err := s.db.Exec(`UPDATE entries SET last_read_at = ? WHERE cache_key = ?`,
		time.Now().Add(-age).UnixNano(), key)
	require.NoError(t, err)
}

func recordRuns(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.RecordRun(fmt.Sprintf("run-%d", i)))
	}
}

func TestEvict_StaleEntriesRemoved(t *testing.T) {
	t.Parallel()

	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(testEntry("stale", "old.py")))
	backdate(t, store, "stale", time.Hour)
	recordRuns(t, store, 3)
	require.NoError(t, store.Put(testEntry("fresh", "new.py")))

	result, err := store.Evict(EvictionPolicy{MaxRuns: 3, MaxBytes: 1 << 30})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Removed)

	_, ok := store.Get("stale")
	assert.False(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
}

func TestEvict_ByteBudget(t *testing.T) {
	t.Parallel()

	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("k%02d", i)
		require.NoError(t, store.Put(testEntry(key, fmt.Sprintf("f%02d.py", i))))
		// Older keys read longer ago.
		backdate(t, store, key, time.Duration(50-i)*time.Minute)
	}

	_, before, err := store.Stats()
	require.NoError(t, err)

	result, err := store.Evict(EvictionPolicy{MaxBytes: before / 2})
	require.NoError(t, err)
	assert.Greater(t, result.Removed, int64(0))

	_, after, err := store.Stats()
	require.NoError(t, err)
	assert.LessOrEqual(t, after, before/2)

	// The most recently read entry survives.
	_, ok := store.Get("k49")
	assert.True(t, ok)
}

func TestEvict_TooFewRuns(t *testing.T) {
	t.Parallel()

	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(testEntry("k1", "a.py")))
	backdate(t, store, "k1", time.Hour)
	recordRuns(t, store, 2)

	result, err := store.Evict(EvictionPolicy{MaxRuns: 10, MaxBytes: 1 << 30})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Removed)
}

func TestEvict_EmptyStore(t *testing.T) {
	t.Parallel()

	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	result, err := store.Evict(DefaultEvictionPolicy())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Removed)
}
