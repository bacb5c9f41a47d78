package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
	"github.com/mvp-joe/repolens/internal/source"
)

// TEST PLAN: Analysis Engine
//
// The engine fingerprints each candidate, consults the cache, and on a miss
// runs minimap extraction and lint orchestration. Unreadable and binary
// files are skips, not failures; repeat analysis of unchanged content is a
// cache hit.
//
// Test Cases:
// 1. End-to-end: a Python file yields an ok minimap with its symbols
// 2. Unchanged content is a cache hit on the second run
// 3. Changed content recomputes; reverted content hits the old entry
// 4. Distinct paths with identical bytes each keep their own entry
// 5. Binary content is skipped with a reason
// 6. Missing files are skipped with a reason
// 7. Results come back in input order
// 8. Cancellation aborts the batch with an error

func newTestEngine(t *testing.T, rootDir string) *Engine {
	t.Helper()
	annotations, err := cache.New(nil, 64)
	require.NoError(t, err)
	t.Cleanup(func() { annotations.Close() })

	return NewEngine(
		source.NewProvider(rootDir, 0),
		minimap.NewRegistry(),
		lint.NewOrchestrator(nil, time.Second, 0),
		annotations,
		"cfgv1",
		2,
		nil,
	)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestEngine_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.py", "def handler(event):\n    return event\n")
	e := newTestEngine(t, dir)

	results, stats, err := e.AnalyzeAll(context.Background(), []string{"app.py"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Empty(t, res.Skipped)
	assert.False(t, res.Identity.ModTime.IsZero())
	require.NotNil(t, res.Entry)
	require.NotNil(t, res.Entry.Minimap)
	assert.Equal(t, minimap.StatusOK, res.Entry.Minimap.Status)
	require.Len(t, res.Entry.Minimap.Symbols, 1)
	assert.Equal(t, "handler", res.Entry.Minimap.Symbols[0].Name)

	assert.Equal(t, 1, stats.Computed)
	assert.Equal(t, 0, stats.CacheHits)
}

func TestEngine_CacheHitOnRepeat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.py", "def handler(event):\n    return event\n")
	e := newTestEngine(t, dir)

	_, first, err := e.AnalyzeAll(context.Background(), []string{"app.py"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Computed)

	_, second, err := e.AnalyzeAll(context.Background(), []string{"app.py"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Computed)
	assert.Equal(t, 1, second.CacheHits)
}

func TestEngine_ChangeAndRevert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := "def handler(event):\n    return event\n"
	writeFile(t, dir, "app.py", original)
	e := newTestEngine(t, dir)

	_, s1, err := e.AnalyzeAll(context.Background(), []string{"app.py"})
	require.NoError(t, err)
	assert.Equal(t, 1, s1.Computed)

	writeFile(t, dir, "app.py", "def handler(event):\n    return None\n")
	_, s2, err := e.AnalyzeAll(context.Background(), []string{"app.py"})
	require.NoError(t, err)
	assert.Equal(t, 1, s2.Computed)

	// Reverting restores the original fingerprint; its entry is still cached.
	writeFile(t, dir, "app.py", original)
	_, s3, err := e.AnalyzeAll(context.Background(), []string{"app.py"})
	require.NoError(t, err)
	assert.Equal(t, 0, s3.Computed)
	assert.Equal(t, 1, s3.CacheHits)
}

func TestEngine_IdenticalContentDistinctPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a/dup.py", "def handler(event):\n    return event\n")
	writeFile(t, dir, "b/dup.py", "def handler(event):\n    return event\n")

	store, err := cache.OpenStore(t.TempDir())
	require.NoError(t, err)
	annotations, err := cache.New(store, 64)
	require.NoError(t, err)
	t.Cleanup(func() { annotations.Close() })

	e := NewEngine(
		source.NewProvider(dir, 0),
		minimap.NewRegistry(),
		lint.NewOrchestrator(nil, time.Second, 0),
		annotations,
		"cfgv1",
		2,
		nil,
	)

	results, stats, err := e.AnalyzeAll(context.Background(), []string{"a/dup.py", "b/dup.py"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Same bytes, so the same fingerprint, but each path keeps its own entry.
	assert.Equal(t, results[0].Identity.Fingerprint, results[1].Identity.Fingerprint)
	assert.Equal(t, "a/dup.py", results[0].Entry.Path)
	assert.Equal(t, "b/dup.py", results[1].Entry.Path)
	assert.Equal(t, 2, stats.Computed)

	entries, err := store.All()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEngine_SkipsBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.py"), []byte{0x00, 0x01, 0x02}, 0644))
	e := newTestEngine(t, dir)

	results, stats, err := e.AnalyzeAll(context.Background(), []string{"blob.py"})
	require.NoError(t, err)

	assert.NotEmpty(t, results[0].Skipped)
	assert.Nil(t, results[0].Entry)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Computed)
}

func TestEngine_SkipsMissing(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, t.TempDir())

	results, stats, err := e.AnalyzeAll(context.Background(), []string{"ghost.py"})
	require.NoError(t, err)

	assert.Contains(t, results[0].Skipped, "unreadable")
	assert.Equal(t, 1, stats.Skipped)
}

func TestEngine_InputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "a = 1\n")
	writeFile(t, dir, "b.py", "b = 2\n")
	writeFile(t, dir, "c.py", "c = 3\n")
	e := newTestEngine(t, dir)

	results, _, err := e.AnalyzeAll(context.Background(), []string{"c.py", "a.py", "b.py"})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "c.py", results[0].Path)
	assert.Equal(t, "a.py", results[1].Path)
	assert.Equal(t, "b.py", results[2].Path)
}

func TestEngine_Cancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "a = 1\n")
	e := newTestEngine(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.AnalyzeAll(ctx, []string{"a.py"})
	assert.Error(t, err)
}
