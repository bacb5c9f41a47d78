package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/repolens/internal/analyze"
	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
	"github.com/mvp-joe/repolens/internal/source"
)

// TEST PLAN: File Watcher
//
// The watcher debounces filesystem events and re-analyzes only candidate
// files. Ignored paths never wake the engine.
//
// Test Cases:
// 1. Writing a candidate file triggers analysis after the debounce window
// 2. Writing an ignored file does not trigger analysis
// 3. Event filtering accepts writes to candidates and rejects the rest
// 4. Stop is idempotent and terminates the event loop

// countingReporter counts completed analysis batches.
type countingReporter struct {
	analyze.NoOpProgressReporter
	batches atomic.Int64
}

func (c *countingReporter) OnAnalysisComplete(analyze.Stats) { c.batches.Add(1) }

func newWatchFixture(t *testing.T, rootDir string) (*Watcher, *countingReporter) {
	t.Helper()

	annotations, err := cache.New(nil, 64)
	require.NoError(t, err)
	t.Cleanup(func() { annotations.Close() })

	reporter := &countingReporter{}
	engine := analyze.NewEngine(
		source.NewProvider(rootDir, 0),
		minimap.NewRegistry(),
		lint.NewOrchestrator(nil, time.Second, 0),
		annotations,
		"cfgv1",
		2,
		reporter,
	)

	discovery, err := source.NewDiscovery(rootDir, []string{"**/*.py"}, []string{"**/ignored/**"})
	require.NoError(t, err)

	w, err := New(engine, discovery, rootDir)
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	return w, reporter
}

func waitForBatches(t *testing.T, reporter *countingReporter, want int64, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if reporter.batches.Load() >= want {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return reporter.batches.Load() >= want
}

func TestWatcher_AnalyzesOnChange(t *testing.T) {
	dir := t.TempDir()
	w, reporter := newWatchFixture(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0644))

	assert.True(t, waitForBatches(t, reporter, 1, 5*time.Second),
		"expected a re-analysis batch after the debounce window")
}

func TestWatcher_IgnoresFilteredPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ignored"), 0755))
	w, reporter := newWatchFixture(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored", "skip.py"), []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi\n"), 0644))

	assert.False(t, waitForBatches(t, reporter, 1, 1500*time.Millisecond),
		"non-candidate writes must not trigger analysis")
}

func TestWatcher_AcceptEvent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0644))
	w, _ := newWatchFixture(t, dir)

	rel, ok := w.acceptEvent(fsnotify.Event{Name: filepath.Join(dir, "app.py"), Op: fsnotify.Write})
	assert.True(t, ok)
	assert.Equal(t, "app.py", rel)

	_, ok = w.acceptEvent(fsnotify.Event{Name: filepath.Join(dir, "app.py"), Op: fsnotify.Chmod})
	assert.False(t, ok)

	_, ok = w.acceptEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	assert.False(t, ok)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, _ := newWatchFixture(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Stop()
	w.Stop()
}
