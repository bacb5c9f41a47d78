package analyze

import (
	"context"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
	"github.com/mvp-joe/repolens/internal/source"
)

// Result is the outcome for one input file. Every input yields exactly one
// Result: either a cache entry (possibly with degraded-status artifacts) or
// a skip reason. Files are never silently dropped.
type Result struct {
	Path     string
	Identity *FileIdentity
	Entry    *cache.Entry
	Skipped  string // non-empty when no entry was produced
}

// Stats summarizes one analysis run.
type Stats struct {
	Files     int
	Computed  int
	CacheHits int
	Skipped   int
	Duration  time.Duration
}

// ProgressReporter receives engine progress callbacks.
type ProgressReporter interface {
	OnAnalysisStart(totalFiles int)
	OnFileDone(path string)
	OnAnalysisComplete(stats Stats)
}

// NoOpProgressReporter ignores all progress events.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnAnalysisStart(int)      {}
func (NoOpProgressReporter) OnFileDone(string)        {}
func (NoOpProgressReporter) OnAnalysisComplete(Stats) {}

// Engine coordinates the per-file pipeline: fingerprint, cache lookup, and
// on miss, minimap extraction and lint orchestration in parallel. Downstream
// consumers read only cache entries; nothing else triggers analysis.
type Engine struct {
	provider      *source.Provider
	registry      *minimap.Registry
	linter        *lint.Orchestrator
	cache         *cache.Cache
	configVersion string
	workers       int
	progress      ProgressReporter
}

// NewEngine wires an analysis engine. workers bounds files analyzed in
// parallel; 0 selects GOMAXPROCS.
func NewEngine(
	provider *source.Provider,
	registry *minimap.Registry,
	linter *lint.Orchestrator,
	annotations *cache.Cache,
	configVersion string,
	workers int,
	progress ProgressReporter,
) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if progress == nil {
		progress = NoOpProgressReporter{}
	}
	return &Engine{
		provider:      provider,
		registry:      registry,
		linter:        linter,
		cache:         annotations,
		configVersion: configVersion,
		workers:       workers,
		progress:      progress,
	}
}

// AnalyzeAll analyzes every candidate path and returns one Result per input,
// in input order. Degraded conditions surface as artifact statuses or skip
// reasons; only cancellation aborts the batch.
func (e *Engine) AnalyzeAll(ctx context.Context, paths []string) ([]*Result, *Stats, error) {
	start := time.Now()
	e.progress.OnAnalysisStart(len(paths))

	runID := uuid.NewString()
	e.recordRun(runID)

	var computed atomic.Int64
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, relPath := range paths {
		g.Go(func() error {
			res, err := e.analyzeOne(gctx, relPath, &computed)
			if err != nil {
				return err
			}
			results[i] = res
			e.progress.OnFileDone(relPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &Stats{
		Files:    len(paths),
		Computed: int(computed.Load()),
		Duration: time.Since(start),
	}
	for _, res := range results {
		if res.Skipped != "" {
			stats.Skipped++
		}
	}
	stats.CacheHits = stats.Files - stats.Skipped - stats.Computed

	e.progress.OnAnalysisComplete(*stats)
	return results, stats, nil
}

// analyzeOne produces the Result for a single file. Unreadable or binary
// content is recorded as a skip, never an aborted batch.
func (e *Engine) analyzeOne(ctx context.Context, relPath string, computed *atomic.Int64) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := e.provider.Read(relPath)
	if err != nil {
		return &Result{Path: relPath, Skipped: "unreadable: " + err.Error()}, nil
	}

	id := IdentityAt(relPath, content.Bytes, content.ModTime)
	if content.Binary {
		return &Result{Path: relPath, Identity: &id, Skipped: "binary or oversized content"}, nil
	}

	lang := source.DetectLanguage(relPath)
	key := cache.Key(relPath, id.Fingerprint, e.configVersion)

	entry, err := e.cache.GetOrCompute(ctx, key, func(cctx context.Context) (*cache.Entry, error) {
		computed.Add(1)
		return e.compute(cctx, id, content, lang, key)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Path: relPath, Identity: &id, Entry: entry}, nil
}

// compute runs minimap extraction and lint orchestration for one cache miss.
// The two halves are independent and run in parallel. A canceled context
// aborts before any partial entry reaches the store.
func (e *Engine) compute(ctx context.Context, id FileIdentity, content *source.Content, lang, key string) (*cache.Entry, error) {
	var (
		mm      *minimap.Minimap
		overlay *lint.Overlay
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mm = e.registry.Extract(id.Path, content.Text, lang)
		return nil
	})
	g.Go(func() error {
		overlay = e.linter.Run(gctx, id.Path, content.AbsPath, lang)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &cache.Entry{
		Key:           key,
		Path:          id.Path,
		Fingerprint:   id.Fingerprint,
		ConfigVersion: e.configVersion,
		Minimap:       mm,
		Heatmap:       overlay,
		WrittenAt:     time.Now(),
	}, nil
}

func (e *Engine) recordRun(runID string) {
	if err := e.cache.RecordRun(runID); err != nil {
		log.Printf("analyze: run history not recorded: %v", err)
	}
}
