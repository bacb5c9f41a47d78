package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/repolens/internal/analyze"
	"github.com/mvp-joe/repolens/internal/source"
)

// Watcher observes the project tree and re-runs analysis for changed files
// after a quiet period. Events for ignored paths never wake the engine.
type Watcher struct {
	engine    *analyze.Engine
	discovery *source.Discovery
	rootDir   string
	fsw       *fsnotify.Watcher
	debounce  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	stopOnce  sync.Once
}

// New creates a watcher over rootDir. Every non-ignored directory in the
// tree is registered up front; directories created later are added as their
// create events arrive.
func New(engine *analyze.Engine, discovery *source.Discovery, rootDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		engine:    engine,
		discovery: discovery,
		rootDir:   rootDir,
		fsw:       fsw,
		debounce:  500 * time.Millisecond,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	if err := w.watchTree(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins processing events until the context is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) {
	w.started = true
	go w.run(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.started {
			<-w.doneCh
		}
		w.fsw.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	analyzeCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			relPath, accept := w.acceptEvent(event)
			if !accept {
				continue
			}
			changed[relPath] = true

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchTree(event.Name); err != nil {
						log.Printf("watch: failed to add directory %s: %v", event.Name, err)
					}
				}
			}

			if timer != nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case analyzeCh <- struct{}{}:
				default:
				}
			})

		case <-analyzeCh:
			w.reanalyze(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) reanalyze(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}

	paths := make([]string, 0, len(changed))
	for p := range changed {
		if _, err := os.Stat(filepath.Join(w.rootDir, filepath.FromSlash(p))); err != nil {
			continue // deleted since the event fired
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return
	}

	log.Printf("watch: analyzing %d changed file(s)", len(paths))
	start := time.Now()

	_, stats, err := w.engine.AnalyzeAll(ctx, paths)
	if err != nil {
		log.Printf("watch: analysis failed: %v", err)
		return
	}
	log.Printf("watch: done in %v (%d computed, %d cached)",
		time.Since(start).Round(time.Millisecond), stats.Computed, stats.CacheHits)
}

// acceptEvent filters raw fsnotify events down to candidate files.
func (w *Watcher) acceptEvent(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return "", false
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return "", false
	}
	relPath = filepath.ToSlash(relPath)

	if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
		return "", false
	}
	if !w.discovery.Candidate(relPath) {
		return "", false
	}
	return relPath, true
}

// watchTree registers root and every non-ignored directory under it.
func (w *Watcher) watchTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("watch: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(w.rootDir, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath != "." && w.discovery.Ignored(relPath) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			log.Printf("watch: failed to watch %s: %v", path, err)
		}
		return nil
	})
}
