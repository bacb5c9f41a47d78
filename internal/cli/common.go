package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/mvp-joe/repolens/internal/analyze"
	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/config"
	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
	"github.com/mvp-joe/repolens/internal/source"
)

// session bundles the wired components every subcommand needs.
type session struct {
	rootDir   string
	cfg       *config.Config
	provider  *source.Provider
	discovery *source.Discovery
	cache     *cache.Cache
	engine    *analyze.Engine
}

// newSession loads configuration for the working directory and wires the
// analysis pipeline. Callers must Close when done.
func newSession(progress analyze.ProgressReporter) (*session, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	provider := source.NewProvider(rootDir, cfg.Analysis.SizeCeiling)

	discovery, err := source.NewDiscovery(rootDir, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path patterns: %w", err)
	}

	cacheDir, err := cache.Location(cfg.Cache.Location, rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache location: %w", err)
	}
	store, err := cache.OpenStore(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation cache: %w", err)
	}
	annotations, err := cache.New(store, cfg.Cache.HotCapacity)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to build annotation cache: %w", err)
	}

	registry := minimap.NewRegistry()
	if !cfg.Analysis.EnableMinimap {
		registry = minimap.NewEmptyRegistry()
	}

	engine := analyze.NewEngine(
		provider,
		registry,
		lint.NewOrchestrator(
			enabledTools(cfg),
			time.Duration(cfg.Tools.TimeoutSeconds)*time.Second,
			cfg.Tools.Processes,
		),
		annotations,
		cfg.AnalyzerVersion(),
		cfg.Analysis.Workers,
		progress,
	)

	return &session{
		rootDir:   rootDir,
		cfg:       cfg,
		provider:  provider,
		discovery: discovery,
		cache:     annotations,
		engine:    engine,
	}, nil
}

func (s *session) Close() error {
	return s.cache.Close()
}

// enabledTools maps config tool names onto built-in implementations. Unknown
// names are rejected by config validation before this runs.
func enabledTools(cfg *config.Config) []lint.Tool {
	if !cfg.Analysis.EnableHeatmap {
		return nil
	}
	enabled := make(map[string]bool, len(cfg.Tools.Enabled))
	for _, name := range cfg.Tools.Enabled {
		enabled[name] = true
	}

	var tools []lint.Tool
	for _, tool := range lint.DefaultTools() {
		if enabled[tool.Name()] {
			tools = append(tools, tool)
		}
	}
	return tools
}
