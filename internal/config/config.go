package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// schemaVersion participates in the analyzer config version so that
// format-changing releases invalidate old cache entries wholesale.
const schemaVersion = "1"

// Config is the complete repolens configuration. It loads from
// .repolens/config.yml with REPOLENS_* environment overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Tools    ToolsConfig    `yaml:"tools" mapstructure:"tools"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Query    QueryConfig    `yaml:"query" mapstructure:"query"`
}

// PathsConfig defines which files are analysis candidates.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns to analyze
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// AnalysisConfig shapes the analysis engine.
type AnalysisConfig struct {
	Workers        int   `yaml:"workers" mapstructure:"workers"`                   // parallel files; 0 = GOMAXPROCS
	SizeCeiling    int64 `yaml:"size_ceiling" mapstructure:"size_ceiling"`         // bytes; larger files skip analysis
	EnableMinimap  bool  `yaml:"enable_minimap" mapstructure:"enable_minimap"`
	EnableHeatmap  bool  `yaml:"enable_heatmap" mapstructure:"enable_heatmap"`
}

// ToolsConfig shapes the lint orchestrator.
type ToolsConfig struct {
	Enabled        []string `yaml:"enabled" mapstructure:"enabled"`                 // tool names; empty = all built-ins
	TimeoutSeconds int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // per-tool invocation deadline
	Processes      int      `yaml:"processes" mapstructure:"processes"`             // concurrent tool processes; 0 = GOMAXPROCS
}

// CacheConfig shapes the annotation cache.
type CacheConfig struct {
	Location    string  `yaml:"location" mapstructure:"location"`         // override cache dir (REPOLENS_CACHE_LOCATION)
	HotCapacity int     `yaml:"hot_capacity" mapstructure:"hot_capacity"` // in-memory entries
	MaxRuns     int     `yaml:"max_runs" mapstructure:"max_runs"`         // eviction: unread across last N runs
	MaxSizeMB   float64 `yaml:"max_size_mb" mapstructure:"max_size_mb"`   // eviction: durable byte budget
}

// QueryConfig shapes search output.
type QueryConfig struct {
	ContextLines int `yaml:"context_lines" mapstructure:"context_lines"` // snippet window on each side
	MaxResults   int `yaml:"max_results" mapstructure:"max_results"`
	MergeGap     int `yaml:"merge_gap" mapstructure:"merge_gap"` // ranges this close merge
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.go", "**/*.py", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
				"**/*.rb", "**/*.rs", "**/*.java", "**/*.c", "**/*.h", "**/*.php",
				"**/*.sh",
			},
			Ignore: []string{
				"**/node_modules/**", "**/.git/**", "**/vendor/**",
				"**/dist/**", "**/build/**", "**/__pycache__/**", "**/.venv/**",
			},
		},
		Analysis: AnalysisConfig{
			Workers:       0,
			SizeCeiling:   2 << 20,
			EnableMinimap: true,
			EnableHeatmap: true,
		},
		Tools: ToolsConfig{
			Enabled:        []string{"ruff", "eslint", "shellcheck"},
			TimeoutSeconds: 20,
			Processes:      0,
		},
		Cache: CacheConfig{
			HotCapacity: 4096,
			MaxRuns:     10,
			MaxSizeMB:   256,
		},
		Query: QueryConfig{
			ContextLines: 5,
			MaxResults:   200,
			MergeGap:     3,
		},
	}
}

// AnalyzerVersion derives the analyzerConfigVersion cache-key component: a
// short digest over every setting that changes analysis output. Timeouts
// and worker counts stay out; they affect speed, not results.
func (c *Config) AnalyzerVersion() string {
	tools := append([]string(nil), c.Tools.Enabled...)
	sort.Strings(tools)

	var b strings.Builder
	fmt.Fprintf(&b, "schema=%s;", schemaVersion)
	fmt.Fprintf(&b, "tools=%s;", strings.Join(tools, ","))
	fmt.Fprintf(&b, "minimap=%t;heatmap=%t;", c.Analysis.EnableMinimap, c.Analysis.EnableHeatmap)
	fmt.Fprintf(&b, "ceiling=%d;", c.Analysis.SizeCeiling)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:12]
}
