package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration for the project rooted at projectRoot, merging
// .repolens/config.yml (when present) and REPOLENS_* environment variables
// over the defaults. A missing config file is not an error.
func Load(projectRoot string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(filepath.Join(projectRoot, ".repolens"))

	v.SetEnvPrefix("REPOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from an explicit file path, with the same
// environment override behavior as Load.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("REPOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers defaults with viper so AutomaticEnv can override
// keys that never appear in the config file.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("paths.include", def.Paths.Include)
	v.SetDefault("paths.ignore", def.Paths.Ignore)
	v.SetDefault("analysis.workers", def.Analysis.Workers)
	v.SetDefault("analysis.size_ceiling", def.Analysis.SizeCeiling)
	v.SetDefault("analysis.enable_minimap", def.Analysis.EnableMinimap)
	v.SetDefault("analysis.enable_heatmap", def.Analysis.EnableHeatmap)
	v.SetDefault("tools.enabled", def.Tools.Enabled)
	v.SetDefault("tools.timeout_seconds", def.Tools.TimeoutSeconds)
	v.SetDefault("tools.processes", def.Tools.Processes)
	v.SetDefault("cache.location", def.Cache.Location)
	v.SetDefault("cache.hot_capacity", def.Cache.HotCapacity)
	v.SetDefault("cache.max_runs", def.Cache.MaxRuns)
	v.SetDefault("cache.max_size_mb", def.Cache.MaxSizeMB)
	v.SetDefault("query.context_lines", def.Query.ContextLines)
	v.SetDefault("query.max_results", def.Query.MaxResults)
	v.SetDefault("query.merge_gap", def.Query.MergeGap)
}
