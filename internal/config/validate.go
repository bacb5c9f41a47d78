package config

import (
	"fmt"
	"strings"
)

var knownTools = map[string]bool{
	"ruff":       true,
	"eslint":     true,
	"shellcheck": true,
}

// Validate rejects configurations the engine cannot honor. Invalid
// configuration is fatal to the caller rather than silently corrected.
func (c *Config) Validate() error {
	var problems []string

	for _, tool := range c.Tools.Enabled {
		if !knownTools[tool] {
			problems = append(problems, fmt.Sprintf("unknown tool %q", tool))
		}
	}
	if c.Tools.TimeoutSeconds < 0 {
		problems = append(problems, "tools.timeout_seconds must be >= 0")
	}
	if c.Tools.Processes < 0 {
		problems = append(problems, "tools.processes must be >= 0")
	}
	if c.Analysis.Workers < 0 {
		problems = append(problems, "analysis.workers must be >= 0")
	}
	if c.Analysis.SizeCeiling <= 0 {
		problems = append(problems, "analysis.size_ceiling must be positive")
	}
	if c.Cache.HotCapacity <= 0 {
		problems = append(problems, "cache.hot_capacity must be positive")
	}
	if c.Cache.MaxRuns <= 0 {
		problems = append(problems, "cache.max_runs must be positive")
	}
	if c.Cache.MaxSizeMB <= 0 {
		problems = append(problems, "cache.max_size_mb must be positive")
	}
	if c.Query.ContextLines < 0 {
		problems = append(problems, "query.context_lines must be >= 0")
	}
	if c.Query.MaxResults <= 0 {
		problems = append(problems, "query.max_results must be positive")
	}
	if c.Query.MergeGap < 0 {
		problems = append(problems, "query.merge_gap must be >= 0")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
