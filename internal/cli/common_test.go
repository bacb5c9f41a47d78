package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/repolens/internal/config"
)

// TEST PLAN: CLI Wiring
//
// Test Cases:
// 1. enabledTools maps config names to built-in tools
// 2. Disabling the heatmap disables every tool
// 3. Unknown names simply match nothing (validation rejects them earlier)

func TestEnabledTools_Selection(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Tools.Enabled = []string{"ruff", "shellcheck"}

	tools := enabledTools(cfg)
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name()
	}
	assert.ElementsMatch(t, []string{"ruff", "shellcheck"}, names)
}

func TestEnabledTools_HeatmapDisabled(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Analysis.EnableHeatmap = false
	assert.Empty(t, enabledTools(cfg))
}

func TestEnabledTools_UnknownName(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Tools.Enabled = []string{"imaginary"}
	assert.Empty(t, enabledTools(cfg))
}
