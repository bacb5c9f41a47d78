package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST PLAN: Configuration Loading
//
// Load merges .repolens/config.yml and REPOLENS_* environment variables
// over defaults. A missing file is fine; a malformed one is fatal.
//
// Test Cases:
// 1. No config file yields defaults
// 2. Config file values override defaults
// 3. Environment variables override the file
// 4. Malformed YAML is an error
// 5. Invalid values are rejected at load time

func writeConfig(t *testing.T, rootDir, content string) {
	t.Helper()
	dir := filepath.Join(rootDir, ".repolens")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, Default().Tools.Enabled, cfg.Tools.Enabled)
	assert.Equal(t, Default().Cache.MaxRuns, cfg.Cache.MaxRuns)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
tools:
  enabled: ["ruff"]
  timeout_seconds: 45
query:
  context_lines: 2
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"ruff"}, cfg.Tools.Enabled)
	assert.Equal(t, 45, cfg.Tools.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Query.ContextLines)
	// Untouched sections keep defaults.
	assert.Equal(t, Default().Cache.MaxRuns, cfg.Cache.MaxRuns)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tools:\n  timeout_seconds: 45\n")
	t.Setenv("REPOLENS_TOOLS_TIMEOUT_SECONDS", "7")
	t.Setenv("REPOLENS_CACHE_MAX_RUNS", "3")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Tools.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Cache.MaxRuns)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tools: [broken\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tools:\n  enabled: [\"made-up-linter\"]\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "made-up-linter")
}
