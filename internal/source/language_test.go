package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TEST PLAN: Language Detection
//
// DetectLanguage maps a file path to a language tag used for extractor
// dispatch and lint tool applicability.
//
// Test Cases:
// 1. Common extensions map to their language tags
// 2. Extension matching is case-insensitive
// 3. Extensionless well-known names (Makefile, Dockerfile)
// 4. Unknown extensions return ""

func TestDetectLanguage_CommonExtensions(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"main.go":          "go",
		"app/models.py":    "python",
		"src/index.ts":     "typescript",
		"src/App.tsx":      "typescript",
		"web/app.js":       "javascript",
		"web/app.jsx":      "javascript",
		"lib/worker.rb":    "ruby",
		"src/main.rs":      "rust",
		"Main.java":        "java",
		"kernel/sched.c":   "c",
		"kernel/sched.h":   "c",
		"engine/render.cc": "cpp",
		"index.php":        "php",
		"scripts/build.sh": "shell",
		"README.md":        "markdown",
		"package.json":     "json",
		"ci.yml":           "yaml",
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path), "path %s", path)
	}
}

func TestDetectLanguage_CaseInsensitive(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "python", DetectLanguage("SETUP.PY"))
	assert.Equal(t, "markdown", DetectLanguage("Readme.MD"))
}

func TestDetectLanguage_WellKnownNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "make", DetectLanguage("Makefile"))
	assert.Equal(t, "make", DetectLanguage("sub/dir/makefile"))
	assert.Equal(t, "dockerfile", DetectLanguage("Dockerfile"))
}

func TestDetectLanguage_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", DetectLanguage("binary.bin"))
	assert.Equal(t, "", DetectLanguage("noextension"))
	assert.Equal(t, "", DetectLanguage("archive.tar.gz"))
}
