package minimap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST PLAN: Extraction Registry
//
// The registry dispatches by language tag and never returns an error:
// unsupported languages, oversized content, and parse failures all map to
// minimap statuses.
//
// Test Cases:
// 1. Supported language with valid content yields StatusOK
// 2. Unknown language tag yields StatusUnsupported
// 3. Content above the size ceiling yields StatusParseError
// 4. Unparseable content yields StatusParseError
// 5. Symbols and Calls are never nil, whatever the status
// 6. Empty registry treats every language as unsupported

func TestRegistry_SupportedLanguage(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	m := r.Extract("app.py", "def f():\n    pass\n", "python")

	assert.Equal(t, StatusOK, m.Status)
	require.Len(t, m.Symbols, 1)
	assert.Equal(t, "f", m.Symbols[0].Name)
	assert.Equal(t, "app.py", m.Path)
	assert.Equal(t, "python", m.Language)
}

func TestRegistry_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	m := r.Extract("data.csv", "a,b,c\n", "csv")

	assert.Equal(t, StatusUnsupported, m.Status)
	assert.NotNil(t, m.Symbols)
	assert.NotNil(t, m.Calls)
	assert.Empty(t, m.Symbols)
}

func TestRegistry_OversizedContent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	huge := strings.Repeat("# padding line\n", (DefaultSizeCeiling/15)+1)
	m := r.Extract("huge.py", huge, "python")

	assert.Equal(t, StatusParseError, m.Status)
	assert.Empty(t, m.Symbols)
}

func TestRegistry_ParseFailure(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	m := r.Extract("broken.go", "package\nfunc {{{", "go")

	assert.Equal(t, StatusParseError, m.Status)
	assert.NotNil(t, m.Symbols)
	assert.NotNil(t, m.Calls)
}

func TestRegistry_Empty(t *testing.T) {
	t.Parallel()

	r := NewEmptyRegistry()
	m := r.Extract("app.py", "def f():\n    pass\n", "python")

	assert.Equal(t, StatusUnsupported, m.Status)
	assert.False(t, r.Supported("python"))
}
