package minimap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST PLAN: Tree-Sitter Extraction
//
// The generic tree-sitter extractor walks one parse tree in declaration
// order, collecting declared symbols and call edges with caller
// attribution.
//
// Test Cases:
// 1. Python: functions, classes, and methods in declaration order
// 2. Call edges attribute to the innermost enclosing symbol
// 3. Module-level calls attribute to the "(file)" pseudo-caller
// 4. Method call targets resolve through attribute wrappers
// 5. Identical content yields identical output across runs
// 6. TypeScript classes surface methods

const pythonSample = `import os

def cache_lookup(key):
    return store.get(key)

class Engine:
    def run(self):
        cache_lookup("a")

    def helper(self):
        pass

def main():
    e = Engine()
    e.run()

main()
`

func extractPython(t *testing.T, content string) ([]Symbol, []CallEdge) {
	t.Helper()
	spec, ok := grammars()["python"]
	require.True(t, ok)

	symbols, calls, truncated, err := newTreeSitterExtractor(spec).Extract(content)
	require.NoError(t, err)
	assert.False(t, truncated)
	return symbols, calls
}

func TestTreeSitter_PythonSymbols(t *testing.T) {
	t.Parallel()

	symbols, _ := extractPython(t, pythonSample)

	require.Len(t, symbols, 5)
	assert.Equal(t, Symbol{Name: "cache_lookup", Kind: "function", Line: 3, Language: "python"}, symbols[0])
	assert.Equal(t, Symbol{Name: "Engine", Kind: "class", Line: 6, Language: "python"}, symbols[1])
	assert.Equal(t, Symbol{Name: "run", Kind: "method", Line: 7, Language: "python"}, symbols[2])
	assert.Equal(t, Symbol{Name: "helper", Kind: "method", Line: 10, Language: "python"}, symbols[3])
	assert.Equal(t, Symbol{Name: "main", Kind: "function", Line: 13, Language: "python"}, symbols[4])
}

func TestTreeSitter_PythonCallEdges(t *testing.T) {
	t.Parallel()

	_, calls := extractPython(t, pythonSample)

	require.Len(t, calls, 5)
	assert.Equal(t, CallEdge{Caller: "cache_lookup", Callee: "get", Line: 4}, calls[0])
	assert.Equal(t, CallEdge{Caller: "run", Callee: "cache_lookup", Line: 8}, calls[1])
	assert.Equal(t, CallEdge{Caller: "main", Callee: "Engine", Line: 14}, calls[2])
	assert.Equal(t, CallEdge{Caller: "main", Callee: "run", Line: 15}, calls[3])
	assert.Equal(t, CallEdge{Caller: "(file)", Callee: "main", Line: 17}, calls[4])
}

func TestTreeSitter_Deterministic(t *testing.T) {
	t.Parallel()

	s1, c1 := extractPython(t, pythonSample)
	s2, c2 := extractPython(t, pythonSample)

	assert.Equal(t, s1, s2)
	assert.Equal(t, c1, c2)
}

func TestTreeSitter_TypeScriptMethods(t *testing.T) {
	t.Parallel()

	spec, ok := grammars()["typescript"]
	require.True(t, ok)

	content := `class Store {
  lookup(key: string): string {
    return this.backend.get(key);
  }
}

function open(): Store {
  return new Store();
}
`
	symbols, calls, _, err := newTreeSitterExtractor(spec).Extract(content)
	require.NoError(t, err)

	require.Len(t, symbols, 3)
	assert.Equal(t, "Store", symbols[0].Name)
	assert.Equal(t, "class", symbols[0].Kind)
	assert.Equal(t, "lookup", symbols[1].Name)
	assert.Equal(t, "method", symbols[1].Kind)
	assert.Equal(t, "open", symbols[2].Name)
	assert.Equal(t, "function", symbols[2].Kind)

	require.NotEmpty(t, calls)
	assert.Equal(t, CallEdge{Caller: "lookup", Callee: "get", Line: 3}, calls[0])
}
