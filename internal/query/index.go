package query

import (
	"sort"

	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
	"github.com/mvp-joe/repolens/internal/source"
)

// Match is one ranked search hit: a file, a line range suitable for snippet
// rendering, and a score. Line is the primary matched (or declared) line.
type Match struct {
	Path      string
	Line      int
	StartLine int
	EndLine   int
	Score     float64
	Preview   string
	Symbol    *minimap.Symbol // set for semantic matches
}

// indexedFile is the per-file slice of the session index.
type indexedFile struct {
	path      string
	language  string
	lines     []string
	symbols   []minimap.Symbol
	heat      map[int]lint.Severity
	minimapOK bool
}

// Index is the session-scoped search index. It is derived wholly from the
// current cache entries, read-only once built, and rebuilt from scratch on
// demand. It is never persisted or mutated incrementally. Searching it never
// triggers analysis: a file without a cache entry is simply absent.
type Index struct {
	files  []*indexedFile // sorted by path
	byPath map[string]*indexedFile
}

// Build constructs the index from cache entries plus current file content.
// When several entries exist for one path (stale fingerprints awaiting
// eviction), the most recently written wins. Files whose content can no
// longer be read keep their symbols but contribute no text lines.
func Build(entries []*cache.Entry, provider *source.Provider) *Index {
	latest := make(map[string]*cache.Entry)
	for _, entry := range entries {
		if prev, ok := latest[entry.Path]; !ok || entry.WrittenAt.After(prev.WrittenAt) {
			latest[entry.Path] = entry
		}
	}

	idx := &Index{byPath: make(map[string]*indexedFile, len(latest))}
	for path, entry := range latest {
		file := &indexedFile{path: path}

		if entry.Minimap != nil {
			file.language = entry.Minimap.Language
			if entry.Minimap.Status == minimap.StatusOK {
				file.minimapOK = true
				file.symbols = entry.Minimap.Symbols
			}
		}
		if entry.Heatmap != nil {
			file.heat = entry.Heatmap.LineSeverity
		}

		if provider != nil {
			if content, err := provider.Read(path); err == nil && !content.Binary {
				file.lines = splitLines(content.Text)
			}
		}

		idx.byPath[path] = file
		idx.files = append(idx.files, file)
	}

	sort.Slice(idx.files, func(i, j int) bool {
		return idx.files[i].path < idx.files[j].path
	})
	return idx
}

// Files returns the indexed paths in lexical order.
func (idx *Index) Files() []string {
	paths := make([]string, len(idx.files))
	for i, f := range idx.files {
		paths[i] = f.path
	}
	return paths
}

// HeatAt returns the aggregated lint severity for a line, if any.
func (idx *Index) HeatAt(path string, line int) (lint.Severity, bool) {
	file, ok := idx.byPath[path]
	if !ok || file.heat == nil {
		return "", false
	}
	sev, ok := file.heat[line]
	return sev, ok
}

// Snippet returns the lines of path in [start, end], clamped to the file.
func (idx *Index) Snippet(path string, start, end int) []string {
	file, ok := idx.byPath[path]
	if !ok || len(file.lines) == 0 {
		return nil
	}
	start, end = clampRange(start, end, len(file.lines))
	return file.lines[start-1 : end]
}

// clampRange clamps a 1-based inclusive range to [1, total].
func clampRange(start, end, total int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	return start, end
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	begin := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[begin:i])
			begin = i + 1
		}
	}
	lines = append(lines, text[begin:])
	return lines
}

// mergeMatches folds overlapping or nearly adjacent ranges within one file
// into single spans, keeping the best score. gap is the largest separation
// still merged.
func mergeMatches(matches []Match, gap int) []Match {
	if len(matches) < 2 {
		return matches
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Path != matches[j].Path {
			return matches[i].Path < matches[j].Path
		}
		return matches[i].StartLine < matches[j].StartLine
	})

	merged := matches[:1]
	for _, m := range matches[1:] {
		last := &merged[len(merged)-1]
		if m.Path == last.Path && m.StartLine <= last.EndLine+gap {
			if m.EndLine > last.EndLine {
				last.EndLine = m.EndLine
			}
			if m.Score > last.Score {
				last.Score = m.Score
				last.Line = m.Line
				last.Preview = m.Preview
			}
			continue
		}
		merged = append(merged, m)
	}
	return merged
}
