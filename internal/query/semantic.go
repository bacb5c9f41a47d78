package query

import (
	"sort"
	"strings"
)

// SemanticOptions scope a symbol-name search.
type SemanticOptions struct {
	Kind          string // optional symbol kind filter ("function", "class", ...)
	PathGlob      string
	ContextWindow int // lines on each side of the declaration (default 5)
	MaxResults    int
}

const defaultContextWindow = 5

// symbol-name scoring tiers.
const (
	scoreNameExact       = 3.0
	scoreNameInsensitive = 2.0
	scoreNameSubstring   = 1.0
)

// SearchSymbols matches the query against declared symbol names. Only files
// whose minimap extraction succeeded contribute candidates. Each match spans
// a context window around the declaration so downstream renderers can show
// a readable snippet, not just the single line.
func (idx *Index) SearchSymbols(q string, opts SemanticOptions) ([]Match, error) {
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = defaultContextWindow
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	pathFilter, err := compilePathGlob(opts.PathGlob)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(q)
	var matches []Match

	for _, file := range idx.files {
		if !file.minimapOK {
			continue
		}
		if pathFilter != nil && !pathFilter.Match(file.path) {
			continue
		}
		for i := range file.symbols {
			sym := &file.symbols[i]
			if opts.Kind != "" && sym.Kind != opts.Kind {
				continue
			}

			score := 0.0
			switch {
			case sym.Name == q:
				score = scoreNameExact
			case strings.EqualFold(sym.Name, q):
				score = scoreNameInsensitive
			case strings.Contains(strings.ToLower(sym.Name), lower):
				score = scoreNameSubstring
			default:
				continue
			}

			total := len(file.lines)
			if total == 0 {
				// Content unavailable this session; report the raw window.
				total = sym.Line + opts.ContextWindow
			}
			start, end := clampRange(sym.Line-opts.ContextWindow, sym.Line+opts.ContextWindow, total)

			preview := ""
			if sym.Line >= 1 && sym.Line <= len(file.lines) {
				preview = file.lines[sym.Line-1]
			}

			matches = append(matches, Match{
				Path:      file.path,
				Line:      sym.Line,
				StartLine: start,
				EndLine:   end,
				Score:     score,
				Preview:   preview,
				Symbol:    sym,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Path != matches[j].Path {
			return matches[i].Path < matches[j].Path
		}
		return matches[i].Line < matches[j].Line
	})

	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	return matches, nil
}
