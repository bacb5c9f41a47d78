package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// TextOptions scope and shape a text-mode search.
type TextOptions struct {
	Regex        bool   // treat the query as a regular expression
	PathGlob     string // optional glob over repository-relative paths
	ContextLines int    // lines of context on each side of a match
	MaxResults   int    // 0 selects DefaultMaxResults
	MergeGap     int    // ranges this close merge into one span
}

// DefaultMaxResults bounds a single search.
const DefaultMaxResults = 200

// scoring: exact substring beats case-insensitive; regex hits score like
// case-insensitive unless the matched text contains the pattern literally.
const (
	scoreExact       = 2.0
	scoreInsensitive = 1.0
)

// SearchText matches the query against every indexed line. Ranking is by
// score descending, ties broken by path lexical order then line number.
func (idx *Index) SearchText(q string, opts TextOptions) ([]Match, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	pathFilter, err := compilePathGlob(opts.PathGlob)
	if err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if opts.Regex {
		re, err = regexp.Compile("(?i)" + q)
		if err != nil {
			// Invalid patterns degrade to literal search.
			re = nil
		}
	}

	lower := strings.ToLower(q)
	var matches []Match

	for _, file := range idx.files {
		if pathFilter != nil && !pathFilter.Match(file.path) {
			continue
		}
		for i, line := range file.lines {
			score := 0.0
			switch {
			case q != "" && strings.Contains(line, q):
				score = scoreExact
			case q != "" && strings.Contains(strings.ToLower(line), lower):
				score = scoreInsensitive
			case re != nil && re.MatchString(line):
				score = scoreInsensitive
			default:
				continue
			}

			lineNo := i + 1
			start, end := clampRange(lineNo-opts.ContextLines, lineNo+opts.ContextLines, len(file.lines))
			matches = append(matches, Match{
				Path:      file.path,
				Line:      lineNo,
				StartLine: start,
				EndLine:   end,
				Score:     score,
				Preview:   line,
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
	if opts.MergeGap > 0 {
		matches = mergeMatches(matches, opts.MergeGap)
	}
	return matches, nil
}

func compilePathGlob(pattern string) (glob.Glob, error) {
	if pattern == "" {
		return nil, nil
	}
	return glob.Compile(pattern, '/')
}
