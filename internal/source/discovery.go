package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob.
// simplified is the pattern with a leading "**/" stripped, so "**/*.py"
// also matches root-level "app.py" (gobwas "**/" never matches zero
// directories).
type compiledPattern struct {
	pattern    string
	glob       glob.Glob
	simplified glob.Glob
}

func compilePattern(pattern string) (compiledPattern, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return compiledPattern{}, err
	}
	cp := compiledPattern{pattern: pattern, glob: g}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if sg, err := glob.Compile(rest, '/'); err == nil {
			cp.simplified = sg
		}
	}
	return cp, nil
}

// Discovery walks the repository root and returns the candidate file set,
// filtered by include and ignore glob patterns. Ignore semantics beyond
// globs (full gitignore) are deliberately out of scope.
type Discovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the include and ignore patterns for rootDir.
func NewDiscovery(rootDir string, includes, ignores []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	for _, pattern := range includes {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		d.includes = append(d.includes, cp)
	}
	for _, pattern := range ignores {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		d.ignorePatterns = append(d.ignorePatterns, cp)
	}

	return d, nil
}

// Discover returns repository-relative slash paths, sorted for deterministic
// downstream processing.
func (d *Discovery) Discover() ([]string, error) {
	var files []string

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(d.rootDir, path)
		if relErr != nil {
			return relErr
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if d.shouldIgnore(relPath) && relPath != "." {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) {
			return nil
		}
		if len(d.includes) == 0 || d.matchesAny(relPath, d.includes) {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Candidate reports whether relPath (slash-separated, repo-relative) would
// survive discovery filtering. Watch mode uses this to filter events.
func (d *Discovery) Candidate(relPath string) bool {
	if d.shouldIgnore(relPath) {
		return false
	}
	return len(d.includes) == 0 || d.matchesAny(relPath, d.includes)
}

// Ignored reports whether relPath matches an ignore pattern.
func (d *Discovery) Ignored(relPath string) bool {
	return d.shouldIgnore(relPath)
}

func (d *Discovery) shouldIgnore(relPath string) bool {
	if d.matchesAny(relPath, d.ignorePatterns) {
		return true
	}
	// A directory matches "dir/**"-style patterns through its contents;
	// probe with a suffix so the walk can prune it outright.
	return d.matchesAny(relPath+"/**", d.ignorePatterns)
}

func (d *Discovery) matchesAny(relPath string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		if p.glob.Match(relPath) {
			return true
		}
		if p.simplified != nil && p.simplified.Match(relPath) {
			return true
		}
	}
	return false
}
