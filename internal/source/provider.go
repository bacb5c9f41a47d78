package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultSizeCeiling is the largest file the analysis pipeline will decode.
// Larger files are reported as binary/oversized and skipped by extractors.
const DefaultSizeCeiling = 2 * 1024 * 1024

// Content is the decoded view of a single file handed to the analysis core.
type Content struct {
	RelPath string
	AbsPath string
	Bytes   []byte
	Text    string
	Binary  bool // NUL bytes or invalid UTF-8 dominate the content
	ModTime time.Time
}

// Provider reads repository files and hands decoded text to the analysis
// pipeline. It owns the binary heuristic and the size ceiling so the core
// never sees partially decoded content.
type Provider struct {
	rootDir     string
	sizeCeiling int64
}

// NewProvider creates a file provider rooted at rootDir.
// A sizeCeiling of 0 selects DefaultSizeCeiling.
func NewProvider(rootDir string, sizeCeiling int64) *Provider {
	if sizeCeiling <= 0 {
		sizeCeiling = DefaultSizeCeiling
	}
	return &Provider{rootDir: rootDir, sizeCeiling: sizeCeiling}
}

// Root returns the provider's root directory.
func (p *Provider) Root() string {
	return p.rootDir
}

// Read loads a file by repository-relative path.
// I/O failure is returned to the caller; binary-looking or oversized content
// is a successful read with Binary set and Text empty.
func (p *Provider) Read(relPath string) (*Content, error) {
	relPath = NormalizePath(relPath)
	absPath := filepath.Join(p.rootDir, filepath.FromSlash(relPath))

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", relPath, err)
	}

	c := &Content{RelPath: relPath, AbsPath: absPath, ModTime: info.ModTime()}
	if info.Size() > p.sizeCeiling {
		c.Binary = true
		return c, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	c.Bytes = data

	if looksBinary(data) {
		c.Binary = true
		return c, nil
	}

	c.Text = strings.TrimPrefix(string(data), "\ufeff")
	return c, nil
}

// looksBinary reports whether data is likely not text.
// NUL bytes in the leading window are the strongest signal; badly broken
// UTF-8 is the fallback.
func looksBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	window := data
	if len(window) > 8192 {
		window = window[:8192]
	}
	if bytes.IndexByte(window, 0) >= 0 {
		return true
	}

	if utf8.Valid(window) {
		return false
	}
	invalid := 0
	for i := 0; i < len(window); {
		r, size := utf8.DecodeRune(window[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return invalid*20 > len(window)
}

// NormalizePath converts a path to slash-separated relative form.
func NormalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
