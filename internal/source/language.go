package source

import (
	"path/filepath"
	"strings"
)

// DetectLanguage maps a file path to a language tag.
// Returns "" for extensions no component understands; callers treat an
// unrecognized tag as unsupported for minimap purposes but may still run
// generic lint tools over the file.
func DetectLanguage(path string) string {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))

	switch ext {
	case ".go":
		return "go"
	case ".py", ".pyi":
		return "python"
	case ".ts", ".tsx", ".mts", ".cts":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".rb", ".rake":
		return "ruby"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".cxx", ".hpp":
		return "cpp"
	case ".php":
		return "php"
	case ".sh", ".bash":
		return "shell"
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".yml", ".yaml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".txt":
		return "text"
	}

	// Extensionless scripts with a shebang-style name
	switch base {
	case "Makefile", "makefile":
		return "make"
	case "Dockerfile":
		return "dockerfile"
	}

	return ""
}
