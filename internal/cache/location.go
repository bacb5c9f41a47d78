package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Location resolves where a project's annotation store lives. The directory
// persists across invocations and is shared by every process analyzing the
// same root.
//
// Resolution order: explicit override (config or REPOLENS_CACHE_LOCATION), then
// the user cache dir. Each project gets its own subdirectory keyed by a
// short hash of its absolute root so unrelated checkouts never collide.
func Location(override, projectRoot string) (string, error) {
	if override != "" {
		return override, nil
	}

	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}

	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}

	return filepath.Join(base, "repolens", hashString(abs)[:8]), nil
}

// hashString returns the hex SHA-256 of s.
func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
