package cache

import (
	"time"

	"github.com/mvp-joe/repolens/internal/lint"
	"github.com/mvp-joe/repolens/internal/minimap"
)

// Entry is one immutable cache record: the analysis artifacts for a single
// (path, content fingerprint, analyzer config version) triple. Any change to
// the inputs produces a new key, never an in-place mutation.
type Entry struct {
	Key           string           `json:"key"`
	Path          string           `json:"path"`
	Fingerprint   string           `json:"fingerprint"`
	ConfigVersion string           `json:"config_version"`
	Minimap       *minimap.Minimap `json:"minimap,omitempty"`
	Heatmap       *lint.Overlay    `json:"heatmap,omitempty"`
	WrittenAt     time.Time        `json:"written_at"`
}

// Key derives the cache key for a file's content fingerprint under a given
// analyzer configuration version. The path participates so that distinct
// files with identical bytes keep distinct entries.
func Key(relPath, fingerprint, configVersion string) string {
	return relPath + ":" + fingerprint + ":" + configVersion
}
