package analyze

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FileIdentity is the stable identity of one file's content snapshot.
// The fingerprint is a pure function of the byte content; size and mtime
// ride along for diagnostics and are never part of any cache key.
type FileIdentity struct {
	Path        string    `json:"path"` // repository-relative, slash-separated
	Fingerprint string    `json:"fingerprint"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mtime"`
}

// Identity computes the identity for a file's content. Identical bytes
// always produce identical fingerprints regardless of filesystem metadata;
// SHA-256 keeps collision probability negligible, which matters because a
// collision would silently corrupt cache lookups.
func Identity(relPath string, data []byte) FileIdentity {
	sum := sha256.Sum256(data)
	return FileIdentity{
		Path:        relPath,
		Fingerprint: hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
	}
}

// IdentityAt attaches the filesystem mtime diagnostic to a content identity.
func IdentityAt(relPath string, data []byte, modTime time.Time) FileIdentity {
	id := Identity(relPath, data)
	id.ModTime = modTime
	return id
}
