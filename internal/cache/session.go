package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SessionCache is the external, on-disk cache consulted by `extract
// links --session`: a marker file per (sessionId, sourceContentHash)
// pair. Its presence means a prior run already extracted this exact
// source content under this session and the command should emit an
// empty, successful result instead of re-extracting. No structured
// payload is ever written — only the marker's existence matters.
type SessionCache struct {
	dir string
}

func NewSessionCache(dir string) *SessionCache {
	return &SessionCache{dir: dir}
}

// NewSessionID generates a random (UUID) session identifier. `extract
// links` does not call it: without --session no session cache is
// consulted or written.
func NewSessionID() string {
	return uuid.NewString()
}

// ContentHash hashes source bytes for use as the cache key's second
// component.
func ContentHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Has reports whether a marker already exists for (sessionID, hash).
func (s *SessionCache) Has(sessionID, hash string) bool {
	_, err := os.Stat(s.markerPath(sessionID, hash))
	return err == nil
}

// Mark writes the marker file for (sessionID, hash). Callers should
// only call this after a successful extraction that produced at least
// one eligible content block — a miss that produces zero extractions
// must not write a marker, so retries after authoring still run.
func (s *SessionCache) Mark(sessionID, hash string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating session cache directory %s: %w", s.dir, err)
	}
	path := s.markerPath(sessionID, hash)
	return os.WriteFile(path, nil, 0o644)
}

func (s *SessionCache) markerPath(sessionID, hash string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.marker", sessionID, hash))
}
