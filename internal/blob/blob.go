// Package blob is the attachment collaborator: a local content-addressed
// blob directory. All orchestrator uses are best-effort; callers log and
// swallow failures.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ref identifies a stored blob. The hex digest doubles as the file name.
type Ref struct {
	Digest      string `json:"digest"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// String renders the ref as "<digest>:<contentType>".
func (r Ref) String() string {
	return r.Digest + ":" + r.ContentType
}

// ParseRef parses a ref previously rendered by String.
func ParseRef(s string) (Ref, error) {
	digest, contentType, ok := strings.Cut(s, ":")
	if !ok || digest == "" {
		return Ref{}, fmt.Errorf("malformed blob ref %q", s)
	}
	return Ref{Digest: digest, ContentType: contentType}, nil
}

// Store writes blobs into a flat directory, one file per content hash.
// Writing the same bytes twice is a no-op.
type Store struct {
	dir string
}

// NewStore creates a blob store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put stores data and returns its ref. Existing content is left in place.
func (s *Store) Put(data []byte, contentType string) (Ref, error) {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	ref := Ref{Digest: digest, ContentType: contentType, Size: len(data)}

	path := filepath.Join(s.dir, digest)
	if _, err := os.Stat(path); err == nil {
		return ref, nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Ref{}, fmt.Errorf("writing blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Ref{}, fmt.Errorf("committing blob: %w", err)
	}
	return ref, nil
}

// Get returns the bytes for a ref.
func (s *Store) Get(ref Ref) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, ref.Digest))
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", ref.Digest, err)
	}
	return data, nil
}
