package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores payloads as JSON files under a data directory:
// <dir>/<collection>/<owner>.json. It is the always-available local
// fallback snapshot.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the local backend rooted at dir
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

// Name identifies this backend in failover logs
func (b *FileBackend) Name() string {
	return "file"
}

func (b *FileBackend) path(collection, ownerID string) string {
	return filepath.Join(b.dir, sanitize(collection), sanitize(ownerID)+".json")
}

// sanitize keeps keys from escaping the data dir
func sanitize(s string) string {
	s = strings.ReplaceAll(s, string(os.PathSeparator), "_")
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" {
		s = "_"
	}
	return s
}

// Get returns the payload for a key, ErrNotFound when absent
func (b *FileBackend) Get(_ context.Context, collection, ownerID string) ([]byte, error) {
	data, err := os.ReadFile(b.path(collection, ownerID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the payload atomically (temp file + rename)
func (b *FileBackend) Save(_ context.Context, collection, ownerID string, payload []byte) error {
	path := b.path(collection, ownerID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete removes a single key; deleting a missing key is not an error
func (b *FileBackend) Delete(_ context.Context, collection, ownerID string) error {
	err := os.Remove(b.path(collection, ownerID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes all records for an owner, or everything when owner is empty
func (b *FileBackend) Clear(_ context.Context, ownerID string) error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ownerID == "" {
			if err := os.RemoveAll(filepath.Join(b.dir, entry.Name())); err != nil {
				return err
			}
			continue
		}
		path := filepath.Join(b.dir, entry.Name(), sanitize(ownerID)+".json")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
