package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"aihr-backend/internal/shared/storage/object"
)

// Store keeps clips on the local filesystem, one file per key.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes r to a temporary file and renames it into place, so readers
// never observe a partial clip.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	key, err := object.CleanKey(key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	full := s.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".clip-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write clip %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return 0, fmt.Errorf("rename clip %s: %w", key, err)
	}
	return n, nil
}

// Get opens a stored clip. The content type is derived from the key's extension.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	key, err := object.CleanKey(key)
	if err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", object.ErrNotFound, key)
	}
	if err != nil {
		return nil, "", err
	}
	return f, object.ContentTypeFor(key), nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

var _ object.ClipStore = (*Store)(nil)
