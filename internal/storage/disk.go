package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type diskStorage struct {
	dir string
}

// NewDiskStorage stages uploads as files under dir, creating it if needed.
func NewDiskStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &diskStorage{dir: dir}, nil
}

func (d *diskStorage) path(key string) string {
	return filepath.Join(d.dir, filepath.Base(key))
}

func (d *diskStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if err := os.WriteFile(d.path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return nil
}

func (d *diskStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// Delete is idempotent: a missing file is not an error.
func (d *diskStorage) Delete(_ context.Context, key string) error {
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
