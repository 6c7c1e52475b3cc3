// Package upload stores profile images on the local filesystem.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidFilename = errors.New("invalid upload filename")

type Config struct {
	Dir string
}

// LocalStore writes files as <Dir>/<base name>, replacing existing files.
type LocalStore struct {
	dir string
}

func NewLocalStore(cfg Config) (*LocalStore, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("upload dir is empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s failed: %w", cfg.Dir, err)
	}
	return &LocalStore{dir: cfg.Dir}, nil
}

// Save copies r into the upload directory and returns the written path.
func (s *LocalStore) Save(filename string, r io.Reader) (string, error) {
	name, err := CleanFilename(filename)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file failed: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write upload file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file failed: %w", err)
	}
	return path, nil
}

// Remove deletes a file previously returned by Save. Paths outside the
// upload directory are refused; a missing file is not an error.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(s.dir) {
		return fmt.Errorf("refusing to remove %s outside upload dir", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload file failed: %w", err)
	}
	return nil
}

// CleanFilename strips directory and traversal components from a client
// supplied name.
func CleanFilename(filename string) (string, error) {
	normalized := strings.ReplaceAll(filename, "\\", "/")
	name := filepath.Base(filepath.Clean("/" + normalized))
	if name == "/" || name == "." || name == ".." || strings.TrimSpace(name) == "" {
		return "", ErrInvalidFilename
	}
	return name, nil
}
