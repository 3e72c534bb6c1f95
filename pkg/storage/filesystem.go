// Package storage persists generated report files and signs download
// URLs for them.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage abstracts where generated report files live.
type Storage interface {
	Save(relPath string, r io.Reader) (string, error)
	Open(relPath string) (io.ReadCloser, error)
	Delete(relPath string) error
	DeleteOlderThan(cutoff time.Time) (int, error)
}

// LocalStorage keeps files under a single base directory on disk.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	return &LocalStorage{baseDir: abs}, nil
}

func (s *LocalStorage) Save(relPath string, r io.Reader) (string, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return relPath, nil
}

func (s *LocalStorage) Open(relPath string) (io.ReadCloser, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	return os.Open(full)
}

func (s *LocalStorage) Delete(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	err = os.Remove(full)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// DeleteOlderThan removes files last modified before cutoff and returns
// how many were deleted.
func (s *LocalStorage) DeleteOlderThan(cutoff time.Time) (int, error) {
	deleted := 0

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})

	return deleted, err
}

// resolve joins relPath under the base dir and rejects path escapes.
func (s *LocalStorage) resolve(relPath string) (string, error) {
	clean := filepath.Clean("/" + relPath)
	full := filepath.Join(s.baseDir, clean)

	if !strings.HasPrefix(full, s.baseDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage path: %s", relPath)
	}

	return full, nil
}
