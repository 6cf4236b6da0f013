package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage stores uploaded objects on the local filesystem and
// addresses them by a relative path locator.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// SaveBytes writes data under subDir and returns the relative locator
// stored in the database. Objects are organized by year/month and named
// with a fresh UUID so original filenames never collide.
func (s *LocalStorage) SaveBytes(data []byte, filename, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := filepath.Ext(filename)
	uniqueName := uuid.New().String() + strings.ToLower(ext)
	filePath := filepath.Join(dir, uniqueName)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return relPath, nil
}

// Delete removes an object by its locator
func (s *LocalStorage) Delete(locator string) error {
	return os.Remove(filepath.Join(s.basePath, locator))
}

// Exists checks if an object exists
func (s *LocalStorage) Exists(locator string) bool {
	_, err := os.Stat(filepath.Join(s.basePath, locator))
	return err == nil
}

// FullPath returns the absolute path for serving an object
func (s *LocalStorage) FullPath(locator string) string {
	return filepath.Join(s.basePath, locator)
}
