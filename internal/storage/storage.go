// Package storage persists uploaded objects (course thumbnails) and
// serves them through a public base URL.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// objectStorage implements ObjectStorage on the local filesystem behind
// a static file server. The public URL of an object is
// <baseURL>/<dir>/<generated file name>.
type objectStorage struct {
	basePath string
	baseURL  string
}

// NewObjectStorage creates a new objectStorage instance
func NewObjectStorage(basePath, baseURL string) *objectStorage {
	return &objectStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores the object under dir and returns its public URL.
// The stored name is a UUID with the extension of originalName.
func (s *objectStorage) Upload(r io.Reader, dir, originalName string) (string, error) {
	name := generateFileName(filepath.Ext(originalName))

	fullDir := filepath.Join(s.basePath, filepath.FromSlash(dir))
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	f, err := os.Create(filepath.Join(fullDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	return s.baseURL + "/" + path.Join(dir, name), nil
}

// Delete removes the object behind a public URL. A missing object is
// treated as already deleted, so concurrent deletes of the same URL all
// succeed.
func (s *objectStorage) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is not served by this storage", url)
	}

	// Reject path escapes before touching the filesystem
	cleaned := path.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("invalid object path %q", rel)
	}

	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(cleaned)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// generateFileName generates a new file name based on the file extension
func generateFileName(extension string) string {
	newUUID := uuid.New().String()
	if extension != "" && extension[0] != '.' {
		return newUUID + "." + extension
	}
	return newUUID + extension
}
