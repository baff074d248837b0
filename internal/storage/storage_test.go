package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStorage_Upload(t *testing.T) {
	basePath := t.TempDir()
	store := NewObjectStorage(basePath, "http://media.local/")

	url, err := store.Upload(strings.NewReader("image-bytes"), "thumbnails", "cover.png")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://media.local/thumbnails/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, "http://media.local/")
	content, err := os.ReadFile(filepath.Join(basePath, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}

func TestObjectStorage_Delete(t *testing.T) {
	basePath := t.TempDir()
	store := NewObjectStorage(basePath, "http://media.local")

	t.Run("removes an uploaded object", func(t *testing.T) {
		url, err := store.Upload(strings.NewReader("image-bytes"), "thumbnails", "cover.png")
		require.NoError(t, err)

		assert.NoError(t, store.Delete(url))

		rel := strings.TrimPrefix(url, "http://media.local/")
		_, statErr := os.Stat(filepath.Join(basePath, filepath.FromSlash(rel)))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("deleting twice succeeds", func(t *testing.T) {
		url, err := store.Upload(strings.NewReader("image-bytes"), "thumbnails", "cover.png")
		require.NoError(t, err)

		require.NoError(t, store.Delete(url))
		assert.NoError(t, store.Delete(url))
	})

	t.Run("rejects foreign urls", func(t *testing.T) {
		assert.Error(t, store.Delete("http://elsewhere.local/thumbnails/a.png"))
	})

	t.Run("rejects path escapes", func(t *testing.T) {
		assert.Error(t, store.Delete("http://media.local/../etc/passwd"))
	})
}
