package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"care_training_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageProvider(t *testing.T) {
	root := t.TempDir()
	p := &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: root, PublicBaseURL: "/files/"}}
	ctx := context.Background()

	url, err := p.Upload(ctx, "videos/a.mp4", strings.NewReader("data"), 4, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "/files/videos/a.mp4", url)

	got, err := os.ReadFile(filepath.Join(root, "videos", "a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	src := filepath.Join(t.TempDir(), "cert.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0644))
	url, err = p.UploadFile(ctx, "certificates/c.pdf", src, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/files/certificates/c.pdf", url)

	require.NoError(t, p.Delete(ctx, "certificates/c.pdf"))
	assert.NoFileExists(t, filepath.Join(root, "certificates", "c.pdf"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("thumbnails", "JPG")
	assert.True(t, strings.HasPrefix(key, "thumbnails/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("thumbnails", "JPG"))
}

func TestNewStorageProviderDefaultsToLocal(t *testing.T) {
	p := NewStorageProvider(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	_, ok := p.(*LocalStorageProvider)
	assert.True(t, ok)
}
