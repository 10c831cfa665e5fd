package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/nirmaanhq/siteops-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := "site photo bytes"
	path, size, err := store.Upload(ctx, "slab.jpg", "image/jpeg", strings.NewReader(content))
	require.NoError(t, err)
	assert.EqualValues(t, len(content), size)
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	reader, err := store.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestLocalStorage_UploadsGetUniquePaths(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, _, err := store.Upload(ctx, "slab.jpg", "image/jpeg", strings.NewReader("a"))
	require.NoError(t, err)
	second, _, err := store.Upload(ctx, "slab.jpg", "image/jpeg", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "aa/bb/missing.jpg")
	assert.ErrorContains(t, err, "file not found")
}

func TestLocalStorage_Delete(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, _, err := store.Upload(ctx, "slab.jpg", "image/jpeg", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Download(ctx, path)
	assert.Error(t, err)

	// Deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, path))
}
