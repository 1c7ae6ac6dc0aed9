package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Upload(t *testing.T) {
	root := t.TempDir()
	store, err := New(context.Background(), Config{
		Provider: ProviderLocal,
		Local:    &LocalCfg{RootDir: root, BaseURL: "https://cdn.test/blobs"},
	})
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "news/art-1/image.jpg", []byte("payload"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/blobs/news/art-1/image.jpg", url)

	data, err := os.ReadFile(filepath.Join(root, "news", "art-1", "image.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestLocalStore_OverwriteIsIdempotent(t *testing.T) {
	root := t.TempDir()
	store, err := New(context.Background(), Config{
		Provider: ProviderLocal,
		Local:    &LocalCfg{RootDir: root},
	})
	require.NoError(t, err)

	first, err := store.Upload(context.Background(), "news/a/img.jpg", []byte("v1"), "image/jpeg")
	require.NoError(t, err)
	second, err := store.Upload(context.Background(), "news/a/img.jpg", []byte("v2"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(filepath.Join(root, "news", "a", "img.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestNew_DefaultsToLocal(t *testing.T) {
	root := t.TempDir()
	store, err := New(context.Background(), Config{Local: &LocalCfg{RootDir: root}})
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "azure-blob"})
	assert.Error(t, err)
}
