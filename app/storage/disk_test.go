package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trucksigns/truck-signs-api/models"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	ctx := context.Background()

	name := NewBlobName("customer-", "image/png")
	assert.True(t, strings.HasPrefix(name, "customer-"))
	assert.Equal(t, ".png", filepath.Ext(name))

	require.NoError(t, store.Put(ctx, name, "image/png", strings.NewReader("fake png bytes")))

	rc, contentType, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))
	assert.Equal(t, "image/png", contentType)

	entries, err := os.ReadDir(store.root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary upload files are cleaned up")
}

func TestDiskStoreDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "flame.png", "image/png", strings.NewReader("x")))
	require.NoError(t, store.Delete(ctx, "flame.png"))

	_, _, err = store.Open(ctx, "flame.png")
	assert.ErrorIs(t, err, models.ErrBlobNotFound)
	assert.NoError(t, store.Delete(ctx, "flame.png"), "deleting twice is fine")
	assert.ErrorIs(t, store.Delete(ctx, "../escape.png"), models.ErrBlobNotFound)
}

func TestDiskStoreMissingAndInvalidNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"missing.png", "../etc/passwd", "a/b.png", ".hidden", ""} {
		t.Run(name, func(t *testing.T) {
			_, _, err := store.Open(ctx, name)
			assert.ErrorIs(t, err, models.ErrBlobNotFound)
		})
	}

	err = store.Put(ctx, "../escape.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrBlobNotFound)
}
