package blob_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/blob"
)

func TestFSStorePut(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := blob.NewFSStore(dir, "http://localhost:8080/blobs/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "generated/owner1/img.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/generated/owner1/img.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "generated", "owner1", "img.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestFSStoreGetRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := blob.NewFSStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Put(ctx, "uploads/in.png", []byte("input-bytes"), "image/png")
	require.NoError(t, err)

	data, err := store.Get(ctx, "uploads/in.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("input-bytes"), data)
}

func TestFSStoreGetMissingKey(t *testing.T) {
	t.Parallel()

	store, err := blob.NewFSStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope.png")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestFSStorePutOverwrites(t *testing.T) {
	t.Parallel()

	store, err := blob.NewFSStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Put(ctx, "k.png", []byte("one"), "image/png")
	require.NoError(t, err)
	_, err = store.Put(ctx, "k.png", []byte("two"), "image/png")
	require.NoError(t, err)
}

func TestFSStoreKeyTraversalConfined(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := blob.NewFSStore(dir, "http://x")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../../escape.png", []byte("x"), "image/png")
	require.NoError(t, err)

	// The cleaned key stays inside the base directory.
	_, statErr := os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, statErr)
}

func TestNewFSStoreRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := blob.NewFSStore("  ", "http://x")
	assert.Error(t, err)
}
