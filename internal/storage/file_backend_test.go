package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendRoundTrip(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.Get(ctx, "stories", "staff1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Save(ctx, "stories", "staff1", []byte(`{"x":true}`)))

	data, err := b.Get(ctx, "stories", "staff1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":true}`), data)

	// Overwrite
	require.NoError(t, b.Save(ctx, "stories", "staff1", []byte(`{"x":false}`)))
	data, err = b.Get(ctx, "stories", "staff1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":false}`), data)

	require.NoError(t, b.Delete(ctx, "stories", "staff1"))
	_, err = b.Get(ctx, "stories", "staff1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine
	assert.NoError(t, b.Delete(ctx, "stories", "staff1"))
}

func TestFileBackendClear(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "stories", "staff1", []byte(`1`)))
	require.NoError(t, b.Save(ctx, "media_assets", "staff1", []byte(`2`)))
	require.NoError(t, b.Save(ctx, "stories", "staff2", []byte(`3`)))

	require.NoError(t, b.Clear(ctx, "staff1"))
	_, err = b.Get(ctx, "stories", "staff1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Get(ctx, "media_assets", "staff1")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := b.Get(ctx, "stories", "staff2")
	require.NoError(t, err)
	assert.Equal(t, []byte(`3`), data)

	require.NoError(t, b.Clear(ctx, ""))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileBackendSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "../escape", "../../owner", []byte(`x`)))

	// Nothing may land outside the data dir
	outside := filepath.Join(dir, "..", "escape")
	_, statErr := os.Stat(outside)
	assert.True(t, os.IsNotExist(statErr))

	data, err := b.Get(ctx, "../escape", "../../owner")
	require.NoError(t, err)
	assert.Equal(t, []byte(`x`), data)
}
