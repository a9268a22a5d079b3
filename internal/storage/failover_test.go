package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// brokenBackend fails every call, simulating an unreachable remote store
type brokenBackend struct{}

func (brokenBackend) Name() string { return "broken" }

func (brokenBackend) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenBackend) Save(context.Context, string, string, []byte) error {
	return errors.New("connection refused")
}

func (brokenBackend) Delete(context.Context, string, string) error {
	return errors.New("connection refused")
}

func (brokenBackend) Clear(context.Context, string) error {
	return errors.New("connection refused")
}

func TestFailoverMirrorsPrimaryWrites(t *testing.T) {
	primary := NewMemoryBackend()
	fallback := NewMemoryBackend()
	fo := NewFailover(primary, fallback)

	origin, err := fo.Save(context.Background(), "stories", "staff1", []byte(`{"a":1}`))
	assert.NoError(t, err)
	assert.Equal(t, OriginRemote, origin)

	// The fallback must hold a valid snapshot of the write
	data, err := fallback.Get(context.Background(), "stories", "staff1")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), data)
}

func TestFailoverFallsBackOnPrimaryFailure(t *testing.T) {
	fallback := NewMemoryBackend()
	fo := NewFailover(brokenBackend{}, fallback)

	origin, err := fo.Save(context.Background(), "stories", "staff1", []byte(`{"a":1}`))
	assert.NoError(t, err, "primary failure must not surface to the caller")
	assert.Equal(t, OriginLocal, origin)

	data, origin, err := fo.Get(context.Background(), "stories", "staff1")
	assert.NoError(t, err)
	assert.Equal(t, OriginLocal, origin)
	assert.Equal(t, []byte(`{"a":1}`), data)
}

func TestFailoverPrimaryNotFoundIsNotFailure(t *testing.T) {
	primary := NewMemoryBackend()
	fallback := NewMemoryBackend()
	// Stale local copy that the remote no longer has
	_ = fallback.Save(context.Background(), "stories", "staff1", []byte(`stale`))

	fo := NewFailover(primary, fallback)
	_, origin, err := fo.Get(context.Background(), "stories", "staff1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, OriginRemote, origin)
}

func TestFailoverWithoutPrimary(t *testing.T) {
	fallback := NewMemoryBackend()
	fo := NewFailover(nil, fallback)

	origin, err := fo.Save(context.Background(), "media_assets", "staff1", []byte(`[]`))
	assert.NoError(t, err)
	assert.Equal(t, OriginLocal, origin)

	data, origin, err := fo.Get(context.Background(), "media_assets", "staff1")
	assert.NoError(t, err)
	assert.Equal(t, OriginLocal, origin)
	assert.Equal(t, []byte(`[]`), data)
}

func TestFailoverClearWipesBothBackends(t *testing.T) {
	primary := NewMemoryBackend()
	fallback := NewMemoryBackend()
	fo := NewFailover(primary, fallback)

	ctx := context.Background()
	_, _ = fo.Save(ctx, "stories", "staff1", []byte(`1`))
	_, _ = fo.Save(ctx, "stories", "staff2", []byte(`2`))

	assert.NoError(t, fo.Clear(ctx, "staff1"))
	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 1, fallback.Len())

	assert.NoError(t, fo.Clear(ctx, ""))
	assert.Equal(t, 0, primary.Len())
	assert.Equal(t, 0, fallback.Len())
}
