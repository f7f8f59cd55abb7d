package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// flakyBackend wraps a FileBackend and can be toggled unavailable or
// made to fail stores.
type flakyBackend struct {
	*FileBackend
	down      bool
	failStore bool
}

func (f *flakyBackend) Available(ctx context.Context) bool {
	return !f.down
}

func (f *flakyBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	if f.failStore {
		return interfaces.ContentID{}, errors.New("store failed")
	}
	return f.FileBackend.Store(ctx, data, contentType)
}

func newFlaky(t *testing.T) *flakyBackend {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir(), testLogger())
	require.NoError(t, err)
	return &flakyBackend{FileBackend: backend}
}

func TestMultiBackend_StoresToAllAvailable(t *testing.T) {
	first := newFlaky(t)
	second := newFlaky(t)
	multi := NewMultiBackend([]interfaces.StorageBackend{first, second}, testLogger())

	ctx := context.Background()
	data := []byte("snapshot-data")

	id, err := multi.Store(ctx, data, interfaces.SnapshotType)
	require.NoError(t, err)

	// Both backends hold the content independently.
	fetched, err := first.Fetch(ctx, id, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	fetched, err = second.Fetch(ctx, id, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)
}

func TestMultiBackend_FetchFallsBack(t *testing.T) {
	first := newFlaky(t)
	second := newFlaky(t)
	multi := NewMultiBackend([]interfaces.StorageBackend{first, second}, testLogger())

	ctx := context.Background()
	data := []byte("snapshot-data")

	// Only the second backend has the content.
	id, err := second.FileBackend.Store(ctx, data, interfaces.SnapshotType)
	require.NoError(t, err)

	fetched, err := multi.Fetch(ctx, id, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)
}

func TestMultiBackend_SkipsUnavailable(t *testing.T) {
	first := newFlaky(t)
	first.down = true
	second := newFlaky(t)
	multi := NewMultiBackend([]interfaces.StorageBackend{first, second}, testLogger())

	ctx := context.Background()
	id, err := multi.Store(ctx, []byte("snapshot-data"), interfaces.SnapshotType)
	require.NoError(t, err)

	// The down backend never saw the content.
	_, err = first.FileBackend.Fetch(ctx, id, interfaces.SnapshotType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)

	_, err = second.Fetch(ctx, id, interfaces.SnapshotType)
	assert.NoError(t, err)
}

func TestMultiBackend_StoreFailsWhenNoneAccept(t *testing.T) {
	first := newFlaky(t)
	first.failStore = true
	second := newFlaky(t)
	second.down = true
	multi := NewMultiBackend([]interfaces.StorageBackend{first, second}, testLogger())

	_, err := multi.Store(context.Background(), []byte("snapshot-data"), interfaces.SnapshotType)
	assert.Error(t, err)
}

func TestMultiBackend_Available(t *testing.T) {
	first := newFlaky(t)
	first.down = true
	second := newFlaky(t)

	multi := NewMultiBackend([]interfaces.StorageBackend{first, second}, testLogger())
	assert.True(t, multi.Available(context.Background()))

	second.down = true
	assert.False(t, multi.Available(context.Background()))
}
