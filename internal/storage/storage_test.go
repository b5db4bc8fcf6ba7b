package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/showcrawl/internal/show"
	"github.com/JakeFAU/showcrawl/internal/storage/gcs"
	"github.com/JakeFAU/showcrawl/internal/storage/local"
	"github.com/JakeFAU/showcrawl/internal/storage/memory"
)

func TestOpenLocal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shows.json")
	w, closeFn, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn()) }()

	lw, ok := w.(*local.Writer)
	require.True(t, ok)
	assert.Equal(t, path, lw.Path())
}

func TestOpenGCS(t *testing.T) {
	t.Parallel()

	w, closeFn, err := Open(context.Background(), "gs://shows-bucket/shows.json",
		option.WithoutAuthentication(), option.WithEndpoint("http://127.0.0.1:1"))
	require.NoError(t, err)
	defer func() { _ = closeFn() }()
	assert.IsType(t, &gcs.Writer{}, w)

	_, _, err = Open(context.Background(), "gs://bucket-only", option.WithoutAuthentication())
	require.Error(t, err)
}

func TestMultiWritesEveryWriter(t *testing.T) {
	t.Parallel()

	primary, mirror := memory.New(), memory.New()
	m := NewMulti(primary, nil, mirror)

	uri, err := m.Write(context.Background(), show.Snapshot{RunID: "run-1"})
	require.NoError(t, err)
	assert.Equal(t, "memory://snapshots/1", uri)
	assert.Len(t, primary.Snapshots(), 1)
	assert.Len(t, mirror.Snapshots(), 1)
}

func TestMultiFailsOnAnyWriter(t *testing.T) {
	t.Parallel()

	primary, mirror := memory.New(), memory.New()
	boom := errors.New("mirror down")
	mirror.FailWith(boom)

	_, err := NewMulti(primary, mirror).Write(context.Background(), show.Snapshot{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "memory://snapshots/1")

	failing := memory.New()
	failing.FailWith(boom)
	other := memory.New()
	_, err = NewMulti(failing, other).Write(context.Background(), show.Snapshot{})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, other.Snapshots(), "mirrors are skipped when the primary fails")
}
