package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	cat := NewMemoryCatalog()

	// Empty dataset
	_, err := cat.Latest(ctx, "run-42")
	require.ErrorIs(t, err, ErrNotFound)

	versions, err := cat.Versions(ctx, "run-42")
	require.NoError(t, err)
	assert.Empty(t, versions)

	// First commit
	m := &Manifest{
		Dataset:       "run-42",
		TotalVertices: 100,
		TotalCells:    20,
	}
	require.NoError(t, cat.Put(ctx, m))
	assert.Equal(t, uint64(1), m.Version)
	assert.False(t, m.CreatedAt.IsZero())

	// Second commit
	m2 := &Manifest{
		Dataset:       "run-42",
		TotalVertices: 101,
		TotalCells:    20,
	}
	require.NoError(t, cat.Put(ctx, m2))
	assert.Equal(t, uint64(2), m2.Version)

	// Latest sees the second commit
	latest, err := cat.Latest(ctx, "run-42")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest.Version)
	assert.Equal(t, 101, latest.TotalVertices)

	versions, err = cat.Versions(ctx, "run-42")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, versions)
}

func TestMemoryCatalogIsolatedDatasets(t *testing.T) {
	ctx := context.Background()
	cat := NewMemoryCatalog()

	require.NoError(t, cat.Put(ctx, &Manifest{Dataset: "a", TotalVertices: 1}))
	require.NoError(t, cat.Put(ctx, &Manifest{Dataset: "b", TotalVertices: 2}))

	a, err := cat.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, a.TotalVertices)
	assert.Equal(t, uint64(1), a.Version)

	b, err := cat.Latest(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, b.TotalVertices)
	assert.Equal(t, uint64(1), b.Version)
}

func TestMemoryCatalogCopiesManifests(t *testing.T) {
	ctx := context.Background()
	cat := NewMemoryCatalog()

	m := &Manifest{Dataset: "run", TotalVertices: 10}
	require.NoError(t, cat.Put(ctx, m))

	// Mutating the caller's manifest must not affect the stored copy.
	m.TotalVertices = 999

	latest, err := cat.Latest(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, 10, latest.TotalVertices)
}
