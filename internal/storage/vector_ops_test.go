package storage

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goto/pkg/types"
)

// seedVectors stores one vector per name and returns the project ids in order
func seedVectors(t *testing.T, storage *SQLiteStorage, vectors map[string][]float32, order []string) []int64 {
	ctx := context.Background()
	paths := makeDirs(t, order...)
	_, err := storage.UpsertBatch(ctx, paths, types.SourceScan)
	require.NoError(t, err)

	ids := make([]int64, len(order))
	for i, path := range paths {
		p, err := storage.GetByPath(ctx, path)
		require.NoError(t, err)
		ids[i] = p.ID
		require.NoError(t, storage.UpsertVector(ctx, p.ID, &Vector{Values: vectors[order[i]], Provider: "mock", Model: "m"}))
	}
	return ids
}

func TestNearest_OrderedByDistance(t *testing.T) {
	storage := setupTestDB(t)
	order := []string{"far", "near", "mid"}
	ids := seedVectors(t, storage, map[string][]float32{
		"far":  {10, 0, 0},
		"near": {1, 0, 0},
		"mid":  {3, 0, 0},
	}, order)

	hits, err := storage.Nearest(context.Background(), []float32{0, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, ids[1], hits[0].ProjectID)
	assert.Equal(t, ids[2], hits[1].ProjectID)
	assert.Equal(t, ids[0], hits[2].ProjectID)
	assert.InDelta(t, 1.0, hits[0].Distance, 1e-6)
	assert.InDelta(t, 3.0, hits[1].Distance, 1e-6)
	assert.InDelta(t, 10.0, hits[2].Distance, 1e-6)
}

func TestNearest_Limit(t *testing.T) {
	storage := setupTestDB(t)
	seedVectors(t, storage, map[string][]float32{
		"a": {1, 1},
		"b": {2, 2},
		"c": {3, 3},
	}, []string{"a", "b", "c"})

	hits, err := storage.Nearest(context.Background(), []float32{0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = storage.Nearest(context.Background(), []float32{0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNearest_EmptyStore(t *testing.T) {
	storage := setupTestDB(t)
	hits, err := storage.Nearest(context.Background(), []float32{1, 2, 3}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNearest_SkipsDimensionMismatch(t *testing.T) {
	storage := setupTestDB(t)
	ids := seedVectors(t, storage, map[string][]float32{
		"two":   {1, 1},
		"three": {1, 1, 1},
	}, []string{"two", "three"})

	hits, err := storage.Nearest(context.Background(), []float32{1, 1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, ids[1], hits[0].ProjectID)
}

func TestNearest_FallbackMatchesOptimized(t *testing.T) {
	if !VectorExtensionAvailable {
		t.Skip("Skipping test: sqlite-vec extension not available")
	}

	storage := setupTestDB(t)
	vectors := map[string][]float32{}
	var order []string
	for i := 0; i < 20; i++ {
		name := string(rune('a' + i))
		order = append(order, name)
		vectors[name] = []float32{float32(i) * 0.3, float32(20-i) * 0.1, float32(i % 3)}
	}
	seedVectors(t, storage, vectors, order)

	ctx := context.Background()
	query := []float32{2, 1, 1}
	optimized, err := searchNearestOptimized(ctx, storage.db, query, 7)
	require.NoError(t, err)
	fallback, err := searchNearestFallback(ctx, storage.db, query, 7)
	require.NoError(t, err)

	require.Len(t, optimized, len(fallback))
	for i := range fallback {
		assert.Equal(t, fallback[i].ProjectID, optimized[i].ProjectID, "position %d", i)
		assert.InDelta(t, fallback[i].Distance, optimized[i].Distance, 1e-4)
	}
}

func TestSerializeVectorRoundTrip(t *testing.T) {
	original := []float32{0, 1.5, -2.25, float32(math.Pi), 1e-7}
	blob := SerializeVector(original)
	assert.Len(t, blob, len(original)*4)
	assert.Equal(t, original, DeserializeVector(blob))
}

func TestL2Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit axis", []float32{0, 0}, []float32{0, 1}, 1},
		{"3-4-5", []float32{0, 0}, []float32{3, 4}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, L2Distance(tt.a, tt.b), 1e-9)
		})
	}

	assert.True(t, math.IsInf(L2Distance([]float32{1}, []float32{1, 2}), 1))
}

func TestSortCandidates_TiesByID(t *testing.T) {
	c := []candidate{
		{projectID: 3, distance: 1},
		{projectID: 1, distance: 1},
		{projectID: 2, distance: 0.5},
	}
	sortCandidates(c)
	assert.Equal(t, []int64{2, 1, 3}, []int64{c[0].projectID, c[1].projectID, c[2].projectID})
}
