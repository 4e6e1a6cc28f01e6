package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goto/internal/storage"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	p, err := NewLocalProvider(nil)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "foyer | hybrid cache in rust"})
	require.NoError(t, err)
	b, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "foyer | hybrid cache in rust"})
	require.NoError(t, err)

	assert.Equal(t, a.Vector, b.Vector)
	assert.Len(t, a.Vector, LocalDimension)
	assert.Equal(t, ProviderLocal, a.Provider)

	var norm float64
	for _, v := range a.Vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-4)
}

func TestLocalProvider_SharedVocabularyIsCloser(t *testing.T) {
	p, err := NewLocalProvider(NewCache(10))
	require.NoError(t, err)

	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{
		"cache en rust",
		"foyer | A hybrid in-memory and disk cache | Technologies: Rust",
		"console-web | admin dashboard | Technologies: TypeScript, React",
	}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)

	query := resp.Embeddings[0].Vector
	near := storage.L2Distance(query, resp.Embeddings[1].Vector)
	far := storage.L2Distance(query, resp.Embeddings[2].Vector)
	assert.Less(t, near, far)
}

func TestLocalProvider_UsesCache(t *testing.T) {
	cache := NewCache(10)
	p, err := NewLocalProvider(cache)
	require.NoError(t, err)

	_, err = p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"one", "two"}})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Size())

	_, err = p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"two", "three"}})
	require.NoError(t, err)
	assert.Equal(t, 3, cache.Size())
}

func TestLocalProvider_RejectsEmptyText(t *testing.T) {
	p, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"ok", ""}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
