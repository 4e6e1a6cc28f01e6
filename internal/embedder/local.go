package embedder

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

// LocalProvider embeds text offline by hashing words and character
// trigrams into a fixed number of buckets. Texts that share vocabulary end
// up close in L2 distance, which is enough to rank project descriptions
// without a network round trip.
type LocalProvider struct {
	dimension int
	cache     *Cache
}

// NewLocalProvider creates a new local embedder
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		dimension: LocalDimension,
		cache:     cache,
	}, nil
}

func (l *LocalProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	resp, err := l.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (l *LocalProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	result, missing := cachedBatch(l.cache, req.Texts)
	fresh := make([]*Embedding, 0, len(missing))
	for _, idx := range missing {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
		}
		fresh = append(fresh, &Embedding{
			Vector:    l.embed(req.Texts[idx]),
			Dimension: l.dimension,
			Provider:  ProviderLocal,
			Model:     DefaultLocalModel,
		})
	}
	if err := storeBatch(l.cache, req.Texts, missing, fresh, result); err != nil {
		return nil, err
	}

	return &BatchEmbeddingResponse{
		Embeddings: result,
		Provider:   ProviderLocal,
		Model:      DefaultLocalModel,
	}, nil
}

func (l *LocalProvider) embed(text string) []float32 {
	vec := make([]float32, l.dimension)
	for _, word := range tokenize(text) {
		l.add(vec, "w:"+word, wordWeight)

		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			l.add(vec, "t:"+string(padded[i:i+3]), trigramWeight)
		}
	}
	return NormalizeVector(vec)
}

// add hashes a feature into a bucket; the top bit picks the sign so
// unrelated features cancel out on average
func (l *LocalProvider) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(l.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (l *LocalProvider) Dimension() int {
	return l.dimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return DefaultLocalModel
}

func (l *LocalProvider) Close() error {
	return nil
}
