package embedder

import (
	"context"
	"fmt"
	"sync"
)

// Exclusive serializes every call into the wrapped embedder. A lock is held
// for the full duration of a call, so at most one inference runs at a time
// across the process.
type Exclusive struct {
	mu        sync.Mutex
	inner     Embedder
	batchSize int
}

// NewExclusive wraps inner. Batches larger than batchSize are split into
// chunks inside a single lock acquisition.
func NewExclusive(inner Embedder, batchSize int) *Exclusive {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = DefaultBatchSize
	}
	return &Exclusive{inner: inner, batchSize: batchSize}
}

func (e *Exclusive) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.GenerateEmbedding(ctx, req)
}

func (e *Exclusive) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := &BatchEmbeddingResponse{
		Embeddings: make([]*Embedding, 0, len(req.Texts)),
		Provider:   e.inner.Provider(),
		Model:      e.inner.Model(),
	}
	for start := 0; start < len(req.Texts); start += e.batchSize {
		end := min(start+e.batchSize, len(req.Texts))
		resp, err := e.inner.GenerateBatch(ctx, BatchEmbeddingRequest{
			Texts: req.Texts[start:end],
			Model: req.Model,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(resp.Embeddings), end-start)
		}
		out.Embeddings = append(out.Embeddings, resp.Embeddings...)
		out.Model = resp.Model
	}
	return out, nil
}

func (e *Exclusive) Dimension() int {
	return e.inner.Dimension()
}

func (e *Exclusive) Provider() string {
	return e.inner.Provider()
}

func (e *Exclusive) Model() string {
	return e.inner.Model()
}

func (e *Exclusive) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Close()
}
