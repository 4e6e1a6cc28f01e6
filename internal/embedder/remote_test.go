package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fakeEmbeddingsServer answers OpenAI/Jina style requests with a vector of
// [index, len(text)] per input, listed in reverse order.
func fakeEmbeddingsServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{
				Object:    "embedding",
				Embedding: []float32{float32(i), float32(len(req.Input[i]))},
				Index:     i,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJinaProvider_OrdersByIndex(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddingsServer(t, &calls)

	p, err := NewJinaProvider("test-key", "", srv.URL, NewCache(10))
	require.NoError(t, err)

	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"a", "bbb"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, []float32{0, 1}, resp.Embeddings[0].Vector)
	assert.Equal(t, []float32{1, 3}, resp.Embeddings[1].Vector)
	assert.Equal(t, DefaultJinaModel, resp.Model)

	// Second call is served from cache
	_, err = p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"a", "bbb"}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestJinaProvider_FailsWholeBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p, err := NewJinaProvider("test-key", "", srv.URL, nil)
	require.NoError(t, err)
	p.retry = backoff{attempts: 1}

	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"a"}})
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.Nil(t, resp)
}

func TestJinaProvider_RequiresKey(t *testing.T) {
	t.Setenv(EnvJinaAPIKey, "")
	_, err := NewJinaProvider("", "", "", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestOpenAIProvider_CompatibleServer(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddingsServer(t, &calls)

	t.Setenv(EnvOpenAIAPIKey, "")
	p, err := NewOpenAIProvider("", "nomic-embed-text", srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Dimension())

	emb, err := p.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "kafka"})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 5}, emb.Vector)
	assert.Equal(t, 2, p.Dimension())
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIProvider_RequiresKeyWithoutBaseURL(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	_, err := NewOpenAIProvider("", "", "", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}
