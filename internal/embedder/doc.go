// Package embedder turns project descriptions into vectors.
//
// Three providers are available:
//
//   - local: offline feature hashing of words and character trigrams (384 dims)
//   - openai: the OpenAI embeddings API, or any compatible server via BaseURL
//   - jina: the Jina AI embeddings API (1024 dims)
//
// # Provider Selection
//
// New picks the configured provider. With no provider configured:
//
//  1. If GOTO_EMBEDDING_PROVIDER is set, use it
//  2. Else if JINA_API_KEY is set, use Jina AI
//  3. Else if OPENAI_API_KEY is set, use OpenAI
//  4. Else use the local provider
//
// # Concurrency
//
// New returns an Exclusive wrapper. Every call holds a process-wide lock for
// its whole duration, and batches are split into chunks of at most BatchSize
// texts inside one acquisition:
//
//	emb, err := embedder.New(embedder.Config{Provider: "local"})
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: texts,
//	})
//
// # Caching
//
// Providers share an LRU cache keyed by the SHA-256 of the input text.
// Cached vectors are deep-copied on read.
//
// # Error Handling
//
// Remote providers retry transient failures with exponential backoff. A
// failed batch returns an error wrapping ErrProviderFailed and no partial
// results.
package embedder
