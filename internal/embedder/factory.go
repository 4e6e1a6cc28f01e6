package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	CacheSize int
	BatchSize int
}

// New creates an embedder with explicit configuration. The result is
// wrapped in Exclusive so callers may share it across goroutines.
func New(cfg Config) (*Exclusive, error) {
	cache := NewCache(cfg.CacheSize)

	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = DetectProvider()
	}

	var (
		inner Embedder
		err   error
	)
	switch provider {
	case ProviderJina:
		inner, err = NewJinaProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cache)
	case ProviderOpenAI:
		inner, err = NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cache)
	case ProviderLocal:
		inner, err = NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewExclusive(inner, cfg.BatchSize), nil
}

// DetectProvider returns the provider that would be used based on current environment
// Priority:
// 1. GOTO_EMBEDDING_PROVIDER (jina, openai, local)
// 2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
// 3. Default to local if no API keys found
func DetectProvider() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}
