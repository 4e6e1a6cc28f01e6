package config

import "github.com/dshills/goto/internal/embedder"

const (
	// MinDepth and MaxDepthLimit bound max_depth
	MinDepth      = 1
	MaxDepthLimit = 32

	defaultMaxDepth = 5
)

// DefaultExcludes are directory name patterns skipped by the scanner.
var DefaultExcludes = []string{"node_modules", "target", "vendor"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ScanPaths:       []string{},
		UseSpotlight:    true,
		SpotlightPaths:  []string{"~"},
		MaxDepth:        defaultMaxDepth,
		ExcludePatterns: append([]string(nil), DefaultExcludes...),
		Embedding: EmbeddingConfig{
			Provider:  embedder.ProviderLocal,
			BatchSize: embedder.DefaultBatchSize,
			CacheSize: embedder.DefaultCacheSize,
		},
		Ranking: RankingConfig{
			ExactNameBoost: 40,
			SubstringBoost: 20,
			MetadataBoost:  10,
			MinConfidence:  55,
		},
	}
}
