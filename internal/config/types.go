package config

// Config is the user configuration, stored as config.yaml in the goto
// config directory.
type Config struct {
	ScanPaths       []string        `yaml:"scan_paths" koanf:"scan_paths"`
	UseSpotlight    bool            `yaml:"use_spotlight" koanf:"use_spotlight"`
	SpotlightPaths  []string        `yaml:"spotlight_paths" koanf:"spotlight_paths"`
	MaxDepth        int             `yaml:"max_depth" koanf:"max_depth"`
	ExcludePatterns []string        `yaml:"exclude_patterns" koanf:"exclude_patterns"`
	PostCommand     string          `yaml:"post_command" koanf:"post_command"`
	DatabasePath    string          `yaml:"database_path" koanf:"database_path"`
	Embedding       EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Ranking         RankingConfig   `yaml:"ranking" koanf:"ranking"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider" koanf:"provider"`
	Model     string `yaml:"model" koanf:"model"`
	APIKey    string `yaml:"api_key" koanf:"api_key"`
	BaseURL   string `yaml:"base_url" koanf:"base_url"`
	BatchSize int    `yaml:"batch_size" koanf:"batch_size"`
	CacheSize int    `yaml:"cache_size" koanf:"cache_size"`
}

// RankingConfig overrides the score boosts applied on top of similarity.
type RankingConfig struct {
	ExactNameBoost float64 `yaml:"exact_name_boost" koanf:"exact_name_boost"`
	SubstringBoost float64 `yaml:"substring_boost" koanf:"substring_boost"`
	MetadataBoost  float64 `yaml:"metadata_boost" koanf:"metadata_boost"`
	MinConfidence  float64 `yaml:"min_confidence" koanf:"min_confidence"`
}
