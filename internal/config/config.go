package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/shlex"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/dshills/goto/internal/embedder"
)

const (
	// EnvPrefix marks environment overrides, e.g. GOTO_MAX_DEPTH
	EnvPrefix = "GOTO_"

	appName        = "goto"
	configFileName = "config.yaml"
	dbFileName     = "cache.db"
)

// sections are nested keys; GOTO_EMBEDDING_API_KEY maps to embedding.api_key
var sections = []string{"embedding", "ranking"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GOTO_*). A missing file is created with
// the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps GOTO_MAX_DEPTH to max_depth and GOTO_EMBEDDING_PROVIDER to
// embedding.provider
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.MaxDepth < MinDepth || c.MaxDepth > MaxDepthLimit {
		return fmt.Errorf("max_depth must be between %d and %d, got %d", MinDepth, MaxDepthLimit, c.MaxDepth)
	}

	if c.Embedding.Provider != "" && !slices.Contains(embedder.ValidProviders, strings.ToLower(c.Embedding.Provider)) {
		return fmt.Errorf("invalid embedding.provider %q: must be one of %s",
			c.Embedding.Provider, strings.Join(embedder.ValidProviders, ", "))
	}
	if c.Embedding.BatchSize < 0 || c.Embedding.BatchSize > embedder.MaxBatchSize {
		return fmt.Errorf("embedding.batch_size must be between 0 and %d", embedder.MaxBatchSize)
	}
	if c.Embedding.CacheSize < 0 {
		return errors.New("embedding.cache_size must be non-negative")
	}

	if c.PostCommand != "" {
		argv, err := shlex.Split(c.PostCommand)
		if err != nil {
			return fmt.Errorf("invalid post_command: %w", err)
		}
		if len(argv) == 0 {
			return errors.New("post_command produced an empty command")
		}
	}

	r := c.Ranking
	if r.ExactNameBoost < 0 || r.SubstringBoost < 0 || r.MetadataBoost < 0 {
		return errors.New("ranking boosts must be non-negative")
	}
	if r.MinConfidence < 0 || r.MinConfidence > 100 {
		return errors.New("ranking.min_confidence must be between 0 and 100")
	}

	return nil
}

// AddScanPath appends path unless it is already listed. It reports whether
// the list changed.
func (c *Config) AddScanPath(path string) bool {
	path = filepath.Clean(path)
	if slices.Contains(c.ScanPaths, path) {
		return false
	}
	c.ScanPaths = append(c.ScanPaths, path)
	return true
}

// RemoveScanPath drops every entry equal to path. It reports whether the
// list changed.
func (c *Config) RemoveScanPath(path string) bool {
	path = filepath.Clean(path)
	before := len(c.ScanPaths)
	c.ScanPaths = slices.DeleteFunc(c.ScanPaths, func(p string) bool {
		return filepath.Clean(p) == path
	})
	return len(c.ScanPaths) != before
}

// ExpandedScanPaths returns the scan paths with ~ expanded
func (c *Config) ExpandedScanPaths() ([]string, error) {
	return expandAll(c.ScanPaths)
}

// ExpandedSpotlightPaths returns the system-index roots with ~ expanded
func (c *Config) ExpandedSpotlightPaths() ([]string, error) {
	return expandAll(c.SpotlightPaths)
}

func expandAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		expanded, err := ExpandPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// PostCommandArgs splits post_command into argv
func (c *Config) PostCommandArgs() ([]string, error) {
	if c.PostCommand == "" {
		return nil, nil
	}
	return shlex.Split(c.PostCommand)
}

// EmbedderConfig returns the settings for embedder.New
func (c *Config) EmbedderConfig() embedder.Config {
	return embedder.Config{
		Provider:  c.Embedding.Provider,
		Model:     c.Embedding.Model,
		APIKey:    c.Embedding.APIKey,
		BaseURL:   c.Embedding.BaseURL,
		CacheSize: c.Embedding.CacheSize,
		BatchSize: c.Embedding.BatchSize,
	}
}
