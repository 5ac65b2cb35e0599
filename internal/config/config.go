// Package config provides configuration loading and structs for the smartsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	Weights   WeightsConfig   `yaml:"weights"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Cache     CacheConfig     `yaml:"cache"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Watch     WatchConfig     `yaml:"watch"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	Workers     int      `yaml:"workers"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document catalog and term indexes.
type StorageConfig struct {
	DatabasePath  string `yaml:"database_path"`
	// TermIndexPath is the parent of per-generation bleve directories.
	// Empty keeps term indexes in memory.
	TermIndexPath string `yaml:"term_index_path"`
}

// SearchConfig holds request defaults and retrieval bounds.
type SearchConfig struct {
	DefaultMode        string        `yaml:"default_mode"`
	DefaultPageSize    int           `yaml:"default_page_size"`
	MaxPageSize        int           `yaml:"max_page_size"`
	TopKCandidates     int           `yaml:"top_k_candidates"`
	MinSimilarity      float64       `yaml:"min_similarity"`
	FuzzyMaxDistance   int           `yaml:"fuzzy_max_distance"`
	FuzzyMinSimilarity float64       `yaml:"fuzzy_min_similarity"`
	EngineTimeout      time.Duration `yaml:"engine_timeout"`
	GroupByType        bool          `yaml:"group_by_type"`
	MaxSuggestions     int           `yaml:"max_suggestions"`
	MaxRecommendations int           `yaml:"max_recommendations"`
	MaxRelatedQueries  int           `yaml:"max_related_queries"`
}

// WeightsConfig holds fusion weights per match source and scoring weights
// per document field.
type WeightsConfig struct {
	Exact       float64 `yaml:"exact"`
	Partial     float64 `yaml:"partial"`
	Fuzzy       float64 `yaml:"fuzzy"`
	Semantic    float64 `yaml:"semantic"`
	Title       float64 `yaml:"title"`
	Description float64 `yaml:"description"`
	Content     float64 `yaml:"content"`
	Keywords    float64 `yaml:"keywords"`
	Tags        float64 `yaml:"tags"`
}

// Fields returns the field weights keyed by field name.
func (w WeightsConfig) Fields() map[string]float64 {
	return map[string]float64{
		"title":       w.Title,
		"description": w.Description,
		"content":     w.Content,
		"keywords":    w.Keywords,
		"tags":        w.Tags,
	}
}

// ExpansionConfig holds synonym expansion settings.
type ExpansionConfig struct {
	MaxSynonymsPerTerm  int     `yaml:"max_synonyms_per_term"`
	IncludeRelatedTerms *bool   `yaml:"include_related_terms"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MaxVariants         int     `yaml:"max_variants"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled    *bool         `yaml:"enabled"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxEntries int           `yaml:"max_entries"`
	Backend    string        `yaml:"backend"` // memory or redis
	Redis      RedisConfig   `yaml:"redis"`
}

// EnabledOrDefault reports whether caching is on; defaults to true when unset.
func (c *CacheConfig) EnabledOrDefault() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return true
}

// RedisConfig holds the shared cache connection.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// AnalyticsConfig bounds the in-memory event log.
type AnalyticsConfig struct {
	MaxEvents int `yaml:"max_events"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Storage.TermIndexPath != "" {
		cfg.Storage.TermIndexPath = expandPath(cfg.Storage.TermIndexPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate rejects settings the search pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Search.DefaultMode {
	case "keyword", "fuzzy", "semantic", "hybrid":
	default:
		return fmt.Errorf("invalid search.default_mode %q", c.Search.DefaultMode)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size %d exceeds max_page_size %d",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache.backend %q", c.Cache.Backend)
	}
	return nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
