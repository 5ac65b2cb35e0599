package config

import "time"

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/smartsearch/data/db/documents.db"
	}

	if cfg.Search.DefaultMode == "" {
		cfg.Search.DefaultMode = "hybrid"
	}
	if cfg.Search.DefaultPageSize == 0 {
		cfg.Search.DefaultPageSize = 20
	}
	if cfg.Search.MaxPageSize == 0 {
		cfg.Search.MaxPageSize = 100
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 100
	}
	if cfg.Search.MinSimilarity == 0 {
		cfg.Search.MinSimilarity = 0.05
	}
	if cfg.Search.FuzzyMaxDistance == 0 {
		cfg.Search.FuzzyMaxDistance = 2
	}
	if cfg.Search.FuzzyMinSimilarity == 0 {
		cfg.Search.FuzzyMinSimilarity = 0.5
	}
	if cfg.Search.EngineTimeout == 0 {
		cfg.Search.EngineTimeout = 2 * time.Second
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = 5
	}
	if cfg.Search.MaxRecommendations == 0 {
		cfg.Search.MaxRecommendations = 3
	}
	if cfg.Search.MaxRelatedQueries == 0 {
		cfg.Search.MaxRelatedQueries = 5
	}

	w := &cfg.Weights
	if *w == (WeightsConfig{}) {
		*w = WeightsConfig{
			Exact: 1.0, Partial: 0.8, Fuzzy: 0.6, Semantic: 0.7,
			Title: 1.0, Description: 0.8, Content: 0.6, Keywords: 0.9, Tags: 0.7,
		}
	}

	if cfg.Expansion.MaxSynonymsPerTerm == 0 {
		cfg.Expansion.MaxSynonymsPerTerm = 3
	}
	if cfg.Expansion.IncludeRelatedTerms == nil {
		t := true
		cfg.Expansion.IncludeRelatedTerms = &t
	}
	if cfg.Expansion.ConfidenceThreshold == 0 {
		cfg.Expansion.ConfidenceThreshold = 0.6
	}
	if cfg.Expansion.MaxVariants == 0 {
		cfg.Expansion.MaxVariants = 5
	}

	if cfg.Cache.Enabled == nil {
		t := true
		cfg.Cache.Enabled = &t
	}
	if cfg.Cache.Timeout == 0 {
		cfg.Cache.Timeout = 5 * time.Minute
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1000
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = "smartsearch:"
	}

	if cfg.Analytics.MaxEvents == 0 {
		cfg.Analytics.MaxEvents = 1000
	}

	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".odt", ".rtf", ".xlsx"}
	}
	if cfg.Watch.Workers == 0 {
		cfg.Watch.Workers = 4
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
