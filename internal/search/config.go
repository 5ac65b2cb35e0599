package search

import (
	"time"

	"github.com/hyperjump/smartsearch/internal/config"
	"github.com/hyperjump/smartsearch/internal/index"
	"github.com/hyperjump/smartsearch/internal/keyword"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/synonym"
	"github.com/hyperjump/smartsearch/internal/vector"
)

// Config holds the orchestrator's request defaults and bounds.
type Config struct {
	DefaultMode        models.Mode
	DefaultPageSize    int
	MaxPageSize        int
	TopK               int
	EngineTimeout      time.Duration
	Weights            SourceWeights
	Expansion          synonym.Options
	MaxVariants        int
	GroupByType        bool
	MaxSuggestions     int
	MaxRecommendations int
	MaxRelatedQueries  int
}

// DefaultConfig mirrors config.Default.
func DefaultConfig() Config {
	return Config{
		DefaultMode:        models.ModeHybrid,
		DefaultPageSize:    20,
		MaxPageSize:        100,
		TopK:               100,
		EngineTimeout:      2 * time.Second,
		Weights:            DefaultSourceWeights(),
		Expansion:          synonym.DefaultOptions(),
		MaxVariants:        5,
		MaxSuggestions:     5,
		MaxRecommendations: 3,
		MaxRelatedQueries:  5,
	}
}

// ConfigFrom converts loaded settings. cfg must have had defaults applied.
func ConfigFrom(cfg *config.Config) Config {
	s := cfg.Search
	return Config{
		DefaultMode:     models.Mode(s.DefaultMode),
		DefaultPageSize: s.DefaultPageSize,
		MaxPageSize:     s.MaxPageSize,
		TopK:            s.TopKCandidates,
		EngineTimeout:   s.EngineTimeout,
		Weights: SourceWeights{
			Exact:    cfg.Weights.Exact,
			Fuzzy:    cfg.Weights.Fuzzy,
			Semantic: cfg.Weights.Semantic,
		},
		Expansion: synonym.Options{
			MaxSynonymsPerTerm:  cfg.Expansion.MaxSynonymsPerTerm,
			IncludeRelatedTerms: cfg.Expansion.IncludeRelatedTerms == nil || *cfg.Expansion.IncludeRelatedTerms,
			ConfidenceThreshold: cfg.Expansion.ConfidenceThreshold,
		},
		MaxVariants:        cfg.Expansion.MaxVariants,
		GroupByType:        s.GroupByType,
		MaxSuggestions:     s.MaxSuggestions,
		MaxRecommendations: s.MaxRecommendations,
		MaxRelatedQueries:  s.MaxRelatedQueries,
	}
}

// IndexOptions converts loaded settings into snapshot build options.
func IndexOptions(cfg *config.Config) index.Options {
	sem := vector.DefaultSemanticOptions()
	sem.MinSimilarity = cfg.Search.MinSimilarity
	return index.Options{
		TermIndexDir:   cfg.Storage.TermIndexPath,
		FieldWeights:   keyword.FieldWeights(cfg.Weights.Fields()),
		WordMatchScore: cfg.Weights.Partial,
		Fuzzy: keyword.FuzzyOptions{
			MaxDistance:   cfg.Search.FuzzyMaxDistance,
			MinSimilarity: cfg.Search.FuzzyMinSimilarity,
		},
		Semantic: sem,
	}
}
