package search

import (
	"github.com/hyperjump/smartsearch/internal/intent"
	"github.com/hyperjump/smartsearch/internal/models"
)

// SourceWeights scales each engine's scores during fusion. Exact applies to
// the keyword engine.
type SourceWeights struct {
	Exact    float64 `json:"exact"`
	Fuzzy    float64 `json:"fuzzy"`
	Semantic float64 `json:"semantic"`
}

// DefaultSourceWeights returns exact 1.0, fuzzy 0.6, semantic 0.7.
func DefaultSourceWeights() SourceWeights {
	return SourceWeights{Exact: 1.0, Fuzzy: 0.6, Semantic: 0.7}
}

// For returns the weight of one source.
func (w SourceWeights) For(s models.Source) float64 {
	switch s {
	case models.SourceKeyword:
		return w.Exact
	case models.SourceFuzzy:
		return w.Fuzzy
	case models.SourceSemantic:
		return w.Semantic
	}
	return 0
}

// WeightsForIntent shifts the base weights toward the engines that suit the
// query's intent. Navigational, transactional and emergency queries favour
// literal matches; informational and comparison queries favour semantic
// matches; troubleshooting queries get a little more typo tolerance.
func WeightsForIntent(base SourceWeights, r intent.Result) SourceWeights {
	w := base
	w.Exact += 0.2*r[intent.Navigational] + 0.2*r[intent.Transactional] + 0.3*r[intent.Emergency]
	w.Semantic += 0.3*r[intent.Informational] + 0.2*r[intent.Comparison]
	w.Fuzzy += 0.1 * r[intent.Troubleshooting]
	return w
}
