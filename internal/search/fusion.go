// Package search composes intent matching, query expansion, the retrieval
// engines, fusion, caching and analytics into one search pipeline.
package search

import (
	"sort"

	"github.com/hyperjump/smartsearch/internal/models"
)

// Candidates holds each engine's ranked list. A missing source is the same as
// an empty list.
type Candidates map[models.Source][]models.SearchResult

// Fuse merges candidate lists into one ranking. Sources are processed in the
// fixed order of models.Sources. A result seen for the first time is inserted
// with score*weight; a repeat keeps the larger of its current score and the
// new weighted score, unions matched fields and appends highlights. Equal
// scores keep first-insertion order.
func Fuse(c Candidates, w SourceWeights) []models.SearchResult {
	byID := make(map[string]int)
	out := []models.SearchResult{}

	for _, src := range models.Sources {
		weight := w.For(src)
		for _, r := range c[src] {
			score := r.Score * weight
			i, ok := byID[r.ID]
			if !ok {
				fused := r
				fused.Score = score
				fused.MatchedFields = append([]string{}, r.MatchedFields...)
				fused.Highlights = append([]string{}, r.Highlights...)
				byID[r.ID] = len(out)
				out = append(out, fused)
				continue
			}
			existing := &out[i]
			if score > existing.Score {
				existing.Score = score
			}
			existing.MatchedFields = union(existing.MatchedFields, r.MatchedFields)
			existing.Highlights = append(existing.Highlights, r.Highlights...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func union(a, b []string) []string {
	for _, s := range b {
		found := false
		for _, t := range a {
			if s == t {
				found = true
				break
			}
		}
		if !found {
			a = append(a, s)
		}
	}
	return a
}
