package vector

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/hyperjump/smartsearch/internal/highlight"
	"github.com/hyperjump/smartsearch/internal/models"
)

// maxRelevance caps the relevance multiplier.
const maxRelevance = 3.0

// SemanticOptions tunes semantic scoring.
type SemanticOptions struct {
	MinSimilarity float64
	// Type boosts multiply relevance per document type.
	TypeBoosts map[models.DocumentType]float64
}

// DefaultSemanticOptions returns the stock floor and type boosts.
func DefaultSemanticOptions() SemanticOptions {
	return SemanticOptions{
		MinSimilarity: 0.05,
		TypeBoosts: map[models.DocumentType]float64{
			models.DocumentArticle: 1.0,
			models.DocumentPDF:     1.5,
			models.DocumentTool:    1.3,
		},
	}
}

// SemanticEngine ranks documents by TF-IDF cosine similarity to the query.
// It is bound to one corpus generation.
type SemanticEngine struct {
	corpus *Corpus
	docs   map[string]*models.Document
	opts   SemanticOptions
}

// NewSemanticEngine binds an engine to corpus and the documents it was built from.
func NewSemanticEngine(corpus *Corpus, docs []*models.Document, opts SemanticOptions) *SemanticEngine {
	byID := make(map[string]*models.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	return &SemanticEngine{corpus: corpus, docs: byID, opts: opts}
}

// Corpus returns the underlying corpus.
func (e *SemanticEngine) Corpus() *Corpus { return e.corpus }

// Search returns up to limit documents scoring above the similarity floor.
// An empty corpus or a query with no known terms yields no results.
func (e *SemanticEngine) Search(ctx context.Context, query string, admit func(*models.Document) bool, limit int) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e == nil || e.corpus == nil || e.corpus.Len() == 0 {
		return []models.SearchResult{}, nil
	}
	q := e.corpus.Model().TransformQuery(query)
	matches := e.corpus.Search(q, e.opts.MinSimilarity, e.corpus.Len(), func(id string) bool {
		d, ok := e.docs[id]
		return ok && (admit == nil || admit(d))
	})

	out := make([]models.SearchResult, 0, len(matches))
	for _, m := range matches {
		doc := e.docs[m.ID]
		r := models.NewResult(doc, highlight.Snippet(doc, highlight.SnippetLength))
		r.Score = m.Similarity * e.relevance(doc, len(m.MatchedTerms))
		r.MatchType = models.MatchSemantic
		r.MatchedFields, r.Highlights = highlight.Collect(doc, m.MatchedTerms)
		out = append(out, r)
	}
	sortResults(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Similar returns up to k documents closest to id, excluding exclude.
func (e *SemanticEngine) Similar(id string, k int, exclude map[string]bool) []models.SearchResult {
	if e == nil || e.corpus == nil {
		return nil
	}
	var out []models.SearchResult
	for _, m := range e.corpus.MostSimilar(id, k, e.opts.MinSimilarity, exclude) {
		doc := e.docs[m.ID]
		if doc == nil {
			continue
		}
		r := models.NewResult(doc, highlight.Snippet(doc, highlight.SnippetLength))
		r.Score = m.Similarity
		r.MatchType = models.MatchSemantic
		out = append(out, r)
	}
	return out
}

// relevance grows with the number of shared terms and is boosted by document
// type and an optional "importance" metadata value.
func (e *SemanticEngine) relevance(doc *models.Document, matched int) float64 {
	rel := 1.0
	if matched > 0 {
		rel += math.Log(float64(matched)+1) * 0.1
	}
	if b, ok := e.opts.TypeBoosts[doc.Type]; ok {
		rel *= b
	}
	if v, ok := doc.Metadata["importance"]; ok {
		if imp, err := strconv.ParseFloat(v, 64); err == nil && imp > 0 {
			rel *= imp
		}
	}
	return math.Min(rel, maxRelevance)
}

func sortResults(rs []models.SearchResult) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Score > rs[j].Score })
}
