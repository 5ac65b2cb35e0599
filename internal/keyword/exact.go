package keyword

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/smartsearch/internal/highlight"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

// Per-term field scores.
const (
	scoreWholeField = 1.0
	scoreWordMatch  = 0.8
	scoreSubstring  = 0.6
)

// ExactEngine scores literal, case-insensitive term containment in document
// fields. It is bound to the documents of one index generation.
type ExactEngine struct {
	docs      []*models.Document
	weights   FieldWeights
	wordScore float64
}

// ExactOption configures an ExactEngine.
type ExactOption func(*ExactEngine)

// WithWordMatchScore sets the per-term score for a whole-word match that is
// not the entire field. Values outside (0, 1] are ignored.
func WithWordMatchScore(v float64) ExactOption {
	return func(e *ExactEngine) {
		if v > 0 && v <= scoreWholeField {
			e.wordScore = v
		}
	}
}

// NewExactEngine returns an engine over docs. A nil weights map uses the defaults.
func NewExactEngine(docs []*models.Document, weights FieldWeights, opts ...ExactOption) *ExactEngine {
	if weights == nil {
		weights = DefaultFieldWeights()
	}
	e := &ExactEngine{docs: docs, weights: weights, wordScore: scoreWordMatch}
	for _, o := range opts {
		o(e)
	}
	return e
}

// QueryTerms splits a cleaned query on whitespace.
func QueryTerms(query string) []string {
	return strings.Fields(utils.CleanQuery(query))
}

// Search returns up to limit documents containing at least one query term,
// highest score first.
func (e *ExactEngine) Search(ctx context.Context, query string, admit func(*models.Document) bool, limit int) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := QueryTerms(query)
	out := []models.SearchResult{}
	if len(terms) == 0 {
		return out, nil
	}
	for _, doc := range e.docs {
		if admit != nil && !admit(doc) {
			continue
		}
		if r, ok := e.match(doc, terms); ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (e *ExactEngine) match(doc *models.Document, terms []string) (models.SearchResult, bool) {
	var total float64
	fields := []string{}
	highlights := []string{}
	for _, f := range doc.Fields {
		s := scoreField(f.Text, terms, e.wordScore)
		if s == 0 {
			continue
		}
		total += s * e.weights.Weight(f.Name)
		fields = append(fields, f.Name)
		for _, t := range terms {
			if len(highlights) >= highlight.MaxHighlights {
				break
			}
			if ex, ok := highlight.Excerpt(f.Text, t, highlight.DefaultRadius); ok {
				highlights = append(highlights, ex)
			}
		}
	}
	if total == 0 {
		return models.SearchResult{}, false
	}
	r := models.NewResult(doc, highlight.Snippet(doc, highlight.SnippetLength))
	r.Score = total
	r.MatchType = models.MatchTypeForScore(total)
	r.MatchedFields = fields
	r.Highlights = highlights
	return r, true
}

// scoreField sums, per term, 1.0 when the whole field equals it, wordScore
// (0.8 by default) when it appears as a space-delimited word and 0.6 for any
// other containment.
func scoreField(text string, terms []string, wordScore float64) float64 {
	text = strings.ToLower(text)
	var score float64
	for _, t := range terms {
		switch {
		case !strings.Contains(text, t):
		case text == t:
			score += scoreWholeField
		case strings.Contains(text, " "+t+" "), strings.HasPrefix(text, t+" "), strings.HasSuffix(text, " "+t):
			score += wordScore
		default:
			score += scoreSubstring
		}
	}
	return score
}

// TitleSuggestions returns up to limit distinct titles containing prefix.
func (e *ExactEngine) TitleSuggestions(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := []string{}
	if prefix == "" || limit <= 0 {
		return out
	}
	seen := map[string]bool{}
	for _, d := range e.docs {
		title := d.Title()
		if title == "" || seen[title] || !strings.Contains(strings.ToLower(title), prefix) {
			continue
		}
		seen[title] = true
		out = append(out, title)
		if len(out) == limit {
			break
		}
	}
	return out
}
