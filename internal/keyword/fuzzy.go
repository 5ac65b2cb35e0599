package keyword

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/smartsearch/internal/highlight"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
	"go.uber.org/zap"
)

// partialTokenScore is awarded when one token contains the other.
const partialTokenScore = 0.8

// FuzzyOptions bounds fuzzy matching.
type FuzzyOptions struct {
	MaxDistance   int
	MinSimilarity float64
}

// DefaultFuzzyOptions allows two edits and at least half the runes intact.
func DefaultFuzzyOptions() FuzzyOptions {
	return FuzzyOptions{MaxDistance: 2, MinSimilarity: 0.5}
}

// FuzzyEngine matches query tokens against field words within a bounded edit
// distance, penalizing each edit. With a term index attached, the index
// vocabulary is scored with the same rule and only documents holding an
// accepted word are scanned; otherwise every document is.
type FuzzyEngine struct {
	docs    []*models.Document
	byID    map[string]*models.Document
	terms   *TermIndex
	vocab   []string
	weights FieldWeights
	opts    FuzzyOptions
	logger  *zap.Logger
}

// FuzzyOption configures a FuzzyEngine.
type FuzzyOption func(*FuzzyEngine)

// WithTermIndex narrows candidates to documents holding an accepted index term.
func WithTermIndex(t *TermIndex) FuzzyOption {
	return func(e *FuzzyEngine) { e.terms = t }
}

// WithLogger sets the logger for candidate lookup failures.
func WithLogger(l *zap.Logger) FuzzyOption {
	return func(e *FuzzyEngine) { e.logger = utils.OrNop(l) }
}

// NewFuzzyEngine returns an engine over docs.
func NewFuzzyEngine(docs []*models.Document, weights FieldWeights, opts FuzzyOptions, options ...FuzzyOption) *FuzzyEngine {
	if weights == nil {
		weights = DefaultFieldWeights()
	}
	e := &FuzzyEngine{
		docs:    docs,
		byID:    make(map[string]*models.Document, len(docs)),
		weights: weights,
		opts:    opts,
		logger:  zap.NewNop(),
	}
	for _, d := range docs {
		e.byID[d.ID] = d
	}
	for _, o := range options {
		o(e)
	}
	if e.terms != nil {
		vocab, err := e.terms.SortedTerms()
		if err != nil {
			e.logger.Warn("Term index vocabulary unavailable, scanning all documents", zap.Error(err))
			e.terms = nil
		}
		e.vocab = vocab
	}
	return e
}

// Search scores documents by the mean, over query tokens, of each token's best
// weighted field match.
func (e *FuzzyEngine) Search(ctx context.Context, query string, admit func(*models.Document) bool, limit int) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := utils.Tokenize(query)
	out := []models.SearchResult{}
	if len(tokens) == 0 || len(e.docs) == 0 {
		return out, nil
	}
	for _, doc := range e.candidates(ctx, tokens) {
		if admit != nil && !admit(doc) {
			continue
		}
		if r, ok := e.match(doc, tokens); ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// candidates returns the documents holding a vocabulary word some token
// accepts, in document order.
func (e *FuzzyEngine) candidates(ctx context.Context, tokens []string) []*models.Document {
	if e.terms == nil {
		return e.docs
	}
	var accepted []string
	for _, w := range e.vocab {
		for _, tok := range tokens {
			if e.wordScore(tok, w) > 0 {
				accepted = append(accepted, w)
				break
			}
		}
	}
	if len(accepted) == 0 {
		return nil
	}
	ids, err := e.terms.Containing(ctx, accepted, len(e.docs))
	if err != nil {
		e.logger.Warn("Fuzzy candidate lookup failed, scanning all documents", zap.Error(err))
		return e.docs
	}
	hit := make(map[string]bool, len(ids))
	for _, id := range ids {
		hit[id] = true
	}
	out := make([]*models.Document, 0, len(ids))
	for _, d := range e.docs {
		if hit[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

type wordMatch struct {
	score float64
	word  string
}

func (e *FuzzyEngine) match(doc *models.Document, tokens []string) (models.SearchResult, bool) {
	fieldWords := make([][]string, len(doc.Fields))
	for i, f := range doc.Fields {
		fieldWords[i] = utils.SplitWords(f.Text)
	}

	var total float64
	matchedField := make(map[string]bool)
	fields := []string{}
	highlights := []string{}
	for _, tok := range tokens {
		best := 0.0
		bestField := -1
		var bestWord string
		for i, f := range doc.Fields {
			m := e.bestWord(tok, fieldWords[i])
			if m.score == 0 {
				continue
			}
			if s := m.score * e.weights.Weight(f.Name); s > best {
				best, bestField, bestWord = s, i, m.word
			}
		}
		if bestField < 0 {
			continue
		}
		total += best
		f := doc.Fields[bestField]
		if !matchedField[f.Name] {
			matchedField[f.Name] = true
			fields = append(fields, f.Name)
		}
		if len(highlights) < highlight.MaxHighlights {
			if ex, ok := highlight.Excerpt(f.Text, bestWord, highlight.DefaultRadius); ok {
				highlights = append(highlights, ex)
			}
		}
	}
	if total == 0 {
		return models.SearchResult{}, false
	}
	score := total / float64(len(tokens))
	r := models.NewResult(doc, highlight.Snippet(doc, highlight.SnippetLength))
	r.Score = score
	r.MatchType = models.MatchFuzzy
	r.MatchedFields = fields
	r.Highlights = highlights
	return r, true
}

// bestWord returns the highest scoring word for tok.
func (e *FuzzyEngine) bestWord(tok string, words []string) wordMatch {
	var best wordMatch
	for _, w := range words {
		if s := e.wordScore(tok, w); s > best.score {
			best = wordMatch{score: s, word: w}
			if s == 1 {
				break
			}
		}
	}
	return best
}

// wordScore is 1 for equality, 0.8 when one contains the other, otherwise the
// edit similarity if within bounds, and 0 for no match.
func (e *FuzzyEngine) wordScore(tok, w string) float64 {
	if w == tok {
		return 1
	}
	wLen := utf8.RuneCountInString(w)
	if wLen > 1 && (strings.Contains(w, tok) || strings.Contains(tok, w)) {
		return partialTokenScore
	}
	if abs(wLen-utf8.RuneCountInString(tok)) > e.opts.MaxDistance {
		return 0
	}
	if DamerauLevenshteinDistance(tok, w) > e.opts.MaxDistance {
		return 0
	}
	if sim := Similarity(tok, w); sim >= e.opts.MinSimilarity {
		return sim
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
