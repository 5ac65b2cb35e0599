package synonym

import (
	"strings"

	"github.com/hyperjump/smartsearch/pkg/utils"
)

// Options controls query expansion.
type Options struct {
	MaxSynonymsPerTerm  int     `yaml:"max_synonyms_per_term"`
	IncludeRelatedTerms bool    `yaml:"include_related_terms"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// DefaultOptions returns the expansion settings used for search.
func DefaultOptions() Options {
	return Options{MaxSynonymsPerTerm: 3, IncludeRelatedTerms: true, ConfidenceThreshold: 0.6}
}

// ExpandedTerm is one query token that has at least one synonym.
type ExpandedTerm struct {
	Original   string   `json:"original"`
	Synonyms   []string `json:"synonyms"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
}

// ExpansionResult is the output of Engine.ExpandQuery.
type ExpansionResult struct {
	OriginalQuery  string         `json:"original_query"`
	ExpandedQuery  string         `json:"expanded_query"`
	Synonyms       []string       `json:"synonyms"`
	ExpandedTerms  []ExpandedTerm `json:"expanded_terms"`
	ExpansionScore float64        `json:"expansion_score"`
}

// commonTerms get a small confidence bonus.
var commonTerms = map[string]bool{
	"痛经": true, "疼痛": true, "缓解": true, "治疗": true, "药物": true,
	"pain": true, "relief": true, "treatment": true, "medicine": true,
}

// relatedLookupLimit bounds how many related terms are considered per token.
const relatedLookupLimit = 2

// Engine expands queries with synonyms from a Dictionary. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	dict     *Dictionary
	expander *Expander
}

// NewEngine creates an engine over dict. A nil dict uses the built-in dictionary.
func NewEngine(dict *Dictionary) *Engine {
	if dict == nil {
		dict = DefaultDictionary()
	}
	return &Engine{dict: dict, expander: NewExpander(dict)}
}

// Dictionary returns the underlying dictionary.
func (e *Engine) Dictionary() *Dictionary { return e.dict }

// Expander returns the variant generator bound to the same dictionary.
func (e *Engine) Expander() *Expander { return e.expander }

// ExpandQuery tokenizes query and expands every token that has synonyms.
func (e *Engine) ExpandQuery(query string, opts Options) *ExpansionResult {
	tokens := utils.SplitWords(query)
	res := &ExpansionResult{
		OriginalQuery: query,
		ExpandedQuery: query,
		Synonyms:      []string{},
		ExpandedTerms: []ExpandedTerm{},
	}
	seen := make(map[string]bool)
	var total float64
	for _, tok := range tokens {
		term := e.expandTerm(tok, opts)
		if len(term.Synonyms) == 0 {
			continue
		}
		res.ExpandedTerms = append(res.ExpandedTerms, term)
		total += term.Confidence
		for _, s := range term.Synonyms {
			if !seen[s] {
				seen[s] = true
				res.Synonyms = append(res.Synonyms, s)
			}
		}
	}
	n := len(tokens)
	if n < 1 {
		n = 1
	}
	res.ExpansionScore = total / float64(n)
	res.ExpandedQuery = buildExpandedQuery(query, res.ExpandedTerms, opts.ConfidenceThreshold)
	return res
}

func (e *Engine) expandTerm(token string, opts Options) ExpandedTerm {
	term := utils.CleanTerm(token)
	syns := e.dict.Synonyms(term, opts.MaxSynonymsPerTerm)
	if opts.IncludeRelatedTerms {
		for _, r := range e.dict.RelatedTerms(term, nil, relatedLookupLimit) {
			if r.Confidence >= opts.ConfidenceThreshold {
				syns = append(syns, r.Term)
			}
		}
	}
	if opts.MaxSynonymsPerTerm >= 0 && len(syns) > opts.MaxSynonymsPerTerm {
		syns = syns[:opts.MaxSynonymsPerTerm]
	}
	category := e.dict.Category(term)
	if category == "" {
		category = "general"
	}
	return ExpandedTerm{
		Original:   term,
		Synonyms:   syns,
		Category:   category,
		Confidence: e.termConfidence(term, len(syns)),
	}
}

func (e *Engine) termConfidence(term string, n int) float64 {
	if n == 0 {
		return 0
	}
	c := float64(n) / 3
	if c > 1 {
		c = 1
	}
	if e.dict.IsMedicalTerm(term) {
		c += 0.2
	}
	if commonTerms[term] {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	return c
}

// buildExpandedQuery appends the top synonym of every confident term, in token
// order, unless it already occurs in the growing query.
func buildExpandedQuery(query string, terms []ExpandedTerm, threshold float64) string {
	var b strings.Builder
	b.WriteString(query)
	for _, t := range terms {
		if t.Confidence < threshold || len(t.Synonyms) == 0 {
			continue
		}
		top := t.Synonyms[0]
		if strings.Contains(b.String(), top) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(top)
	}
	return b.String()
}

// GetSynonyms returns up to limit synonyms of term.
func (e *Engine) GetSynonyms(term string, limit int) []string {
	return e.dict.Synonyms(term, limit)
}

// GetRelatedTerms returns up to limit related terms of term.
func (e *Engine) GetRelatedTerms(term string, context []string, limit int) []RelatedTerm {
	return e.dict.RelatedTerms(term, context, limit)
}

// BuildQueryVariants rewrites query with synonyms and returns at most
// maxVariants distinct strings, most confident first.
func (e *Engine) BuildQueryVariants(query string, maxVariants int) []string {
	res := e.ExpandQuery(query, Options{MaxSynonymsPerTerm: 2, ConfidenceThreshold: 0.6})
	return e.expander.Variants(query, res.ExpandedTerms, maxVariants)
}
