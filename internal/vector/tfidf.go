// Package vector provides TF-IDF vectorization and cosine-similarity retrieval.
package vector

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/hyperjump/smartsearch/pkg/utils"
)

// QueryID is the synthetic document id given to query vectors.
const QueryID = "query"

// Input is one document handed to Fit.
type Input struct {
	ID      string
	Content string
}

// TFIDFVector is a sparse weighted term vector. Terms and Values are parallel.
type TFIDFVector struct {
	DocumentID string    `json:"document_id"`
	Terms      []string  `json:"terms"`
	Values     []float64 `json:"values"`
	Norm       float64   `json:"norm"`
}

// Len returns the number of nonzero terms.
func (v TFIDFVector) Len() int { return len(v.Terms) }

// Weight returns the weight of term, or 0.
func (v TFIDFVector) Weight(term string) float64 {
	for i, t := range v.Terms {
		if t == term {
			return v.Values[i]
		}
	}
	return 0
}

// TermWeight pairs a term with its weight.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Model is the vocabulary and document-frequency state of one Fit. It is
// immutable once built, so vectors and models of a generation stay valid
// after a newer Fit.
type Model struct {
	generation uint64
	vocabulary map[string]int
	terms      []string
	docFreq    map[string]int
	docCount   int
	tokens     map[string][]string
}

// NewModel fits a model over docs. Each document's tokens are cached; a term's
// document frequency rises once per document containing it.
func NewModel(docs []Input, generation uint64) *Model {
	m := &Model{
		generation: generation,
		vocabulary: make(map[string]int),
		docFreq:    make(map[string]int),
		docCount:   len(docs),
		tokens:     make(map[string][]string, len(docs)),
	}
	for _, d := range docs {
		toks := utils.Tokenize(d.Content)
		m.tokens[d.ID] = toks
		seen := make(map[string]bool, len(toks))
		for _, t := range toks {
			if seen[t] {
				continue
			}
			seen[t] = true
			if _, ok := m.vocabulary[t]; !ok {
				m.vocabulary[t] = len(m.terms)
				m.terms = append(m.terms, t)
			}
			m.docFreq[t]++
		}
	}
	return m
}

// Generation returns the fit generation this model belongs to.
func (m *Model) Generation() uint64 { return m.generation }

// DocumentCount returns the number of fitted documents.
func (m *Model) DocumentCount() int { return m.docCount }

// Vocabulary returns the fitted terms in first-seen order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// VocabularySize returns the number of distinct fitted terms.
func (m *Model) VocabularySize() int { return len(m.terms) }

// Contains reports whether term is in the vocabulary.
func (m *Model) Contains(term string) bool {
	_, ok := m.vocabulary[term]
	return ok
}

// DocumentFrequency returns how many fitted documents contain term.
func (m *Model) DocumentFrequency(term string) int { return m.docFreq[term] }

// IDF returns ln(N/df), or 0 for unknown terms.
func (m *Model) IDF(term string) float64 {
	df := m.docFreq[term]
	if df == 0 || m.docCount == 0 {
		return 0
	}
	return math.Log(float64(m.docCount) / float64(df))
}

// Transform vectorizes a fitted document from its cached tokens. Unknown ids
// yield an empty vector.
func (m *Model) Transform(id string) TFIDFVector {
	return m.vectorize(id, m.tokens[id])
}

// TransformText tokenizes content fresh and vectorizes it under id.
func (m *Model) TransformText(id, content string) TFIDFVector {
	return m.vectorize(id, utils.Tokenize(content))
}

// TransformQuery vectorizes a query, which is never part of the corpus.
func (m *Model) TransformQuery(query string) TFIDFVector {
	return m.TransformText(QueryID, query)
}

func (m *Model) vectorize(id string, toks []string) TFIDFVector {
	v := TFIDFVector{DocumentID: id, Terms: []string{}, Values: []float64{}}
	if len(toks) == 0 {
		return v
	}
	counts := make(map[string]int, len(toks))
	var order []string
	for _, t := range toks {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	total := float64(len(toks))
	for _, t := range order {
		if !m.Contains(t) {
			continue
		}
		w := float64(counts[t]) / total * m.IDF(t)
		if w <= 0 {
			continue
		}
		v.Terms = append(v.Terms, t)
		v.Values = append(v.Values, w)
	}
	v.Norm = utils.L2Norm(v.Values)
	return v
}

// TopTerms ranks a fitted document's terms by weight, highest first.
func (m *Model) TopTerms(id string, limit int) []TermWeight {
	v := m.Transform(id)
	out := make([]TermWeight, len(v.Terms))
	for i := range v.Terms {
		out[i] = TermWeight{Term: v.Terms[i], Weight: v.Values[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Vectorizer holds the current Model. Fit builds a new generation and swaps it
// in atomically; readers that already hold a Model keep using it.
type Vectorizer struct {
	current atomic.Pointer[Model]
}

// NewVectorizer returns a vectorizer with an empty generation-0 model.
func NewVectorizer() *Vectorizer {
	v := &Vectorizer{}
	v.current.Store(NewModel(nil, 0))
	return v
}

// Fit resets all state from docs as generation gen, makes it current and
// returns it.
func (v *Vectorizer) Fit(docs []Input, gen uint64) *Model {
	m := NewModel(docs, gen)
	v.current.Store(m)
	return m
}

// Model returns the current generation.
func (v *Vectorizer) Model() *Model { return v.current.Load() }

// Generation returns the current generation number.
func (v *Vectorizer) Generation() uint64 { return v.Model().Generation() }

// Transform vectorizes a document of the current generation. A non-empty
// content is tokenized fresh instead of using the cached tokens.
func (v *Vectorizer) Transform(id, content string) TFIDFVector {
	m := v.Model()
	if content != "" {
		return m.TransformText(id, content)
	}
	return m.Transform(id)
}

// TransformQuery vectorizes query against the current generation.
func (v *Vectorizer) TransformQuery(query string) TFIDFVector {
	return v.Model().TransformQuery(query)
}

// TopTerms ranks a document's terms against the current generation.
func (v *Vectorizer) TopTerms(id string, limit int) []TermWeight {
	return v.Model().TopTerms(id, limit)
}

// Vocabulary returns the current vocabulary.
func (v *Vectorizer) Vocabulary() []string { return v.Model().Vocabulary() }

// IDF returns a term's IDF in the current generation.
func (v *Vectorizer) IDF(term string) float64 { return v.Model().IDF(term) }
