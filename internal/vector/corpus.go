package vector

import (
	"sort"
	"strings"

	"github.com/hyperjump/smartsearch/internal/models"
)

// WeightedText is the text a document is fitted on. The title is repeated
// three times and keywords twice so they dominate term frequency.
func WeightedText(doc *models.Document) string {
	parts := make([]string, 0, len(doc.Fields)+3)
	for _, f := range doc.Fields {
		if f.Text == "" {
			continue
		}
		switch f.Name {
		case models.FieldTitle:
			parts = append(parts, f.Text, f.Text, f.Text)
		case models.FieldKeywords:
			parts = append(parts, f.Text, f.Text)
		default:
			parts = append(parts, f.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Inputs converts documents into fit inputs using WeightedText.
func Inputs(docs []*models.Document) []Input {
	out := make([]Input, len(docs))
	for i, d := range docs {
		out[i] = Input{ID: d.ID, Content: WeightedText(d)}
	}
	return out
}

// Match is one similarity hit.
type Match struct {
	ID           string
	Similarity   float64
	MatchedTerms []string
}

// Corpus holds the document vectors of one model generation. It is built once
// and only read afterwards.
type Corpus struct {
	model   *Model
	ids     []string
	vectors []TFIDFVector
	byID    map[string]int
}

// NewCorpus vectorizes every fitted document of model, in ids order.
func NewCorpus(model *Model, ids []string) *Corpus {
	c := &Corpus{
		model:   model,
		ids:     make([]string, 0, len(ids)),
		vectors: make([]TFIDFVector, 0, len(ids)),
		byID:    make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		if _, dup := c.byID[id]; dup {
			continue
		}
		c.byID[id] = len(c.ids)
		c.ids = append(c.ids, id)
		c.vectors = append(c.vectors, model.Transform(id))
	}
	return c
}

// Model returns the generation the corpus was built from.
func (c *Corpus) Model() *Model { return c.model }

// Len returns the number of document vectors.
func (c *Corpus) Len() int { return len(c.ids) }

// Vector returns the stored vector for id.
func (c *Corpus) Vector(id string) (TFIDFVector, bool) {
	i, ok := c.byID[id]
	if !ok {
		return TFIDFVector{}, false
	}
	return c.vectors[i], true
}

// Search ranks documents by cosine similarity to q. Only similarities at or
// above threshold are kept; admit may be nil. Ties keep corpus order.
func (c *Corpus) Search(q TFIDFVector, threshold float64, k int, admit func(id string) bool) []Match {
	if q.Norm == 0 || k <= 0 {
		return nil
	}
	var out []Match
	for i, v := range c.vectors {
		id := c.ids[i]
		if admit != nil && !admit(id) {
			continue
		}
		sim := Cosine(q, v)
		if sim <= 0 || sim < threshold {
			continue
		}
		out = append(out, Match{ID: id, Similarity: sim, MatchedTerms: MatchedTerms(q, v)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// MostSimilar returns up to k documents closest to id, never id itself nor any
// id in exclude.
func (c *Corpus) MostSimilar(id string, k int, threshold float64, exclude map[string]bool) []Match {
	target, ok := c.Vector(id)
	if !ok {
		return nil
	}
	return c.Search(target, threshold, k, func(other string) bool {
		return other != id && !exclude[other]
	})
}
