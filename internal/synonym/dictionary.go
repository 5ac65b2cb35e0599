// Package synonym provides the medical synonym dictionary and query expansion.
package synonym

import (
	"sort"
	"strings"
)

// Group is one synonym set: a main term, its synonyms, loosely related terms,
// and a category label.
type Group struct {
	MainTerm   string
	Synonyms   []string
	Related    []string
	Category   string
	Confidence float64
}

// Relation names how a related term was found.
type Relation string

const (
	RelationRelated    Relation = "related"
	RelationContextual Relation = "contextual"
	RelationCategory   Relation = "category"
)

// RelatedTerm is one entry returned by Dictionary.RelatedTerms.
type RelatedTerm struct {
	Term       string   `json:"term"`
	Relation   Relation `json:"relation"`
	Confidence float64  `json:"confidence"`
}

// Dictionary is an immutable lookup over a set of groups. Lookups are
// case-insensitive.
type Dictionary struct {
	groups     []*Group
	byTerm     map[string]*Group
	categories []string
}

// NewDictionary indexes groups. A term that appears in several groups maps to
// the last one.
func NewDictionary(groups []Group) *Dictionary {
	d := &Dictionary{byTerm: make(map[string]*Group)}
	seen := make(map[string]bool)
	for i := range groups {
		g := groups[i]
		g.MainTerm = normalize(g.MainTerm)
		d.groups = append(d.groups, &g)
		d.byTerm[g.MainTerm] = &g
		for _, s := range g.Synonyms {
			d.byTerm[normalize(s)] = &g
		}
		if !seen[g.Category] {
			seen[g.Category] = true
			d.categories = append(d.categories, g.Category)
		}
	}
	return d
}

// DefaultDictionary returns the built-in medical dictionary.
func DefaultDictionary() *Dictionary {
	return NewDictionary(DefaultGroups)
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Synonyms returns up to limit synonyms of term, excluding term itself.
func (d *Dictionary) Synonyms(term string, limit int) []string {
	t := normalize(term)
	g, ok := d.byTerm[t]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.Synonyms))
	for _, s := range g.Synonyms {
		if len(out) >= limit {
			break
		}
		if s != t {
			out = append(out, s)
		}
	}
	return out
}

// RelatedTerms returns terms related to term, ranked by confidence: direct
// relations (0.8), synonyms of the context terms (0.6), then other members of
// the same category (0.5).
func (d *Dictionary) RelatedTerms(term string, context []string, limit int) []RelatedTerm {
	t := normalize(term)
	g, ok := d.byTerm[t]
	if !ok {
		return nil
	}
	var out []RelatedTerm
	for _, r := range g.Related {
		out = append(out, RelatedTerm{Term: r, Relation: RelationRelated, Confidence: 0.8})
	}
	seen := make(map[string]bool)
	for _, c := range context {
		for _, s := range d.Synonyms(c, 2) {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, RelatedTerm{Term: s, Relation: RelationContextual, Confidence: 0.6})
		}
	}
	for _, ct := range d.TermsByCategory(g.Category) {
		if ct == t || contains(g.Synonyms, ct) {
			continue
		}
		out = append(out, RelatedTerm{Term: ct, Relation: RelationCategory, Confidence: 0.5})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// IsMedicalTerm reports whether term is a main term or synonym in the dictionary.
func (d *Dictionary) IsMedicalTerm(term string) bool {
	_, ok := d.byTerm[normalize(term)]
	return ok
}

// Category returns the category of term, or "" if unknown.
func (d *Dictionary) Category(term string) string {
	if g, ok := d.byTerm[normalize(term)]; ok {
		return g.Category
	}
	return ""
}

// TermsByCategory lists main terms and synonyms of every group in category,
// deduplicated, in dictionary order.
func (d *Dictionary) TermsByCategory(category string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range d.groups {
		if g.Category != category {
			continue
		}
		for _, t := range append([]string{g.MainTerm}, g.Synonyms...) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Categories lists every category in first-seen order.
func (d *Dictionary) Categories() []string {
	return append([]string(nil), d.categories...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
