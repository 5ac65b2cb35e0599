package synonym

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/smartsearch/pkg/utils"
)

// maxCombinations caps the two-term replacement variants.
const maxCombinations = 2

// Replacement records one substitution in a variant.
type Replacement struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Variant is a rewritten query with its confidence.
type Variant struct {
	Query      string        `json:"query"`
	Confidence float64       `json:"confidence"`
	Changed    []Replacement `json:"changed"`
}

// Expander builds query variants from expanded terms.
type Expander struct {
	dict *Dictionary
}

// NewExpander returns an expander bound to dict.
func NewExpander(dict *Dictionary) *Expander {
	return &Expander{dict: dict}
}

// Variants returns up to maxVariants distinct rewritten queries, most
// confident first.
func (x *Expander) Variants(query string, terms []ExpandedTerm, maxVariants int) []string {
	if maxVariants <= 0 {
		return []string{}
	}
	all := x.ScoredVariants(query, terms)
	out := make([]string, 0, maxVariants)
	seen := make(map[string]bool)
	for _, v := range all {
		if len(out) >= maxVariants {
			break
		}
		if seen[v.Query] {
			continue
		}
		seen[v.Query] = true
		out = append(out, v.Query)
	}
	return out
}

// ScoredVariants returns every single and pairwise replacement variant sorted
// by confidence. The first two synonyms of each term yield single variants
// with confidence c, 0.9c. Pairs use the top synonym of both terms at 0.8
// times their mean confidence.
func (x *Expander) ScoredVariants(query string, terms []ExpandedTerm) []Variant {
	var variants []Variant
	for _, t := range terms {
		for i := 0; i < len(t.Synonyms) && i < 2; i++ {
			q := replaceTerm(query, t.Original, t.Synonyms[i])
			if q == query {
				continue
			}
			variants = append(variants, Variant{
				Query:      q,
				Confidence: t.Confidence * (1 - float64(i)*0.1),
				Changed:    []Replacement{{Original: t.Original, Replacement: t.Synonyms[i]}},
			})
		}
	}
	variants = append(variants, combinationVariants(query, terms)...)
	sort.SliceStable(variants, func(i, j int) bool { return variants[i].Confidence > variants[j].Confidence })
	return variants
}

func combinationVariants(query string, terms []ExpandedTerm) []Variant {
	var out []Variant
	for i := 0; i < len(terms)-1 && len(out) < maxCombinations; i++ {
		for j := i + 1; j < len(terms) && len(out) < maxCombinations; j++ {
			a, b := terms[i], terms[j]
			if len(a.Synonyms) == 0 || len(b.Synonyms) == 0 {
				continue
			}
			q := replaceTerm(replaceTerm(query, a.Original, a.Synonyms[0]), b.Original, b.Synonyms[0])
			if q == query {
				continue
			}
			out = append(out, Variant{
				Query:      q,
				Confidence: (a.Confidence + b.Confidence) / 2 * 0.8,
				Changed: []Replacement{
					{Original: a.Original, Replacement: a.Synonyms[0]},
					{Original: b.Original, Replacement: b.Synonyms[0]},
				},
			})
		}
	}
	return out
}

// BooleanQuery renders query as an AND of OR-groups over each token and its
// first two synonyms.
func (x *Expander) BooleanQuery(query string, terms []ExpandedTerm) string {
	byTerm := make(map[string]ExpandedTerm, len(terms))
	for _, t := range terms {
		byTerm[t.Original] = t
	}
	var parts []string
	for _, tok := range utils.SplitWords(query) {
		t, ok := byTerm[tok]
		if !ok || len(t.Synonyms) == 0 {
			parts = append(parts, `"`+tok+`"`)
			continue
		}
		group := []string{`"` + tok + `"`}
		for i := 0; i < len(t.Synonyms) && i < 2; i++ {
			group = append(group, `"`+t.Synonyms[i]+`"`)
		}
		parts = append(parts, "("+strings.Join(group, " OR ")+")")
	}
	return strings.Join(parts, " AND ")
}

// Simplify drops stop words and single-character tokens.
func (x *Expander) Simplify(query string) string {
	return strings.Join(utils.Tokenize(query), " ")
}

// Contextual appends category siblings of category to query, skipping terms
// the query already has. It returns query first.
func (x *Expander) Contextual(query, category string, limit int) []string {
	out := []string{query}
	have := make(map[string]bool)
	for _, tok := range utils.SplitWords(query) {
		have[tok] = true
	}
	n := 0
	for _, t := range x.dict.TermsByCategory(category) {
		if n >= limit {
			break
		}
		if have[t] {
			continue
		}
		out = append(out, query+" "+t)
		n++
	}
	return out
}

// replaceTerm substitutes every case-insensitive occurrence of term. Edges of
// term that are ASCII word characters must sit on a word boundary; CJK edges
// match anywhere since CJK text has no spaces.
func replaceTerm(query, term, repl string) string {
	if term == "" {
		return query
	}
	pattern := regexp.QuoteMeta(term)
	if first, _ := utf8.DecodeRuneInString(term); isASCIIWord(first) {
		pattern = `\b` + pattern
	}
	if last, _ := utf8.DecodeLastRuneInString(term); isASCIIWord(last) {
		pattern += `\b`
	}
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return query
	}
	return re.ReplaceAllLiteralString(query, repl)
}

func isASCIIWord(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
