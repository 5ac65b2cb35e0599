package keyword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/smartsearch/pkg/utils"
)

// Suggestion is one candidate correction for a term.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellCheckResult is the outcome of checking a query.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     []Suggestion
	HasCorrections  bool
	MisspelledTerms []string
}

// SpellChecker proposes corrections from a term dictionary snapshot. The
// snapshot is taken at construction, so a checker belongs to one index
// generation and is safe for concurrent use.
type SpellChecker struct {
	maxDistance    int
	minFreq        int
	maxSuggestions int

	terms []string
	freq  map[string]int
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency drops dictionary terms seen in fewer documents.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps suggestions per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker loads the dictionary's terms.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) (*SpellChecker, error) {
	s := &SpellChecker{
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
		freq:           map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if dict == nil {
		return s, nil
	}
	freq, err := dict.Terms()
	if err != nil {
		return nil, err
	}
	for term, n := range freq {
		lower := strings.ToLower(term)
		if utils.IsStopWord(lower) {
			continue
		}
		s.freq[lower] += n
	}
	s.terms = make([]string, 0, len(s.freq))
	for term := range s.freq {
		s.terms = append(s.terms, term)
	}
	sort.Strings(s.terms)
	return s, nil
}

// Known reports whether term is in the dictionary.
func (s *SpellChecker) Known(term string) bool {
	_, ok := s.freq[strings.ToLower(term)]
	return ok
}

// checkable limits correction to Latin-script words of at least two letters
// that are not stop words. CJK runs and numbers are left alone.
func checkable(term string) bool {
	if utf8.RuneCountInString(term) < 2 || utils.IsStopWord(term) {
		return false
	}
	letters := false
	for _, r := range term {
		if r > unicode.MaxASCII {
			return false
		}
		if unicode.IsLetter(r) {
			letters = true
		}
	}
	return letters
}

// Check corrects each unknown term of query with its best suggestion.
func (s *SpellChecker) Check(query string) *SpellCheckResult {
	res := &SpellCheckResult{
		OriginalQuery:   query,
		Suggestions:     []Suggestion{},
		MisspelledTerms: []string{},
	}
	words := utils.SplitWords(query)
	corrected := make([]string, 0, len(words))
	for _, w := range words {
		if !checkable(w) || s.Known(w) {
			corrected = append(corrected, w)
			continue
		}
		sugg := s.Suggest(w)
		if len(sugg) == 0 {
			corrected = append(corrected, w)
			continue
		}
		res.HasCorrections = true
		res.MisspelledTerms = append(res.MisspelledTerms, w)
		res.Suggestions = append(res.Suggestions, sugg...)
		corrected = append(corrected, sugg[0].Term)
	}
	res.CorrectedQuery = strings.Join(corrected, " ")
	return res
}

// Suggest ranks dictionary terms within the edit limit by frequency divided by
// distance+1. Ties keep lexical order.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	term = strings.ToLower(term)
	n := utf8.RuneCountInString(term)
	out := []Suggestion{}
	for _, cand := range s.terms {
		if cand == term {
			continue
		}
		diff := utf8.RuneCountInString(cand) - n
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		d := DamerauLevenshteinDistance(term, cand)
		if d > s.maxDistance {
			continue
		}
		f := s.freq[cand]
		if f < s.minFreq {
			continue
		}
		out = append(out, Suggestion{
			Term:      cand,
			Distance:  d,
			Frequency: f,
			Score:     float64(f) / float64(d+1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// CorrectedQuery returns the corrected query, or "" when nothing changed.
func (s *SpellChecker) CorrectedQuery(query string) string {
	res := s.Check(query)
	if !res.HasCorrections {
		return ""
	}
	return res.CorrectedQuery
}

// Complete returns up to limit dictionary terms starting with prefix, most
// frequent first.
func (s *SpellChecker) Complete(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || limit <= 0 {
		return []string{}
	}
	i := sort.SearchStrings(s.terms, prefix)
	var hits []string
	for ; i < len(s.terms) && strings.HasPrefix(s.terms[i], prefix); i++ {
		hits = append(hits, s.terms[i])
	}
	sort.SliceStable(hits, func(a, b int) bool { return s.freq[hits[a]] > s.freq[hits[b]] })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	if hits == nil {
		return []string{}
	}
	return hits
}
