package intent

import (
	"fmt"
	"regexp"
)

// matchedPatternConfidence is reported for every individual pattern hit.
const matchedPatternConfidence = 0.8

// Result maps every category to a confidence in [0, 1].
type Result map[Category]float64

// Dominant returns the highest-scoring category, or General when nothing
// scored. Ties go to the earlier category.
func (r Result) Dominant() Category {
	best := General
	bestScore := 0.0
	for _, c := range Categories {
		if r[c] > bestScore {
			best, bestScore = c, r[c]
		}
	}
	return best
}

// MatchedPattern is one diagnostic hit.
type MatchedPattern struct {
	Category   Category `json:"category"`
	Pattern    string   `json:"pattern"`
	Confidence float64  `json:"confidence"`
}

type compiledRule struct {
	category Category
	patterns []*regexp.Regexp
}

// Matcher scores queries against a compiled rule table. It is immutable and
// safe for concurrent use.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher compiles rules. Patterns are compiled case-insensitive.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{}
	for _, r := range rules {
		cr := compiledRule{category: r.Category}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("compile %s pattern %q: %w", r.Category, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		m.rules = append(m.rules, cr)
	}
	return m, nil
}

// DefaultMatcher returns a matcher over DefaultRules.
func DefaultMatcher() *Matcher {
	m, err := NewMatcher(DefaultRules)
	if err != nil {
		panic(err)
	}
	return m
}

// MatchPatterns scores every category as matched patterns over total patterns.
// Categories are independent; several may be nonzero.
func (m *Matcher) MatchPatterns(query string) Result {
	res := make(Result, len(Categories))
	for _, c := range Categories {
		res[c] = 0
	}
	for _, r := range m.rules {
		if len(r.patterns) == 0 {
			continue
		}
		hits := 0
		for _, re := range r.patterns {
			if re.MatchString(query) {
				hits++
			}
		}
		score := float64(hits) / float64(len(r.patterns))
		if score > 1 {
			score = 1
		}
		res[r.category] = score
	}
	return res
}

// CheckPattern reports whether any pattern of category matches query.
func (m *Matcher) CheckPattern(query string, category Category) bool {
	for _, r := range m.rules {
		if r.category != category {
			continue
		}
		for _, re := range r.patterns {
			if re.MatchString(query) {
				return true
			}
		}
	}
	return false
}

// MatchedPatterns lists every individual pattern that matches query.
func (m *Matcher) MatchedPatterns(query string) []MatchedPattern {
	var out []MatchedPattern
	for _, r := range m.rules {
		for _, re := range r.patterns {
			if re.MatchString(query) {
				out = append(out, MatchedPattern{
					Category:   r.category,
					Pattern:    re.String()[len(`(?i)`):],
					Confidence: matchedPatternConfidence,
				})
			}
		}
	}
	return out
}
