// Package highlight builds snippets and match excerpts from documents.
package highlight

import (
	"strings"
	"unicode"

	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

const (
	// DefaultRadius is the number of runes kept on each side of a match.
	DefaultRadius = 40
	// SnippetLength caps result snippets, in runes.
	SnippetLength = 200
	// MaxHighlights caps excerpts per result.
	MaxHighlights = 3
)

// Excerpt returns the text around the first case-insensitive occurrence of
// term, with radius runes of context on each side and "..." where cut.
func Excerpt(text, term string, radius int) (string, bool) {
	pos := indexFold([]rune(text), []rune(term))
	if pos < 0 || term == "" {
		return "", false
	}
	r := []rune(text)
	n := len([]rune(term))
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + n + radius
	if end > len(r) {
		end = len(r)
	}
	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(strings.TrimSpace(string(r[start:end])))
	if end < len(r) {
		b.WriteString("...")
	}
	return b.String(), true
}

// Contains reports whether text contains term, ignoring case.
func Contains(text, term string) bool {
	return term != "" && indexFold([]rune(text), []rune(term)) >= 0
}

func indexFold(text, term []rune) int {
	if len(term) == 0 || len(term) > len(text) {
		return -1
	}
outer:
	for i := 0; i+len(term) <= len(text); i++ {
		for j := range term {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(term[j]) {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Snippet is the description when present, otherwise the leading content.
func Snippet(doc *models.Document, maxLen int) string {
	text := doc.Field(models.FieldDescription)
	if text == "" {
		text = doc.Field(models.FieldContent)
	}
	if text == "" {
		text = doc.Text()
	}
	return utils.Truncate(strings.TrimSpace(text), maxLen)
}

// Collect walks doc's fields in order and returns the names of fields that
// contain any of terms, plus one excerpt per matching field up to
// MaxHighlights.
func Collect(doc *models.Document, terms []string) (fields, highlights []string) {
	fields = []string{}
	highlights = []string{}
	for _, f := range doc.Fields {
		for _, t := range terms {
			ex, ok := Excerpt(f.Text, t, DefaultRadius)
			if !ok {
				continue
			}
			fields = append(fields, f.Name)
			if len(highlights) < MaxHighlights {
				highlights = append(highlights, ex)
			}
			break
		}
	}
	return fields, highlights
}
