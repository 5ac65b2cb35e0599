package indexer

import "strings"

// Preprocess tidies extracted file text before it is stored as content.
// Each line keeps its words joined by single spaces, blank lines are dropped,
// and the surviving lines stay on their own rows so paragraph breaks from
// extraction reach the snippet.
func Preprocess(text string) string {
	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for line := range strings.Lines(text) {
		if words := strings.Fields(line); len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	}
	return strings.Join(lines, "\n")
}
