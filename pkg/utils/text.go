// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// nonWordRe matches anything that is not an ASCII word character, whitespace,
// or a CJK unified ideograph.
var nonWordRe = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fff}]`)

var spaceRe = regexp.MustCompile(`\s+`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`的 了 在 是 我 有 和 就 不 人 都 一 一个 上 也 很 到 说 要 去 你 会 着 没有 看 好 自己 这 他 她 它 我们 你们 他们 什么 怎么 为什么
		the a an and or but in on at to for of with by is are was were be been have has had do does did will would could should may might this that these those i you he she it we they`) {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether w is in the bilingual stop-word set.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenize lowercases text, strips punctuation (keeping word and CJK characters),
// splits on whitespace, and drops single-character tokens and stop words.
func Tokenize(text string) []string {
	words := SplitWords(text)
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 1 || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// SplitWords lowercases text, replaces punctuation with spaces, and splits on
// whitespace. Unlike Tokenize it keeps short tokens and stop words.
func SplitWords(text string) []string {
	return strings.Fields(nonWordRe.ReplaceAllString(strings.ToLower(text), " "))
}

// CleanTerm lowercases a single term and removes every non-word, non-CJK character.
func CleanTerm(term string) string {
	return strings.TrimSpace(nonWordRe.ReplaceAllString(strings.ToLower(term), ""))
}

// CleanQuery trims, collapses whitespace, drops punctuation, and lowercases.
func CleanQuery(q string) string {
	q = spaceRe.ReplaceAllString(strings.TrimSpace(q), " ")
	return strings.ToLower(nonWordRe.ReplaceAllString(q, ""))
}

// Truncate returns s truncated to maxLen runes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen]) + "..."
}
