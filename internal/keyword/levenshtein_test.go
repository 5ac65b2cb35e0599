package keyword

import (
	"math"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical word", "relief", "relief", 0},
		{"identical cjk", "痛经", "痛经", 0},
		{"empty a", "", "cramp", 5},
		{"empty b", "cramp", "", 5},
		{"substitution", "cramp", "crimp", 1},
		{"insertion", "pain", "pains", 1},
		{"deletion", "relief", "relif", 1},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"medication typo", "medication", "medicaton", 1},
		{"case matters", "Pain", "pain", 1},
		{"cjk substitution", "痛经", "经痛", 2},
		{"cjk insertion", "缓解", "缓解法", 1},
		{"transposition counts two", "ab", "ba", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevenshteinDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
			if got := LevenshteinDistance(tt.b, tt.a); got != tt.expected {
				t.Errorf("LevenshteinDistance not symmetric for (%q, %q)", tt.a, tt.b)
			}
		})
	}
}

func TestDamerauLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical", "heat", "heat", 0},
		{"empty", "", "heat", 4},
		{"transposition", "ab", "ba", 1},
		{"teh", "teh", "the", 1},
		{"recieve", "recieve", "receive", 1},
		{"releif", "releif", "relief", 1},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"cjk swap", "痛经", "经痛", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DamerauLevenshteinDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("DamerauLevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
			if got := DamerauLevenshteinDistance(tt.b, tt.a); got != tt.expected {
				t.Errorf("DamerauLevenshteinDistance not symmetric for (%q, %q)", tt.a, tt.b)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"pain", "pain", 1},
		{"releif", "relief", 1 - 1.0/6},
		{"cramp", "", 0},
		{"ab", "cd", 0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func BenchmarkLevenshteinDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		LevenshteinDistance("documentation", "documantation")
	}
}

func BenchmarkDamerauLevenshteinDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DamerauLevenshteinDistance("the quikc brown foz jumsp", "the quick brown fox jumps")
	}
}
