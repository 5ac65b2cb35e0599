package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/smartsearch/internal/index"
	"github.com/hyperjump/smartsearch/internal/models"
)

func BenchmarkFuse(b *testing.B) {
	var kw, fz, sem []models.SearchResult
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("doc-%d", i%60)
		kw = append(kw, hit(id, float64(i)/100))
		fz = append(fz, hit(id, float64(100-i)/100))
		sem = append(sem, hit(fmt.Sprintf("doc-%d", i), 0.5))
	}
	c := Candidates{models.SourceKeyword: kw, models.SourceFuzzy: fz, models.SourceSemantic: sem}
	w := SourceWeights{Exact: 1.0, Fuzzy: 0.8, Semantic: 0.6}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Fuse(c, w)
	}
}

func benchEngine(b *testing.B) *Engine {
	b.Helper()
	docs := make([]*models.Document, 0, 500)
	topics := []string{"cramps", "heating pad", "ibuprofen", "breathing", "yoga", "fatigue", "nausea"}
	for i := 0; i < 500; i++ {
		t := topics[i%len(topics)]
		docs = append(docs, doc(fmt.Sprintf("doc-%d", i), models.DocumentArticle,
			"Notes on "+t, fmt.Sprintf("entry %d about %s and period pain relief", i, t), nil))
	}
	idx := index.NewManager(index.DefaultOptions())
	b.Cleanup(func() { _ = idx.Close() })
	e := NewEngine(idx)
	if err := e.BuildIndexFrom(context.Background(), docs); err != nil {
		b.Fatal(err)
	}
	return e
}

func BenchmarkEngine_Search(b *testing.B) {
	e := benchEngine(b)
	ctx := context.Background()
	for _, mode := range []models.Mode{models.ModeKeyword, models.ModeFuzzy, models.ModeSemantic, models.ModeHybrid} {
		b.Run(string(mode), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				// Vary the query so the cache does not answer.
				q := fmt.Sprintf("period pain %d", i)
				if _, err := e.Search(ctx, &models.SearchOptions{Query: q, Mode: mode}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
