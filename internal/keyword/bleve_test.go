package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTermIndex_Containing(t *testing.T) {
	ti, err := NewTermIndex("")
	if err != nil {
		t.Fatalf("NewTermIndex: %v", err)
	}
	defer ti.Close()
	if err := ti.Index(sampleDocs()); err != nil {
		t.Fatalf("Index: %v", err)
	}

	n, err := ti.DocCount()
	if err != nil || n != 3 {
		t.Fatalf("DocCount = %d, %v", n, err)
	}

	ctx := context.Background()
	got, err := ti.Containing(ctx, []string{"relief"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, id := range got {
		seen[id] = true
	}
	if !seen["a1"] || !seen["t1"] || seen["p1"] {
		t.Errorf("relief holders = %v", got)
	}

	got, _ = ti.Containing(ctx, []string{"tracking", "痛经"}, 10)
	if len(got) != 2 {
		t.Errorf("tracking or 痛经 holders = %v", got)
	}
	if got, _ := ti.Containing(ctx, []string{"track"}, 10); len(got) != 0 {
		t.Errorf("term lookup is exact, got %v", got)
	}
	if got, _ := ti.Containing(ctx, nil, 10); len(got) != 0 {
		t.Errorf("no terms should give no documents, got %v", got)
	}
}

func TestTermIndex_Terms(t *testing.T) {
	ti, err := NewTermIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer ti.Close()
	if err := ti.Index(sampleDocs()); err != nil {
		t.Fatal(err)
	}
	terms, err := ti.Terms()
	if err != nil {
		t.Fatal(err)
	}
	if terms["relief"] < 2 {
		t.Errorf("relief count = %d, want at least 2", terms["relief"])
	}
	if _, ok := terms["tracking"]; !ok {
		t.Error("tracking should be indexed")
	}
	if _, ok := terms["痛经"]; !ok {
		t.Error("cjk words should be indexed whole")
	}
	sorted, _ := ti.SortedTerms()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1] > sorted[i] {
			t.Fatalf("SortedTerms not sorted at %d", i)
		}
	}

	sc, err := NewSpellChecker(ti)
	if err != nil {
		t.Fatal(err)
	}
	if got := sc.CorrectedQuery("releif"); got != "relief" {
		t.Errorf("spell check over term index = %q", got)
	}
}

func TestTermIndex_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen-1")
	ti, err := NewTermIndex(path)
	if err != nil {
		t.Fatalf("NewTermIndex: %v", err)
	}
	if err := ti.Index(sampleDocs()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("index dir missing: %v", err)
	}
	if err := ti.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("index dir should be removed on close, stat err = %v", err)
	}
}
