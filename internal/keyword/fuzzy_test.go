package keyword

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/hyperjump/smartsearch/internal/models"
)

func TestFuzzyEngine_Search(t *testing.T) {
	e := NewFuzzyEngine(sampleDocs(), nil, DefaultFuzzyOptions())
	ctx := context.Background()

	got, err := e.Search(ctx, "releif", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids(got), []string{"a1", "t1"}) {
		t.Fatalf("ids = %v, want [a1 t1]", ids(got))
	}
	want := 1 - 1.0/6
	if math.Abs(got[0].Score-want) > 1e-9 {
		t.Errorf("score = %f, want %f", got[0].Score, want)
	}
	if got[0].MatchType != models.MatchFuzzy {
		t.Errorf("match type = %s", got[0].MatchType)
	}
	if len(got[0].Highlights) == 0 || got[0].MatchedFields[0] != models.FieldTitle {
		t.Errorf("result = %+v", got[0])
	}

	got, _ = e.Search(ctx, "痛经", nil, 10)
	if len(got) != 1 || got[0].ID != "a1" || math.Abs(got[0].Score-0.9) > 1e-9 {
		t.Errorf("cjk search = %+v", got)
	}

	got, _ = e.Search(ctx, "track", nil, 10)
	if len(got) != 1 || got[0].ID != "p1" || got[0].Score != partialTokenScore {
		t.Errorf("partial token search = %+v", got)
	}

	if got, _ = e.Search(ctx, "zzzzzz", nil, 10); len(got) != 0 {
		t.Errorf("unrelated query matched %v", ids(got))
	}
	if got, _ = e.Search(ctx, "a", nil, 10); len(got) != 0 {
		t.Errorf("single-rune query matched %v", ids(got))
	}
}

func TestFuzzyEngine_PenalizesDistance(t *testing.T) {
	docs := []*models.Document{
		{ID: "one", Fields: []models.Field{{Name: models.FieldTitle, Text: "medication"}}},
		{ID: "two", Fields: []models.Field{{Name: models.FieldTitle, Text: "medikatin"}}},
	}
	e := NewFuzzyEngine(docs, nil, DefaultFuzzyOptions())
	got, _ := e.Search(context.Background(), "medicaton", nil, 10)
	if len(got) != 2 || got[0].ID != "one" {
		t.Fatalf("ids = %v", ids(got))
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("fewer edits should score higher: %f vs %f", got[0].Score, got[1].Score)
	}
}

func TestFuzzyEngine_WithTermIndex(t *testing.T) {
	docs := sampleDocs()
	ti, err := NewTermIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer ti.Close()
	if err := ti.Index(docs); err != nil {
		t.Fatal(err)
	}

	e := NewFuzzyEngine(docs, nil, DefaultFuzzyOptions(), WithTermIndex(ti), WithLogger(nil))
	got, err := e.Search(context.Background(), "releif", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids(got), []string{"a1", "t1"}) {
		t.Errorf("ids = %v, want [a1 t1]", ids(got))
	}
	got, _ = e.Search(context.Background(), "痛经", nil, 10)
	if len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("cjk word should match through the index, got %v", ids(got))
	}
}

func TestFuzzyEngine_TermIndexMatchesScan(t *testing.T) {
	docs := append(sampleDocs(),
		&models.Document{ID: "m1", Fields: []models.Field{{Name: models.FieldTitle, Text: "Premenstrual syndrome basics"}}},
		&models.Document{ID: "m2", Fields: []models.Field{{Name: models.FieldContent, Text: "The medication is in the cabinet"}}},
		&models.Document{ID: "m3", Fields: []models.Field{{Name: models.FieldKeywords, Text: "经期 痛经缓解"}}},
	)
	ti, err := NewTermIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer ti.Close()
	if err := ti.Index(docs); err != nil {
		t.Fatal(err)
	}
	scan := NewFuzzyEngine(docs, nil, DefaultFuzzyOptions())
	indexed := NewFuzzyEngine(docs, nil, DefaultFuzzyOptions(), WithTermIndex(ti))

	ctx := context.Background()
	for _, q := range []string{"menstrual", "releif", "painkiller", "mediaction", "痛经", "syndrom basic", "zzzz"} {
		want, err := scan.Search(ctx, q, nil, 10)
		if err != nil {
			t.Fatal(err)
		}
		got, err := indexed.Search(ctx, q, nil, 10)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ids(got), ids(want)) {
			t.Errorf("%q: indexed ids = %v, scan ids = %v", q, ids(got), ids(want))
			continue
		}
		for i := range want {
			if got[i].Score != want[i].Score {
				t.Errorf("%q: %s score %f, scan %f", q, got[i].ID, got[i].Score, want[i].Score)
			}
		}
	}

	got, _ := indexed.Search(ctx, "menstrual", nil, 10)
	if len(got) == 0 || got[0].ID != "m1" {
		t.Errorf("menstrual should reach premenstrual, got %v", ids(got))
	}
}
