package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/smartsearch/internal/analytics"
	"github.com/hyperjump/smartsearch/internal/models"
)

func sampleResponse() *models.SearchResponse {
	resp := models.EmptyResponse("cramps", 1, 2)
	models.Paginate(resp, []models.SearchResult{
		{ID: "heat", Type: models.DocumentArticle, Title: "Heat therapy", Score: 1.2, MatchType: models.MatchExact,
			MatchedFields: []string{"title"}, Snippet: "a heating pad relaxes cramps"},
		{ID: "diary", Type: models.DocumentPDF, Title: "Cramps diary", Score: 0.8, MatchType: models.MatchPartial},
		{ID: "yoga", Type: models.DocumentGuide, Title: "Yoga", Score: 0.4, MatchType: models.MatchFuzzy},
	}, 1, 2)
	resp.Suggestions = []string{"cramp"}
	return resp
}

func TestParseOutputFormat(t *testing.T) {
	for _, in := range []string{"text", "JSON", "compact"} {
		if _, err := ParseOutputFormat(in); err != nil {
			t.Errorf("ParseOutputFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Query != "cramps" || decoded.TotalResults != 3 || len(decoded.Results) != 2 || !decoded.HasMore {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`Found 3 results for "cramps"`,
		"#1 [article] Score: 1.2000 (exact)",
		"Matched: title",
		"a heating pad relaxes cramps",
		"#2 [pdf]",
		"More results on page 2.",
		"Did you mean: cramp",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Yoga") {
		t.Error("text output includes a result from the next page")
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[0] != "1.2000\tarticle\theat\tHeat therapy" {
		t.Errorf("compact output = %q", lines)
	}
}

func TestWriteReport(t *testing.T) {
	rep := &analytics.Report{
		TotalSearches: 4,
		UniqueQueries: 2,
		CacheHitRate:  0.5,
		TotalErrors:   1,
		ErrorsByCode:  map[models.ErrorCode]int{models.CodeInvalidRequest: 1},
		TopQueries:    []analytics.QueryCount{{Query: "cramps", Count: 3}},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, rep, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"searches:           4", "INVALID_REQUEST", "    3  cramps"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteReport(&buf, rep, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded analytics.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.TotalSearches != 4 {
		t.Errorf("json report = %+v, %v", decoded, err)
	}
}
