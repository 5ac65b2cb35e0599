// Package cli renders search responses and reports for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/smartsearch/internal/analytics"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

const snippetWidth = 200

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, resp *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		for _, r := range resp.Results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n", r.Score, r.Type, r.ID, r.Title)
		}
		return nil
	default:
		writeSearchText(w, resp)
		return nil
	}
}

func writeSearchText(w io.Writer, resp *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results for %q in %.1fms (page %d, %d per page)\n\n",
		resp.TotalResults, resp.Query, resp.SearchTime, resp.Page, resp.PageSize)
	offset := (resp.Page - 1) * resp.PageSize
	for i, r := range resp.Results {
		writeOneResult(w, offset+i+1, r)
	}
	if resp.HasMore {
		fmt.Fprintf(w, "More results on page %d.\n", resp.Page+1)
	}
	if len(resp.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(resp.Suggestions, ", "))
	}
	if len(resp.RelatedQueries) > 0 {
		fmt.Fprintf(w, "Related: %s\n", strings.Join(resp.RelatedQueries, ", "))
	}
	if len(resp.Recommendations) > 0 {
		fmt.Fprintln(w, "You may also like:")
		for _, r := range resp.Recommendations {
			fmt.Fprintf(w, "  - %s (%s)\n", r.Title, r.Type)
		}
	}
}

func writeOneResult(w io.Writer, rank int, r models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "#%d [%s] Score: %.4f (%s)\n", rank, r.Type, r.Score, r.MatchType)
	fmt.Fprintf(w, "ID: %s\n", r.ID)
	if r.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", r.Title)
	}
	if r.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", r.URL)
	}
	if len(r.MatchedFields) > 0 {
		fmt.Fprintf(w, "Matched: %s\n", strings.Join(r.MatchedFields, ", "))
	}
	if r.Snippet != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(r.Snippet, snippetWidth))
	}
	fmt.Fprintln(w)
}

// WriteReport writes an analytics report. Compact is treated as text.
func WriteReport(w io.Writer, rep *analytics.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, rep)
	}
	fmt.Fprintf(w, "searches:           %d\n", rep.TotalSearches)
	fmt.Fprintf(w, "unique_queries:     %d\n", rep.UniqueQueries)
	fmt.Fprintf(w, "avg_results:        %.2f\n", rep.AverageResultsPerQuery)
	fmt.Fprintf(w, "avg_response_ms:    %.2f\n", rep.AverageResponseTime)
	fmt.Fprintf(w, "cache_hit_rate:     %.2f\n", rep.CacheHitRate)
	fmt.Fprintf(w, "errors:             %d\n", rep.TotalErrors)
	codes := make([]string, 0, len(rep.ErrorsByCode))
	for code := range rep.ErrorsByCode {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %-18s %d\n", code, rep.ErrorsByCode[models.ErrorCode(code)])
	}
	if len(rep.TopQueries) > 0 {
		fmt.Fprintln(w, "\n# top queries")
		for _, q := range rep.TopQueries {
			fmt.Fprintf(w, "%5d  %s\n", q.Count, q.Query)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
