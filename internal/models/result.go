package models

// MatchType describes how strongly a result matched.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchPartial  MatchType = "partial"
	MatchFuzzy    MatchType = "fuzzy"
	MatchSemantic MatchType = "semantic"
)

// MatchTypeForScore maps a lexical score onto a match type.
func MatchTypeForScore(score float64) MatchType {
	switch {
	case score >= 1.0:
		return MatchExact
	case score >= 0.8:
		return MatchPartial
	default:
		return MatchFuzzy
	}
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	ID            string       `json:"id"`
	Type          DocumentType `json:"type"`
	Title         string       `json:"title"`
	URL           string       `json:"url,omitempty"`
	Snippet       string       `json:"snippet,omitempty"`
	Score         float64      `json:"score"`
	MatchType     MatchType    `json:"match_type"`
	MatchedFields []string     `json:"matched_fields"`
	Highlights    []string     `json:"highlights"`
}

// NewResult fills the payload fields of a result from doc.
func NewResult(doc *Document, snippet string) SearchResult {
	return SearchResult{
		ID:            doc.ID,
		Type:          doc.Type,
		Title:         doc.Title(),
		URL:           doc.URL,
		Snippet:       snippet,
		MatchedFields: []string{},
		Highlights:    []string{},
	}
}

// SearchResponse is the response for a search request. Results are sorted by
// descending score.
type SearchResponse struct {
	Results         []SearchResult                  `json:"results"`
	Query           string                          `json:"query"`
	TotalResults    int                             `json:"total_results"`
	SearchTime      float64                         `json:"search_time_ms"`
	Page            int                             `json:"page"`
	PageSize        int                             `json:"page_size"`
	HasMore         bool                            `json:"has_more"`
	Suggestions     []string                        `json:"suggestions"`
	RelatedQueries  []string                        `json:"related_queries"`
	Recommendations []SearchResult                  `json:"recommendations"`
	GroupedResults  map[DocumentType][]SearchResult `json:"grouped_results,omitempty"`
}

// EmptyResponse returns a response with no results for the given paging.
func EmptyResponse(query string, page, pageSize int) *SearchResponse {
	return &SearchResponse{
		Results:         []SearchResult{},
		Query:           query,
		Page:            page,
		PageSize:        pageSize,
		Suggestions:     []string{},
		RelatedQueries:  []string{},
		Recommendations: []SearchResult{},
	}
}

// Paginate slices a ranked list into the requested page and fills the
// paging fields of resp.
func Paginate(resp *SearchResponse, ranked []SearchResult, page, pageSize int) {
	resp.TotalResults = len(ranked)
	resp.Page = page
	resp.PageSize = pageSize
	// Compare before multiplying so a huge page cannot overflow.
	start := len(ranked)
	if page >= 1 && pageSize >= 1 && page-1 < len(ranked)/pageSize+1 {
		start = min((page-1)*pageSize, len(ranked))
	}
	end := len(ranked)
	if pageSize < end-start {
		end = start + pageSize
	}
	resp.Results = append([]SearchResult{}, ranked[start:end]...)
	resp.HasMore = end < len(ranked)
}
