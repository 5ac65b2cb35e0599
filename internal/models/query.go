package models

import (
	"fmt"
	"strings"
)

// Scope restricts which document types a search considers.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeArticles Scope = "articles"
	ScopePDFs     Scope = "pdfs"
	ScopeTools    Scope = "tools"
	ScopeGuides   Scope = "guides"
)

// Admits reports whether a document of type t is inside the scope.
func (s Scope) Admits(t DocumentType) bool {
	switch s {
	case ScopeAll, "":
		return true
	case ScopeArticles:
		return t == DocumentArticle
	case ScopePDFs:
		return t == DocumentPDF
	case ScopeTools:
		return t == DocumentTool
	case ScopeGuides:
		return t == DocumentGuide
	}
	return false
}

func (s Scope) valid() bool {
	switch s {
	case ScopeAll, ScopeArticles, ScopePDFs, ScopeTools, ScopeGuides:
		return true
	}
	return false
}

// Mode selects which retrieval engines run.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeFuzzy    Mode = "fuzzy"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// Source names one retrieval engine.
type Source string

const (
	SourceKeyword  Source = "keyword"
	SourceFuzzy    Source = "fuzzy"
	SourceSemantic Source = "semantic"
)

// Sources is the fixed order fusion processes candidate lists in.
var Sources = []Source{SourceKeyword, SourceFuzzy, SourceSemantic}

// Runs reports whether the mode invokes the given engine.
func (m Mode) Runs(s Source) bool {
	switch m {
	case ModeHybrid:
		return true
	case ModeKeyword:
		return s == SourceKeyword
	case ModeFuzzy:
		return s == SourceFuzzy
	case ModeSemantic:
		return s == SourceSemantic
	}
	return false
}

func (m Mode) valid() bool {
	switch m {
	case ModeKeyword, ModeFuzzy, ModeSemantic, ModeHybrid:
		return true
	}
	return false
}

// SearchOptions is a search request.
type SearchOptions struct {
	Query    string            `json:"query"`
	Scope    Scope             `json:"scope,omitempty"`
	Mode     Mode              `json:"mode,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	Page     int               `json:"page,omitempty"`
	PageSize int               `json:"page_size,omitempty"`
	UserID   string            `json:"user_id,omitempty"`
}

// Normalize validates the request and fills defaults in place. Every failure
// is an INVALID_REQUEST SearchError.
func (o *SearchOptions) Normalize(defaultMode Mode, defaultPageSize, maxPageSize int) error {
	if strings.TrimSpace(o.Query) == "" {
		return NewError(CodeInvalidRequest, "query cannot be empty", nil)
	}
	if o.Scope == "" {
		o.Scope = ScopeAll
	}
	if !o.Scope.valid() {
		return NewError(CodeInvalidRequest, fmt.Sprintf("unknown scope %q", o.Scope), nil)
	}
	if o.Mode == "" {
		o.Mode = defaultMode
	}
	if !o.Mode.valid() {
		return NewError(CodeInvalidRequest, fmt.Sprintf("unknown mode %q", o.Mode), nil)
	}
	if o.Page < 0 {
		return NewError(CodeInvalidRequest, "page must be >= 1", nil)
	}
	if o.Page == 0 {
		o.Page = 1
	}
	if o.PageSize < 0 {
		return NewError(CodeInvalidRequest, "page_size must be >= 1", nil)
	}
	if o.PageSize == 0 {
		o.PageSize = defaultPageSize
	}
	if maxPageSize > 0 && o.PageSize > maxPageSize {
		return NewError(CodeInvalidRequest, fmt.Sprintf("page_size must be <= %d", maxPageSize), nil)
	}
	return nil
}

// Admits reports whether doc passes the scope and every filter. A filter
// matches a metadata value or a field text, case-insensitively.
func (o *SearchOptions) Admits(doc *Document) bool {
	if !o.Scope.Admits(doc.Type) {
		return false
	}
	for k, v := range o.Filters {
		if k == "type" {
			if !strings.EqualFold(string(doc.Type), v) {
				return false
			}
			continue
		}
		got, ok := doc.Metadata[k]
		if !ok {
			got = doc.Field(k)
		}
		if !strings.EqualFold(got, v) {
			return false
		}
	}
	return true
}
