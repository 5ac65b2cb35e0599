// Package cache memoizes complete search responses keyed by request shape.
package cache

import (
	"encoding/json"
	"sort"

	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

// keyShape fixes the serialized field order. Filters are a sorted pair list
// so that maps with equal contents always produce the same key.
type keyShape struct {
	Query    string      `json:"query"`
	Scope    string      `json:"scope"`
	Mode     string      `json:"mode"`
	Filters  [][2]string `json:"filters"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Key returns the canonical cache key for opts. The query is cleaned first, so
// "Pain  Relief!" and "pain relief" share an entry.
func Key(opts *models.SearchOptions) string {
	shape := keyShape{
		Query:    utils.CleanQuery(opts.Query),
		Scope:    string(opts.Scope),
		Mode:     string(opts.Mode),
		Filters:  [][2]string{},
		Page:     opts.Page,
		PageSize: opts.PageSize,
	}
	keys := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		shape.Filters = append(shape.Filters, [2]string{k, opts.Filters[k]})
	}
	// cannot fail: only strings and ints
	b, _ := json.Marshal(shape)
	return string(b)
}
