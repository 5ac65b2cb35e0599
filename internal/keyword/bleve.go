// Package keyword provides the exact and fuzzy retrieval engines and the bleve
// term index that backs fuzzy candidates and spelling suggestions.
package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

// wordsAnalyzer indexes text already split by utils.SplitWords, so index
// terms are exactly the words the fuzzy scorer compares against.
const wordsAnalyzer = "words"

// TermIndex is a bleve index over the document fields of one index
// generation. Path "" keeps it in memory only.
type TermIndex struct {
	index bleve.Index
	path  string
}

func newMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	// No stop words and no stemming: the dictionary holds surface forms.
	err := im.AddCustomAnalyzer(wordsAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to define analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = wordsAnalyzer
	text.Store = false
	for _, f := range models.DefaultFields {
		docMapping.AddFieldMappingsAt(f, text)
	}
	kw := bleve.NewKeywordFieldMapping()
	kw.IncludeInAll = false
	docMapping.AddFieldMappingsAt("id", kw)
	docMapping.AddFieldMappingsAt("type", kw)

	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping
	return im, nil
}

// NewTermIndex creates an empty index. An existing directory at path is
// replaced since each generation is built from scratch.
func NewTermIndex(path string) (*TermIndex, error) {
	im, err := newMapping()
	if err != nil {
		return nil, err
	}
	if path == "" {
		idx, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory term index: %w", err)
		}
		return &TermIndex{index: idx}, nil
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to reset term index dir: %w", err)
	}
	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create term index: %w", err)
	}
	return &TermIndex{index: idx, path: path}, nil
}

// Index adds docs in one batch.
func (t *TermIndex) Index(docs []*models.Document) error {
	batch := t.index.NewBatch()
	for _, d := range docs {
		data := map[string]interface{}{
			"id":   d.ID,
			"type": string(d.Type),
		}
		for _, f := range d.Fields {
			data[f.Name] = strings.Join(utils.SplitWords(f.Text), " ")
		}
		if err := batch.Index(d.ID, data); err != nil {
			return fmt.Errorf("failed to batch document %s: %w", d.ID, err)
		}
	}
	if err := t.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index batch: %w", err)
	}
	return nil
}

// Containing returns ids of documents that hold any of terms, ordered by
// bleve score. Terms are matched exactly as indexed.
func (t *TermIndex) Containing(ctx context.Context, terms []string, limit int) ([]string, error) {
	if len(terms) == 0 {
		return []string{}, nil
	}
	queries := make([]blevequery.Query, len(terms))
	for i, term := range terms {
		queries[i] = bleve.NewTermQuery(term)
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit
	res, err := t.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("term index search failed: %w", err)
	}
	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Terms returns every indexed term with its summed per-field document count.
func (t *TermIndex) Terms() (map[string]int, error) {
	out := make(map[string]int)
	for _, field := range models.DefaultFields {
		dict, err := t.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s dictionary: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			out[entry.Term] += int(entry.Count)
		}
		_ = dict.Close()
	}
	return out, nil
}

// SortedTerms returns the indexed terms in lexical order.
func (t *TermIndex) SortedTerms() ([]string, error) {
	m, err := t.Terms()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(m))
	for term := range m {
		out = append(out, term)
	}
	sort.Strings(out)
	return out, nil
}

// DocCount returns the number of indexed documents.
func (t *TermIndex) DocCount() (uint64, error) {
	return t.index.DocCount()
}

// Close closes the index and removes its directory, if any.
func (t *TermIndex) Close() error {
	err := t.index.Close()
	if t.path != "" {
		if rmErr := os.RemoveAll(t.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
