// Package indexer keeps the document catalog and the search index in step
// with files on disk.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/extract"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/storage"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"

	docIDPrefix = "file:"
)

// Index is the part of the search engine the indexer drives.
type Index interface {
	BuildIndex(ctx context.Context) error
	UpdateIndex(ctx context.Context, id string, doc *models.Document) error
	RemoveFromIndex(ctx context.Context, id string) (bool, error)
}

// Indexer extracts files into the catalog and pushes changes to the index.
type Indexer struct {
	catalog    storage.Storage
	index      Index
	extractor  *extract.Extractor
	extensions []string
	workers    int
	logger     *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, document deleted, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = utils.OrNop(l) }
}

// WithExtensions restricts indexing to the given extensions. Empty allows all.
func WithExtensions(exts []string) Option {
	return func(idx *Indexer) { idx.extensions = exts }
}

// WithWorkers sets how many files are extracted concurrently during a sync.
func WithWorkers(n int) Option {
	return func(idx *Indexer) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// NewIndexer creates an indexer over catalog and index.
func NewIndexer(catalog storage.Storage, index Index, extractor *extract.Extractor, opts ...Option) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		catalog:   catalog,
		index:     index,
		extractor: extractor,
		workers:   4,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// DocumentID returns a stable document ID for path. Same path always yields
// the same ID.
func DocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return docIDPrefix + hex.EncodeToString(hash[:])
}

// Allowed reports whether path has an indexable extension.
func (idx *Indexer) Allowed(path string) bool {
	return len(idx.extensions) == 0 || extensionAllowed(filepath.Ext(path), idx.extensions)
}

// IndexFile extracts path into the catalog and updates the index. It reports
// false when the file is unchanged since it was last indexed.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (bool, error) {
	doc, changed, err := idx.load(ctx, path)
	if err != nil || !changed {
		return false, err
	}
	if err := idx.catalog.UpsertDocument(ctx, doc); err != nil {
		return false, fmt.Errorf("store document: %w", err)
	}
	if err := idx.index.UpdateIndex(ctx, doc.ID, doc); err != nil {
		return false, err
	}
	idx.logger.Debug("Indexed file", zap.String("path", doc.Metadata[metaKeySourcePath]), zap.String("doc_id", doc.ID))
	return true, nil
}

// RemoveFile drops the document for path from the catalog and the index.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) (bool, error) {
	id := DocumentID(path)
	removed, err := idx.catalog.DeleteDocument(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	indexed, err := idx.index.RemoveFromIndex(ctx, id)
	if err != nil {
		return false, err
	}
	if removed || indexed {
		idx.logger.Debug("Removed file", zap.String("path", path), zap.String("doc_id", id))
	}
	return removed || indexed, nil
}

// SyncReport summarizes one directory sync.
type SyncReport struct {
	Scanned   int
	Indexed   int
	Unchanged int
	Removed   int
	Failed    int
}

// SyncDirectories brings the catalog in line with the files under dirs and
// rebuilds the index once. Files are extracted on a bounded worker pool.
// Documents whose source file disappeared are removed. Per-file failures are
// logged and counted; the first one is returned after the rebuild.
func (idx *Indexer) SyncDirectories(ctx context.Context, dirs []string, recursive bool) (*SyncReport, error) {
	var (
		files []string
		roots []string
	)
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		found, err := idx.scan(abs, recursive)
		if err != nil {
			return nil, err
		}
		roots = append(roots, abs)
		files = append(files, found...)
	}

	pool, err := ants.NewPool(idx.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		report   = &SyncReport{Scanned: len(files)}
		seen     = make(map[string]struct{}, len(files))
	)
	fail := func(path string, err error) {
		idx.logger.Warn("Failed to index file", zap.String("path", path), zap.Error(err))
		mu.Lock()
		report.Failed++
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	for _, path := range files {
		seen[DocumentID(path)] = struct{}{}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			doc, changed, err := idx.load(ctx, path)
			if err != nil {
				fail(path, err)
				return
			}
			if !changed {
				mu.Lock()
				report.Unchanged++
				mu.Unlock()
				return
			}
			if err := idx.catalog.UpsertDocument(ctx, doc); err != nil {
				fail(path, fmt.Errorf("store document: %w", err))
				return
			}
			mu.Lock()
			report.Indexed++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(path, fmt.Errorf("submit: %w", err))
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	removed, err := idx.prune(ctx, roots, seen)
	if err != nil {
		return report, err
	}
	report.Removed = removed

	if err := idx.index.BuildIndex(ctx); err != nil {
		return report, err
	}
	idx.logger.Info("Synced directories",
		zap.Int("scanned", report.Scanned),
		zap.Int("indexed", report.Indexed),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("removed", report.Removed),
		zap.Int("failed", report.Failed))
	return report, firstErr
}

func (idx *Indexer) scan(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !idx.Allowed(path) {
			return nil
		}
		// Resolve symlinks so only regular files are indexed.
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// prune deletes catalog documents sourced under roots that were not seen.
func (idx *Indexer) prune(ctx context.Context, roots []string, seen map[string]struct{}) (int, error) {
	docs, err := idx.catalog.AllDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	removed := 0
	for _, doc := range docs {
		src := doc.Metadata[metaKeySourcePath]
		if src == "" || !underAny(src, roots) {
			continue
		}
		if _, ok := seen[doc.ID]; ok {
			continue
		}
		if _, err := idx.catalog.DeleteDocument(ctx, doc.ID); err != nil {
			return removed, fmt.Errorf("delete document: %w", err)
		}
		idx.logger.Debug("Pruned vanished file", zap.String("path", src))
		removed++
	}
	return removed, nil
}

// load builds the document for path. changed is false when the catalog
// already holds the same mtime and size.
func (idx *Indexer) load(ctx context.Context, path string) (*models.Document, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("absolute path: %w", err)
	}
	if !idx.Allowed(absPath) {
		return nil, false, fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, fmt.Errorf("not a regular file: %s", absPath)
	}
	id := DocumentID(absPath)
	// Values are stored as strings so UnixNano keeps full precision.
	mtime := strconv.FormatInt(info.ModTime().UnixNano(), 10)
	size := strconv.FormatInt(info.Size(), 10)

	existing, err := idx.catalog.GetDocument(ctx, id)
	switch {
	case err == nil:
		if existing.Metadata[metaKeySourcePath] == absPath &&
			existing.Metadata[metaKeySourceMtime] == mtime &&
			existing.Metadata[metaKeySourceSize] == size {
			return existing, false, nil
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, false, fmt.Errorf("get document: %w", err)
	}

	content, err := idx.extractor.Extract(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("extract content: %w", err)
	}
	doc := &models.Document{
		ID:   id,
		Type: content.Type,
		URL:  "file://" + filepath.ToSlash(absPath),
		Metadata: map[string]string{
			metaKeySourcePath:  absPath,
			metaKeySourceMtime: mtime,
			metaKeySourceSize:  size,
		},
	}
	doc.SetField(models.FieldTitle, content.Title)
	if text := Preprocess(content.Text); text != "" {
		doc.SetField(models.FieldContent, text)
	}
	return doc, true, nil
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
