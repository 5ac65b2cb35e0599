package index

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/keyword"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/vector"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

var tracer = otel.Tracer("smartsearch/index")

// Options configures snapshot builds.
type Options struct {
	// TermIndexDir holds one bleve directory per generation. Empty keeps term
	// indexes in memory.
	TermIndexDir   string
	FieldWeights   keyword.FieldWeights
	// WordMatchScore is the keyword score of a whole-word match. Zero keeps
	// the engine default.
	WordMatchScore float64
	Fuzzy          keyword.FuzzyOptions
	Semantic       vector.SemanticOptions
}

// DefaultOptions returns in-memory builds with stock weights.
func DefaultOptions() Options {
	return Options{
		FieldWeights: keyword.DefaultFieldWeights(),
		Fuzzy:        keyword.DefaultFuzzyOptions(),
		Semantic:     vector.DefaultSemanticOptions(),
	}
}

// Manager owns the working document set and the current snapshot. Builds are
// serialized; searches read whichever snapshot was current when they started.
type Manager struct {
	opts   Options
	logger *zap.Logger

	buildMu sync.Mutex
	working map[string]*models.Document
	gen     uint64
	vectors *vector.Vectorizer

	mu      sync.RWMutex
	current *Snapshot
	retired sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = utils.OrNop(l) }
}

// NewManager returns a manager serving an empty generation-0 snapshot.
func NewManager(opts Options, options ...Option) *Manager {
	m := &Manager{
		opts:    opts,
		logger:  zap.NewNop(),
		working: make(map[string]*models.Document),
		vectors: vector.NewVectorizer(),
	}
	for _, o := range options {
		o(m)
	}
	m.current = m.emptySnapshot()
	return m
}

func (m *Manager) emptySnapshot() *Snapshot {
	model := m.vectors.Model()
	return &Snapshot{
		generation: m.gen,
		builtAt:    time.Now(),
		byID:       map[string]*models.Document{},
		model:      model,
		Exact:      keyword.NewExactEngine(nil, m.opts.FieldWeights, keyword.WithWordMatchScore(m.opts.WordMatchScore)),
		Fuzzy:      keyword.NewFuzzyEngine(nil, m.opts.FieldWeights, m.opts.Fuzzy),
		Semantic:   vector.NewSemanticEngine(vector.NewCorpus(model, nil), nil, m.opts.Semantic),
		Spell:      mustEmptySpellChecker(),
	}
}

func mustEmptySpellChecker() *keyword.SpellChecker {
	sc, _ := keyword.NewSpellChecker(nil)
	return sc
}

// Acquire returns the current snapshot and pins it until Release.
func (m *Manager) Acquire() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.current.refs.Add(1)
	return m.current
}

// Generation returns the current generation number.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.generation
}

// Size returns the number of documents in the current snapshot.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Len()
}

// Build replaces the working set with docs and activates a new generation.
// On failure the previous snapshot keeps serving.
func (m *Manager) Build(ctx context.Context, docs []*models.Document) (*Snapshot, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	next := make(map[string]*models.Document, len(docs))
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, models.NewError(models.CodeIndexBuildFailure, "invalid document", err)
		}
		next[d.ID] = d
	}
	return m.rebuild(ctx, next)
}

// Upsert adds or replaces one document and rebuilds.
func (m *Manager) Upsert(ctx context.Context, doc *models.Document) (*Snapshot, error) {
	if err := doc.Validate(); err != nil {
		return nil, models.NewError(models.CodeInvalidRequest, "invalid document", err)
	}
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	next := make(map[string]*models.Document, len(m.working)+1)
	for id, d := range m.working {
		next[id] = d
	}
	next[doc.ID] = doc
	return m.rebuild(ctx, next)
}

// Remove drops one document and rebuilds. It reports false when id was not
// indexed, in which case nothing is rebuilt.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	if _, ok := m.working[id]; !ok {
		return false, nil
	}
	next := make(map[string]*models.Document, len(m.working))
	for k, d := range m.working {
		if k != id {
			next[k] = d
		}
	}
	_, err := m.rebuild(ctx, next)
	return err == nil, err
}

// Clear empties the index. The next generation serves no documents.
func (m *Manager) Clear(ctx context.Context) error {
	_, err := m.Build(ctx, nil)
	return err
}

// rebuild must be called with buildMu held.
func (m *Manager) rebuild(ctx context.Context, working map[string]*models.Document) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "index.Build")
	defer span.End()

	gen := m.gen + 1
	span.SetAttributes(attribute.Int64("index.generation", int64(gen)), attribute.Int("index.documents", len(working)))
	start := time.Now()

	snap, err := m.build(ctx, gen, working)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Error("Index build failed, keeping previous generation",
			zap.Uint64("generation", gen), zap.Error(err))
		return nil, models.NewError(models.CodeIndexBuildFailure, "index build failed", err)
	}

	m.gen = gen
	m.working = working
	m.mu.Lock()
	old := m.current
	m.current = snap
	m.mu.Unlock()

	m.retired.Add(1)
	go func() {
		defer m.retired.Done()
		if err := old.retire(); err != nil {
			m.logger.Warn("Failed to release retired generation",
				zap.Uint64("generation", old.generation), zap.Error(err))
		}
	}()

	m.logger.Info("Index generation activated",
		zap.Uint64("generation", gen),
		zap.Int("documents", snap.Len()),
		zap.Int("vocabulary", snap.model.VocabularySize()),
		zap.Duration("took", time.Since(start)))
	return snap, nil
}

func (m *Manager) build(ctx context.Context, gen uint64, working map[string]*models.Document) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0, len(working))
	for _, d := range working {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	byID := make(map[string]*models.Document, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		byID[d.ID] = d
		ids[i] = d.ID
	}

	path := ""
	if m.opts.TermIndexDir != "" {
		path = filepath.Join(m.opts.TermIndexDir, fmt.Sprintf("gen-%d", gen))
	}
	terms, err := keyword.NewTermIndex(path)
	if err != nil {
		return nil, err
	}
	if err := terms.Index(docs); err != nil {
		_ = terms.Close()
		return nil, err
	}
	spell, err := keyword.NewSpellChecker(terms)
	if err != nil {
		_ = terms.Close()
		return nil, err
	}

	// Nothing below fails, so the vectorizer only ever holds the model of the
	// generation about to be activated.
	model := m.vectors.Fit(vector.Inputs(docs), gen)
	corpus := vector.NewCorpus(model, ids)

	return &Snapshot{
		generation: gen,
		builtAt:    time.Now(),
		docs:       docs,
		byID:       byID,
		model:      model,
		Exact:      keyword.NewExactEngine(docs, m.opts.FieldWeights, keyword.WithWordMatchScore(m.opts.WordMatchScore)),
		Fuzzy: keyword.NewFuzzyEngine(docs, m.opts.FieldWeights, m.opts.Fuzzy,
			keyword.WithTermIndex(terms), keyword.WithLogger(m.logger)),
		Semantic: vector.NewSemanticEngine(corpus, docs, m.opts.Semantic),
		Spell:    spell,
		terms:    terms,
	}, nil
}

// Close waits for retired generations and releases the current one. Callers
// must not Acquire after Close.
func (m *Manager) Close() error {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()
	m.retired.Wait()
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()
	return cur.retire()
}
