package search

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/smartsearch/internal/analytics"
	"github.com/hyperjump/smartsearch/internal/cache"
	"github.com/hyperjump/smartsearch/internal/index"
	"github.com/hyperjump/smartsearch/internal/intent"
	"github.com/hyperjump/smartsearch/internal/metrics"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/synonym"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

var tracer = otel.Tracer("smartsearch/search")

// Retriever is one retrieval engine bound to an index generation.
type Retriever interface {
	Search(ctx context.Context, query string, admit func(*models.Document) bool, limit int) ([]models.SearchResult, error)
}

// Catalog is the document source BuildIndex reads from.
type Catalog interface {
	AllDocuments(ctx context.Context) ([]*models.Document, error)
}

// Engine is the search orchestrator. It owns the index, cache and analytics
// of one subsystem instance and is safe for concurrent use.
type Engine struct {
	cfg       Config
	index     *index.Manager
	synonyms  *synonym.Engine
	intents   *intent.Matcher
	cache     *cache.SearchCache
	analytics *analytics.Recorder
	metrics   *metrics.Metrics
	catalog   Catalog
	logger    *zap.Logger
	group     singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithCache sets the response cache.
func WithCache(c *cache.SearchCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithAnalytics sets the analytics recorder.
func WithAnalytics(r *analytics.Recorder) Option {
	return func(e *Engine) { e.analytics = r }
}

// WithMetrics sets the Prometheus collectors. Nil records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = utils.OrNop(l) }
}

// WithCatalog sets the document source for BuildIndex.
func WithCatalog(c Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithSynonyms replaces the built-in synonym engine.
func WithSynonyms(s *synonym.Engine) Option {
	return func(e *Engine) { e.synonyms = s }
}

// WithIntentMatcher replaces the built-in intent rules.
func WithIntentMatcher(m *intent.Matcher) Option {
	return func(e *Engine) { e.intents = m }
}

// NewEngine returns an orchestrator over idx. Unset collaborators get an
// in-memory cache, a default-sized analytics log and the built-in synonym and
// intent tables.
func NewEngine(idx *index.Manager, opts ...Option) *Engine {
	e := &Engine{
		cfg:    DefaultConfig(),
		index:  idx,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.cache == nil {
		e.cache = cache.New(cache.NewMemoryStore(1000), 5*time.Minute, true, cache.WithLogger(e.logger))
	}
	if e.analytics == nil {
		e.analytics = analytics.NewRecorder(analytics.DefaultMaxEvents, analytics.WithLogger(e.logger))
	}
	if e.synonyms == nil {
		e.synonyms = synonym.NewEngine(nil)
	}
	if e.intents == nil {
		e.intents = intent.DefaultMatcher()
	}
	return e
}

// Index returns the snapshot manager.
func (e *Engine) Index() *index.Manager { return e.index }

// Search validates opts, serves a cached response when one is fresh and
// otherwise runs the full pipeline. Only INVALID_REQUEST and cancellation of
// ctx are returned as errors; engine and cache failures degrade the response.
func (e *Engine) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResponse, error) {
	start := time.Now()
	if opts == nil {
		opts = &models.SearchOptions{}
	}
	o := *opts
	if err := o.Normalize(e.cfg.DefaultMode, e.cfg.DefaultPageSize, e.cfg.MaxPageSize); err != nil {
		return nil, e.fail(err, opts)
	}
	o.Query = utils.CleanQuery(o.Query)
	if o.Query == "" {
		return nil, e.fail(models.NewError(models.CodeInvalidRequest, "query has no searchable characters", nil), opts)
	}

	resp, hit, err := e.cache.Get(ctx, &o)
	switch {
	case err != nil:
		e.logger.Warn("Cache read failed, searching uncached", zap.Error(err))
		e.metrics.CacheEvent("error")
	case hit:
		e.metrics.CacheEvent("hit")
		e.logger.Debug("Cache hit", zap.String("query", o.Query), zap.String("mode", string(o.Mode)))
		e.analytics.RecordSearch(&o, resp, true)
		e.metrics.ObserveSearch(string(o.Mode), true, resp.TotalResults, time.Since(start))
		return resp, nil
	default:
		e.metrics.CacheEvent("miss")
	}

	// Identical concurrent misses share one execution. The shared run must
	// not die with whichever caller started it.
	runCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(cache.Key(&o), func() (interface{}, error) {
		return e.execute(runCtx, &o)
	})
	select {
	case <-ctx.Done():
		return nil, e.fail(models.NewError(models.CodeSearchFailed, "search abandoned", ctx.Err()), &o)
	case res := <-ch:
		if res.Err != nil {
			return nil, e.fail(res.Err, &o)
		}
		resp = res.Val.(*models.SearchResponse)
	}

	e.analytics.RecordSearch(&o, resp, false)
	e.metrics.ObserveSearch(string(o.Mode), false, resp.TotalResults, time.Since(start))
	return resp, nil
}

func (e *Engine) fail(err error, opts *models.SearchOptions) error {
	e.analytics.RecordError(err, opts)
	e.metrics.SearchError(string(models.CodeOf(err)))
	return err
}

// execute runs intent matching, expansion, the engines and fusion against one
// snapshot, then caches the response.
func (e *Engine) execute(ctx context.Context, o *models.SearchOptions) (*models.SearchResponse, error) {
	ctx, span := tracer.Start(ctx, "search.Search")
	defer span.End()
	start := time.Now()

	snap := e.index.Acquire()
	defer snap.Release()
	span.SetAttributes(
		attribute.String("search.mode", string(o.Mode)),
		attribute.Int64("index.generation", int64(snap.Generation())),
	)

	intents := e.intents.MatchPatterns(o.Query)
	expansion := e.synonyms.ExpandQuery(o.Query, e.cfg.Expansion)
	weights := WeightsForIntent(e.cfg.Weights, intents)

	candidates := e.retrieve(ctx, snap, o, expansion.ExpandedQuery)
	ranked := Fuse(candidates, weights)
	e.logger.Debug("Fused candidates",
		zap.String("query", o.Query),
		zap.String("expanded", expansion.ExpandedQuery),
		zap.String("intent", string(intents.Dominant())),
		zap.Int("keyword", len(candidates[models.SourceKeyword])),
		zap.Int("fuzzy", len(candidates[models.SourceFuzzy])),
		zap.Int("semantic", len(candidates[models.SourceSemantic])),
		zap.Int("fused", len(ranked)))

	resp := models.EmptyResponse(o.Query, o.Page, o.PageSize)
	models.Paginate(resp, ranked, o.Page, o.PageSize)
	resp.Suggestions = e.suggestions(snap, o.Query, expansion)
	resp.RelatedQueries = e.relatedQueries(o.Query, expansion)
	resp.Recommendations = e.recommendations(snap, o, resp.Results)
	if e.cfg.GroupByType {
		resp.GroupedResults = groupByType(resp.Results)
	}
	resp.SearchTime = float64(time.Since(start).Microseconds()) / 1000

	if err := e.cache.Set(ctx, o, resp); err != nil {
		e.logger.Warn("Cache write failed", zap.Error(err))
		e.metrics.CacheEvent("error")
	}
	span.SetAttributes(attribute.Int("search.results", resp.TotalResults))
	return resp, nil
}

// retrieve runs every engine the mode selects in parallel. Keyword and
// semantic retrieval see the expanded query; fuzzy retrieval sees the original
// so that synonyms do not widen its edit-distance matches.
func (e *Engine) retrieve(ctx context.Context, snap *index.Snapshot, o *models.SearchOptions, expanded string) Candidates {
	engines := map[models.Source]Retriever{
		models.SourceKeyword:  snap.Exact,
		models.SourceFuzzy:    snap.Fuzzy,
		models.SourceSemantic: snap.Semantic,
	}
	queries := map[models.Source]string{
		models.SourceKeyword:  expanded,
		models.SourceFuzzy:    o.Query,
		models.SourceSemantic: expanded,
	}

	results := make([][]models.SearchResult, len(models.Sources))
	var g errgroup.Group
	for i, src := range models.Sources {
		if !o.Mode.Runs(src) {
			continue
		}
		g.Go(func() error {
			results[i] = e.runEngine(ctx, snap, src, engines[src], queries[src], o.Admits)
			return nil
		})
	}
	_ = g.Wait()

	c := make(Candidates, len(models.Sources))
	for i, src := range models.Sources {
		if results[i] != nil {
			c[src] = results[i]
		}
	}
	return c
}

type engineOutcome struct {
	results []models.SearchResult
	err     error
}

// runEngine bounds one engine by EngineTimeout. A failed or timed-out engine
// contributes nothing. The engine's goroutine holds its own snapshot
// reference, so a timed-out run never reads a retired generation.
func (e *Engine) runEngine(ctx context.Context, snap *index.Snapshot, src models.Source, r Retriever, query string, admit func(*models.Document) bool) []models.SearchResult {
	ctx, span := tracer.Start(ctx, "search.retrieve",
		trace.WithAttributes(attribute.String("search.source", string(src))))
	defer span.End()
	if e.cfg.EngineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.EngineTimeout)
		defer cancel()
	}

	ch := make(chan engineOutcome, 1)
	snap.Retain()
	go func() {
		defer snap.Release()
		res, err := r.Search(ctx, query, admit, e.cfg.TopK)
		ch <- engineOutcome{results: res, err: err}
	}()

	var out engineOutcome
	select {
	case out = <-ch:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	if out.err != nil {
		err := models.NewError(models.CodeEngineUnavailable, fmt.Sprintf("%s engine failed", src), out.err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("Retrieval engine unavailable, continuing without it",
			zap.String("source", string(src)), zap.Error(err))
		e.metrics.EngineFailure(string(src))
		return nil
	}
	return out.results
}

// suggestions lists the spell-corrected query, if any, then synonym variants.
func (e *Engine) suggestions(snap *index.Snapshot, query string, exp *synonym.ExpansionResult) []string {
	out := newStringSet(query, e.cfg.MaxSuggestions)
	out.add(snap.Spell.CorrectedQuery(query))
	for _, v := range e.synonyms.Expander().Variants(query, exp.ExpandedTerms, e.cfg.MaxVariants) {
		out.add(v)
	}
	return out.items
}

// relatedQueries pairs the query with the strongest related term of each
// expanded token.
func (e *Engine) relatedQueries(query string, exp *synonym.ExpansionResult) []string {
	out := newStringSet(query, e.cfg.MaxRelatedQueries)
	tokens := make([]string, 0, len(exp.ExpandedTerms))
	for _, t := range exp.ExpandedTerms {
		tokens = append(tokens, t.Original)
	}
	for _, t := range exp.ExpandedTerms {
		related := e.synonyms.GetRelatedTerms(t.Original, tokens, 1)
		if len(related) == 0 {
			continue
		}
		out.add(query + " " + related[0].Term)
	}
	return out.items
}

// recommendations returns documents similar to the top hit that are not
// already on the page and pass the request's scope and filters.
func (e *Engine) recommendations(snap *index.Snapshot, o *models.SearchOptions, page []models.SearchResult) []models.SearchResult {
	out := []models.SearchResult{}
	if len(page) == 0 || e.cfg.MaxRecommendations <= 0 {
		return out
	}
	exclude := make(map[string]bool, len(page))
	for _, r := range page {
		exclude[r.ID] = true
	}
	for _, r := range snap.Semantic.Similar(page[0].ID, e.cfg.MaxRecommendations+len(page), exclude) {
		if len(out) >= e.cfg.MaxRecommendations {
			break
		}
		if doc, ok := snap.Document(r.ID); ok && o.Admits(doc) {
			out = append(out, r)
		}
	}
	return out
}

func groupByType(results []models.SearchResult) map[models.DocumentType][]models.SearchResult {
	g := map[models.DocumentType][]models.SearchResult{
		models.DocumentArticle: {},
		models.DocumentPDF:     {},
		models.DocumentTool:    {},
		models.DocumentGuide:   {},
	}
	for _, r := range results {
		g[r.Type] = append(g[r.Type], r)
	}
	return g
}

// stringSet keeps insertion order, drops blanks, duplicates and one excluded
// value, and stops growing at limit.
type stringSet struct {
	exclude string
	limit   int
	seen    map[string]bool
	items   []string
}

func newStringSet(exclude string, limit int) *stringSet {
	return &stringSet{exclude: exclude, limit: limit, seen: map[string]bool{}, items: []string{}}
}

func (s *stringSet) add(v string) {
	if v == "" || v == s.exclude || s.seen[v] || len(s.items) >= s.limit {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

// Suggest completes a partial query for autocomplete: matching titles first,
// then vocabulary completions of the last word, then a spelling correction.
func (e *Engine) Suggest(prefix string, limit int) []string {
	prefix = utils.CleanQuery(prefix)
	if limit <= 0 {
		limit = e.cfg.MaxSuggestions
	}
	out := newStringSet("", limit)
	if prefix == "" {
		return out.items
	}
	snap := e.index.Acquire()
	defer snap.Release()

	for _, t := range snap.Exact.TitleSuggestions(prefix, limit) {
		out.add(t)
	}
	head, last := splitLast(prefix)
	for _, w := range snap.Spell.Complete(last, limit) {
		out.add(head + w)
	}
	out.add(snap.Spell.CorrectedQuery(prefix))
	return out.items
}

// splitLast returns everything up to and including the final space, and the
// final word.
func splitLast(q string) (string, string) {
	for i := len(q) - 1; i >= 0; i-- {
		if q[i] == ' ' {
			return q[:i+1], q[i+1:]
		}
	}
	return "", q
}

// BuildIndex rebuilds the index from the catalog. Without a catalog the
// current documents are re-indexed. The cache is cleared on success.
func (e *Engine) BuildIndex(ctx context.Context) error {
	var docs []*models.Document
	if e.catalog != nil {
		var err error
		docs, err = e.catalog.AllDocuments(ctx)
		if err != nil {
			err = models.NewError(models.CodeIndexBuildFailure, "failed to read catalog", err)
			e.metrics.IndexBuilt(false, e.index.Generation(), e.index.Size())
			e.logger.Error("Index build failed", zap.Error(err))
			return err
		}
	} else {
		snap := e.index.Acquire()
		docs = append(docs, snap.Documents()...)
		snap.Release()
	}
	return e.BuildIndexFrom(ctx, docs)
}

// BuildIndexFrom replaces the indexed documents with docs.
func (e *Engine) BuildIndexFrom(ctx context.Context, docs []*models.Document) error {
	snap, err := e.index.Build(ctx, docs)
	return e.afterBuild(ctx, snap, err)
}

// ClearIndex empties the index and the cache.
func (e *Engine) ClearIndex(ctx context.Context) error {
	snap, err := e.index.Build(ctx, nil)
	return e.afterBuild(ctx, snap, err)
}

// UpdateIndex adds or replaces the document stored under id. doc.ID may be
// empty, in which case id is used; any other mismatch is INVALID_REQUEST.
func (e *Engine) UpdateIndex(ctx context.Context, id string, doc *models.Document) error {
	if doc == nil {
		return models.NewError(models.CodeInvalidRequest, "document is required", nil)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.ID != id {
		return models.NewError(models.CodeInvalidRequest,
			fmt.Sprintf("document id %q does not match %q", doc.ID, id), nil)
	}
	snap, err := e.index.Upsert(ctx, doc)
	if models.CodeOf(err) == models.CodeInvalidRequest {
		return err
	}
	return e.afterBuild(ctx, snap, err)
}

// RemoveFromIndex drops id. It reports false when id was not indexed.
func (e *Engine) RemoveFromIndex(ctx context.Context, id string) (bool, error) {
	removed, err := e.index.Remove(ctx, id)
	if err == nil && !removed {
		return false, nil
	}
	return removed, e.afterBuild(ctx, nil, err)
}

// afterBuild records the outcome and drops cached responses of older
// generations.
func (e *Engine) afterBuild(ctx context.Context, snap *index.Snapshot, err error) error {
	if err != nil {
		e.metrics.IndexBuilt(false, e.index.Generation(), e.index.Size())
		return err
	}
	gen, size := e.index.Generation(), e.index.Size()
	if snap != nil {
		gen, size = snap.Generation(), snap.Len()
	}
	e.metrics.IndexBuilt(true, gen, size)
	if err := e.cache.Clear(ctx); err != nil {
		e.logger.Warn("Failed to clear cache after index change", zap.Error(err))
	}
	return nil
}

// Analytics reports on searches inside dr. A nil range covers everything.
func (e *Engine) Analytics(dr *analytics.DateRange) *analytics.Report {
	return e.analytics.Report(dr)
}

// Recorder returns the analytics recorder.
func (e *Engine) Recorder() *analytics.Recorder { return e.analytics }

// Cache returns the response cache.
func (e *Engine) Cache() *cache.SearchCache { return e.cache }
