// Package analytics keeps a bounded in-memory log of searches and search
// errors and aggregates it into reports.
package analytics

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

// DefaultMaxEvents is the log cap used when none is configured.
const DefaultMaxEvents = 1000

// topQueriesLimit bounds Report.TopQueries.
const topQueriesLimit = 10

// Event is one recorded search.
type Event struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	Query        string       `json:"query"`
	Mode         models.Mode  `json:"mode"`
	Scope        models.Scope `json:"scope"`
	ResultsCount int          `json:"results_count"`
	SearchTime   float64      `json:"search_time_ms"`
	FromCache    bool         `json:"from_cache"`
	UserID       string       `json:"user_id,omitempty"`
}

// ErrorEvent is one recorded search failure.
type ErrorEvent struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Code      models.ErrorCode `json:"error_code"`
	Message   string           `json:"message"`
	Query     string           `json:"query"`
	UserID    string           `json:"user_id,omitempty"`
}

// DateRange bounds a report. Both ends are inclusive; a zero Start means the
// beginning of time and a zero End means now.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// QueryCount is one entry of Report.TopQueries.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Report aggregates the events of a date range.
type Report struct {
	TotalSearches          int                      `json:"total_searches"`
	UniqueQueries          int                      `json:"unique_queries"`
	AverageResultsPerQuery float64                  `json:"average_results_per_query"`
	AverageResponseTime    float64                  `json:"average_response_time_ms"`
	CacheHitRate           float64                  `json:"cache_hit_rate"`
	TopQueries             []QueryCount             `json:"top_queries"`
	TotalErrors            int                      `json:"total_errors"`
	ErrorsByCode           map[models.ErrorCode]int `json:"errors_by_code"`
	StartDate              time.Time                `json:"start_date"`
	EndDate                time.Time                `json:"end_date"`
}

// Recorder is safe for concurrent use.
type Recorder struct {
	maxEvents int
	now       func() time.Time
	logger    *zap.Logger

	mu     sync.RWMutex
	events []Event
	errs   []ErrorEvent
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used for error events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) { r.logger = utils.OrNop(l) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder returns a recorder whose logs never exceed maxEvents entries.
func NewRecorder(maxEvents int, opts ...Option) *Recorder {
	if maxEvents < 2 {
		maxEvents = DefaultMaxEvents
	}
	r := &Recorder{
		maxEvents: maxEvents,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// MaxEvents returns the log cap.
func (r *Recorder) MaxEvents() int { return r.maxEvents }

// RecordSearch appends one search event.
func (r *Recorder) RecordSearch(opts *models.SearchOptions, resp *models.SearchResponse, fromCache bool) {
	ev := Event{ID: uuid.NewString(), Timestamp: r.now(), FromCache: fromCache}
	if opts != nil {
		ev.Query = opts.Query
		ev.Mode = opts.Mode
		ev.Scope = opts.Scope
		ev.UserID = opts.UserID
	}
	if resp != nil {
		ev.ResultsCount = resp.TotalResults
		ev.SearchTime = resp.SearchTime
	}

	r.mu.Lock()
	r.events = append(r.events, ev)
	if len(r.events) > r.maxEvents {
		r.events = compact(r.events, r.maxEvents/2)
	}
	r.mu.Unlock()
}

// RecordError appends one error event and logs it. It accepts a nil error or
// nil options.
func (r *Recorder) RecordError(err error, opts *models.SearchOptions) {
	ev := ErrorEvent{ID: uuid.NewString(), Timestamp: r.now(), Code: models.CodeSearchFailed}
	if err != nil {
		ev.Code = models.CodeOf(err)
		ev.Message = err.Error()
		var se *models.SearchError
		if errors.As(err, &se) {
			ev.Message = se.Message
		}
	}
	if opts != nil {
		ev.Query = opts.Query
		ev.UserID = opts.UserID
	}

	r.mu.Lock()
	r.errs = append(r.errs, ev)
	if len(r.errs) > r.maxEvents {
		r.errs = compact(r.errs, r.maxEvents/2)
	}
	r.mu.Unlock()

	r.logger.Warn("Search error recorded",
		zap.String("code", string(ev.Code)),
		zap.String("query", ev.Query),
		zap.String("message", ev.Message))
}

// compact keeps the newest keep entries in a fresh backing array.
func compact[T any](s []T, keep int) []T {
	out := make([]T, keep, keep*2)
	copy(out, s[len(s)-keep:])
	return out
}

// Len returns the number of search events held.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Events returns a copy of the search log, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Event(nil), r.events...)
}

// Errors returns a copy of the error log, oldest first.
func (r *Recorder) Errors() []ErrorEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ErrorEvent(nil), r.errs...)
}

// Report aggregates events whose timestamps fall inside dr. A nil range
// covers everything up to now.
func (r *Recorder) Report(dr *DateRange) *Report {
	var start, end time.Time
	if dr != nil {
		start, end = dr.Start, dr.End
	}
	if end.IsZero() {
		end = r.now()
	}
	inRange := func(ts time.Time) bool { return !ts.Before(start) && !ts.After(end) }

	r.mu.RLock()
	defer r.mu.RUnlock()

	rep := &Report{
		TopQueries:   []QueryCount{},
		ErrorsByCode: map[models.ErrorCode]int{},
		StartDate:    start,
		EndDate:      end,
	}
	counts := map[string]int{}
	order := []string{}
	var results, took float64
	var hits int
	for _, ev := range r.events {
		if !inRange(ev.Timestamp) {
			continue
		}
		rep.TotalSearches++
		results += float64(ev.ResultsCount)
		took += ev.SearchTime
		if ev.FromCache {
			hits++
		}
		if _, seen := counts[ev.Query]; !seen {
			order = append(order, ev.Query)
		}
		counts[ev.Query]++
	}
	for _, ev := range r.errs {
		if inRange(ev.Timestamp) {
			rep.TotalErrors++
			rep.ErrorsByCode[ev.Code]++
		}
	}

	rep.UniqueQueries = len(counts)
	if n := float64(rep.TotalSearches); n > 0 {
		rep.AverageResultsPerQuery = results / n
		rep.AverageResponseTime = took / n
		rep.CacheHitRate = float64(hits) / n
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > topQueriesLimit {
		order = order[:topQueriesLimit]
	}
	for _, q := range order {
		rep.TopQueries = append(rep.TopQueries, QueryCount{Query: q, Count: counts[q]})
	}
	return rep
}
