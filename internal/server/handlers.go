package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/analytics"
	"github.com/hyperjump/smartsearch/internal/config"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/storage"
)

const (
	filterParamPrefix = "filter."
	defaultListLimit  = 50
	maxListLimit      = 500
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var opts models.SearchOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, &opts)
}

// handleSearchGet reads the request from the query string. Filters are
// passed as filter.<key>=<value>.
func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := models.SearchOptions{
		Query:  q.Get("q"),
		Scope:  models.Scope(q.Get("scope")),
		Mode:   models.Mode(q.Get("mode")),
		UserID: q.Get("user_id"),
	}
	var err error
	if opts.Page, err = intParam(q.Get("page")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid page")
		return
	}
	if opts.PageSize, err = intParam(q.Get("page_size")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid page_size")
		return
	}
	for key, values := range q {
		if name, ok := strings.CutPrefix(key, filterParamPrefix); ok && name != "" && len(values) > 0 {
			if opts.Filters == nil {
				opts.Filters = make(map[string]string)
			}
			opts.Filters[name] = values[0]
		}
	}
	s.search(w, r, &opts)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, opts *models.SearchOptions) {
	s.logger.Debug("Search request",
		zap.String("query", opts.Query),
		zap.String("mode", string(opts.Mode)),
		zap.String("scope", string(opts.Scope)))
	resp, err := s.engine.Search(r.Context(), opts)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": s.engine.Suggest(r.URL.Query().Get("q"), limit),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, err := intParam(q.Get("offset"))
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil || limit < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("List documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountDocuments(r.Context())
	if err != nil {
		s.logger.Error("Count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	doc := input.ToDocument()
	if err := doc.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()
	if _, err := s.storage.GetDocument(ctx, doc.ID); err == nil {
		s.respondError(w, http.StatusConflict, "document already exists")
		return
	}
	s.logger.Debug("Create document request", zap.String("id", doc.ID), zap.String("title", doc.Title()))
	if err := s.storage.CreateDocument(ctx, doc); err != nil {
		s.logger.Error("Store document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.engine.UpdateIndex(ctx, doc.ID, doc); err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": doc.ID, "status": "indexed"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.storage.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.ID == "" {
		input.ID = id
	}
	if input.ID != id {
		s.respondError(w, http.StatusBadRequest, "document id does not match the path")
		return
	}
	doc := input.ToDocument()
	if err := doc.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()
	if err := s.storage.UpsertDocument(ctx, doc); err != nil {
		s.logger.Error("Store document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.engine.UpdateIndex(ctx, id, doc); err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "indexed"})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	s.logger.Debug("Delete document request", zap.String("id", id))
	stored, err := s.storage.DeleteDocument(ctx, id)
	if err != nil {
		s.logger.Error("Delete document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	indexed, err := s.engine.RemoveFromIndex(ctx, id)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	if !stored && !indexed {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleBuildIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.BuildIndex(r.Context()); err != nil {
		s.respondSearchError(w, err)
		return
	}
	idx := s.engine.Index()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "built",
		"generation": idx.Generation(),
		"documents":  idx.Size(),
	})
}

func (s *Server) handleClearIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClearIndex(r.Context()); err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "cleared",
		"generation": s.engine.Index().Generation(),
	})
}

// handleAnalytics reports over an optional RFC 3339 start and end.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var dr analytics.DateRange
	for param, dst := range map[string]*time.Time{"start": &dr.Start, "end": &dr.End} {
		v := r.URL.Query().Get(param)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid "+param+": expected RFC 3339")
			return
		}
		*dst = t
	}
	if !dr.Start.IsZero() && !dr.End.IsZero() && dr.End.Before(dr.Start) {
		s.respondError(w, http.StatusBadRequest, "end is before start")
		return
	}
	s.respondJSON(w, http.StatusOK, s.engine.Analytics(&dr))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("Status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byType, err := s.storage.CountByType(ctx)
	if err != nil {
		s.logger.Error("Status: count by type failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snap := s.engine.Index().Acquire()
	indexInfo := map[string]interface{}{
		"generation": snap.Generation(),
		"documents":  snap.Len(),
		"built_at":   snap.BuiltAt(),
	}
	snap.Release()

	resp := map[string]interface{}{
		"documents":         docCount,
		"documents_by_type": byType,
		"index":             indexInfo,
		"cache_enabled":     s.engine.Cache().Enabled(),
		"analytics_events":  s.engine.Recorder().Len(),
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"default_mode":    s.config.Search.DefaultMode,
			"database_path":   s.config.Storage.DatabasePath,
			"term_index_path": s.config.Storage.TermIndexPath,
			"cache_backend":   s.config.Cache.Backend,
		}
		if diskBytes, err := storage.DiskUsage(s.config.Storage.DatabasePath, s.config.Storage.TermIndexPath); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("Watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("Watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.config == nil {
		return
	}
	s.watchConfigMu.Lock()
	defer s.watchConfigMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("Failed to persist watch config", zap.Error(err))
	}
}

// statusFor maps a search error code onto an HTTP status.
func statusFor(code models.ErrorCode) int {
	switch code {
	case models.CodeInvalidRequest:
		return http.StatusBadRequest
	case models.CodeEngineUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondSearchError(w http.ResponseWriter, err error) {
	code := models.CodeOf(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("code", string(code)), zap.Error(err))
	}
	s.respondJSON(w, status, map[string]string{"error": err.Error(), "code": string(code)})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// intParam parses an optional integer; empty is zero.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
