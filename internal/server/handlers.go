package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/sanskan/internal/cli"
	"github.com/hyperjump/sanskan/internal/metrics"
	"github.com/hyperjump/sanskan/internal/models"
	"github.com/hyperjump/sanskan/internal/query"
	"github.com/hyperjump/sanskan/internal/scan"
	"github.com/hyperjump/sanskan/internal/storage"
	"go.uber.org/zap"
)

const (
	maxBodyBytes     = 1 << 20
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc, err := query.Decode(body, query.FormatJSON, "request body")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := query.FromDocument(doc)
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error(), "field": verr.Field})
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("scan request", zap.Stringer("query", q))

	opts := append(scan.ConfigOptions(s.config.Scan),
		scan.WithLogger(s.logger),
		scan.WithObserver(metrics.NewScanRecorder()),
	)
	scanner := scan.NewScanner(q, opts...)

	collector := cli.NewCollector()
	var reporter scan.Reporter = collector
	var recorder *storage.Recorder
	if s.store != nil {
		// History writes outlive the request so an aborted scan is still marked failed.
		recorder, err = storage.NewRecorder(context.WithoutCancel(r.Context()), s.store, newRun(q))
		if err != nil {
			s.logger.Error("failed to record run", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		reporter = cli.Multi(collector, recorder)
	}

	summary, err := scanner.Run(r.Context(), reporter)
	if err != nil {
		if recorder != nil {
			if ferr := recorder.Fail(summary, err); ferr != nil {
				s.logger.Warn("failed to mark run failed", zap.Error(ferr))
			}
		}
		if r.Context().Err() != nil {
			// The client is gone, or the timeout middleware answers with 504.
			s.logger.Warn("scan aborted", zap.Error(err))
			return
		}
		var rootErr *scan.InvalidRootError
		if errors.As(err, &rootErr) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("scan failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := models.ScanResponse{
		Query:   q.String(),
		Policy:  q.Policy().String(),
		Matches: collector.Matches(),
		Summary: summary,
	}
	if recorder != nil {
		resp.RunID = recorder.RunID()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// newRun describes q as a run record.
func newRun(q *query.Query) *models.Run {
	return &models.Run{
		Query:       q.String(),
		Policy:      q.Policy().String(),
		Directories: q.Directories(),
		Fragments:   q.Fragments(),
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run history not enabled")
		return
	}
	offset := intParam(r, "offset", 0)
	limit := intParam(r, "limit", defaultRunsLimit)
	if limit <= 0 || limit > maxRunsLimit {
		limit = defaultRunsLimit
	}
	runs, err := s.store.ListRuns(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.store.CountRuns(r.Context())
	if err != nil {
		s.logger.Error("count runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*models.Run{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs, "total": total})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "run not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	matches, err := s.store.GetMatches(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"run": run, "matches": matches})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetRun(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "run not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("delete run request", zap.String("id", id))
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
