package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/JonMunkholm/sheetorders/internal/logging"
	"github.com/go-chi/chi/v5"
)

// defaultHistoryLimit is used when ?limit is absent or invalid.
const defaultHistoryLimit = 20

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string             `json:"status"`
	Run    core.RunGateStatus `json:"run"`
}

// RunListResponse is returned by GET /api/runs.
type RunListResponse struct {
	Runs []core.RunRecord `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Run:    s.service.RunStatus(),
	})
}

// handleTriggerRun executes one run and waits for it. The run is cancelled
// if the client goes away.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := core.ContextWithTrigger(r.Context(), core.TriggerHTTP)

	result, err := s.service.Execute(ctx)
	if err != nil {
		s.respondRunError(w, r, result, err)
		return
	}

	logging.WithFields(logging.ContextWithRunID(ctx, result.RunID),
		"orders_staged", result.OrdersStaged(),
		"markers_written", result.MarkersWritten,
	).Info("run completed via api")

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", defaultHistoryLimit)

	runs := s.service.History(limit)
	if runs == nil {
		runs = []core.RunRecord{}
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Lookup(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// parseIntParam reads a positive integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
