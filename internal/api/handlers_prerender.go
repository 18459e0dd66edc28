package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type prerenderRequest struct {
	Board string   `json:"board"`
	IDs   []string `json:"ids"`
	Force bool     `json:"force"`
}

func (s *Server) handlePrerender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req prerenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := backend.LookupBoard(req.Board); !ok {
		jsonError(w, fmt.Sprintf("unknown board: %q", req.Board), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(req.Board, req.IDs, req.Force, "api")
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"board":    snap.Board,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/prerender/%s/status", snap.ID),
	})
}

func (s *Server) handlePrerenderStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
