package api

import (
	"context"
	"net/http"
)

type entryCounter interface {
	Count(ctx context.Context) (int, error)
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"render":      s.renderer.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	if c, ok := s.cache.(entryCounter); ok {
		if n, err := c.Count(r.Context()); err == nil {
			resp["cache_entries"] = n
		} else {
			s.log.Warn("cache count failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
