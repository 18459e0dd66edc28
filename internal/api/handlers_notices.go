package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/board"
	"github.com/dgallion1/noticegest/internal/cache"
	"github.com/dgallion1/noticegest/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type noticeList struct {
	Board    string       `json:"board"`
	Total    int          `json:"total"`
	PageSize int          `json:"page_size"`
	Pages    int          `json:"pages"`
	Page     int          `json:"page,omitempty"`
	Notices  []board.Item `json:"notices"`
}

func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "board")
	b, ok := backend.LookupBoard(name)
	if !ok {
		jsonError(w, "unknown board: "+name, http.StatusNotFound)
		return
	}

	notices, err := s.source.ListNotices(r.Context(), name)
	if err != nil {
		s.log.Error("list notices failed", "board", name, "error", err)
		jsonError(w, "notice backend unavailable", http.StatusBadGateway)
		return
	}

	items := board.Order(notices, b.PostBase)
	pages := board.Pages(items, board.PageSize)
	resp := noticeList{
		Board:    name,
		Total:    len(items),
		PageSize: board.PageSize,
		Pages:    len(pages),
		Notices:  items,
	}
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > len(pages) {
			jsonError(w, "invalid page: "+v, http.StatusBadRequest)
			return
		}
		resp.Page = p
		resp.Notices = pages[p-1]
	}
	writeJSON(w, http.StatusOK, resp)
}

type noticeDetail struct {
	Board         string               `json:"board"`
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	CreatedAt     string               `json:"createdAt,omitempty"`
	HasAttachment bool                 `json:"has_attachment"`
	Link          string               `json:"link,omitempty"`
	Attachments   []backend.Attachment `json:"attachments,omitempty"`
	HTML          string               `json:"html"`
	Tables        int                  `json:"tables"`
	Cached        bool                 `json:"cached"`
	Stale         bool                 `json:"stale,omitempty"`
}

// handleGetNotice serves a rendered notice. The cached render is reused
// while the notice hash matches; when the backend fails, a cached render
// is served as stale.
func (s *Server) handleGetNotice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "board")
	id := chi.URLParam(r, "id")
	if _, ok := backend.LookupBoard(name); !ok {
		jsonError(w, "unknown board: "+name, http.StatusNotFound)
		return
	}
	log := s.log.With("board", name, "notice_id", id)

	key := cache.Key(name, id)
	prev, err := s.cache.Get(r.Context(), key)
	if err != nil {
		log.Warn("cache lookup failed", "error", err)
		prev = nil
	}

	n, err := s.source.GetNotice(r.Context(), name, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			jsonError(w, "notice not found", http.StatusNotFound)
			return
		}
		if prev != nil {
			log.Warn("backend failed, serving cached render", "error", err)
			writeJSON(w, http.StatusOK, noticeDetail{
				Board:         name,
				ID:            id,
				Title:         prev.Title,
				CreatedAt:     prev.CreatedAt,
				HasAttachment: prev.HasAttachment,
				Link:          prev.Link,
				HTML:          prev.HTML,
				Tables:        prev.Tables,
				Cached:        true,
				Stale:         true,
			})
			return
		}
		log.Error("get notice failed", "error", err)
		jsonError(w, "notice backend unavailable", http.StatusBadGateway)
		return
	}

	resp := noticeDetail{
		Board:         name,
		ID:            id,
		Title:         n.Title,
		CreatedAt:     n.CreatedAt,
		HasAttachment: n.HasAttachment,
		Link:          pipeline.NoticeLink(s.cfg.NoticeAPIBaseURL, n),
		Attachments:   n.Attachments,
	}

	hash := pipeline.NoticeHash(n)
	if prev != nil && prev.ContentHash == hash {
		resp.HTML = prev.HTML
		resp.Tables = prev.Tables
		resp.Cached = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	out, err := s.renderer.RenderNotice(n)
	if err != nil {
		log.Error("render failed", "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	resp.HTML = out.HTML
	resp.Tables = out.TableCount()

	if err := s.cache.Put(r.Context(), pipeline.NoticeEntry(key, n, out, s.cfg.NoticeAPIBaseURL)); err != nil {
		log.Warn("cache store failed", "error", err)
	}
	writeJSON(w, http.StatusOK, resp)
}
