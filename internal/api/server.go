package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/noticegest/internal/config"
	"github.com/dgallion1/noticegest/internal/parser"
	"github.com/dgallion1/noticegest/internal/pipeline"
	"github.com/dgallion1/noticegest/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for noticegest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	source       pipeline.NoticeSource
	rooms        RoomSource
	cache        pipeline.RenderCache
	renderer     *render.Renderer
	log          *slog.Logger
	cfg          config.Config

	now func() time.Time
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, source pipeline.NoticeSource, rooms RoomSource, rc pipeline.RenderCache, renderer *render.Renderer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		source:       source,
		rooms:        rooms,
		cache:        rc,
		renderer:     renderer,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints used by the kiosk.
	r.Get("/health", s.handleHealth)
	r.Get("/api/boards/{board}/notices", s.handleListNotices)
	r.Get("/api/boards/{board}/notices/{id}", s.handleGetNotice)
	r.Get("/api/rooms", s.handleListRooms)
	r.Get("/api/rooms/{id}/availability", s.handleRoomAvailability)
	r.Post("/api/rooms/{id}/reservations", s.handleCreateReservation)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.NoticegestAPIKey, s.log))

		r.Post("/api/render", s.handleRender)
		r.Post("/api/render/file", s.handleRenderFile)
		r.Post("/api/prerender", s.handlePrerender)
		r.Get("/api/prerender/{jobID}/status", s.handlePrerenderStatus)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
