package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/noticegest/internal/api"
	"github.com/dgallion1/noticegest/internal/backend"
	"github.com/dgallion1/noticegest/internal/cache"
	"github.com/dgallion1/noticegest/internal/config"
	"github.com/dgallion1/noticegest/internal/noticehtml"
	"github.com/dgallion1/noticegest/internal/pipeline"
	"github.com/dgallion1/noticegest/internal/render"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	heuristics, err := config.LoadHeuristics(cfg.HeuristicsFile)
	if err != nil {
		log.Error("invalid heuristics", "file", cfg.HeuristicsFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	notices := backend.NewClient(cfg.NoticeAPIBaseURL, cfg.NoticeAPIKey)
	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Error("open cache", "error", err)
		os.Exit(1)
	}
	renderer := render.New(noticehtml.New(noticehtml.Options{
		Heuristics:   heuristics,
		BadgeIconURL: cfg.BadgeIconURL,
		DisableLinks: cfg.DisableLinks,
	}), render.NewStats(time.Hour))

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, notices, store, renderer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, notices, notices, store, renderer, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		notices.Close()
		store.Close()
	}()

	log.Info("starting noticegest",
		"port", cfg.Port,
		"backend", cfg.NoticeAPIBaseURL,
		"workers", cfg.WorkerCount,
		"refresh_interval", cfg.RefreshInterval,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
